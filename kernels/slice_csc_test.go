package kernels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/constraints"

	"github.com/graftml/graft/device"
)

func TestSliceCSCIndptr(t *testing.T) {
	d := device.New("test")
	defer d.Close()

	indptr := device.FromSlice(d.Allocator(), []int64{0, 2, 5, 5, 8})
	nodes := device.FromSlice(d.Allocator(), []int64{1, 3, 0})

	sliced, degree, err := SliceCSCIndptr(d, indptr, nodes)
	require.NoError(t, err)
	require.NoError(t, d.Stream().Synchronize())

	assert.Equal(t, []int64{2, 5, 0}, device.ToSlice[int64](sliced))
	assert.Equal(t, []int64{3, 3, 2}, device.ToSlice[int64](degree))
}

func TestSliceCSCIndptrEmptyNodes(t *testing.T) {
	d := device.New("test")
	defer d.Close()

	indptr := device.FromSlice(d.Allocator(), []int32{0, 2, 4})
	nodes := device.FromSlice(d.Allocator(), []int32{})

	sliced, degree, err := SliceCSCIndptr(d, indptr, nodes)
	require.NoError(t, err)
	require.NoError(t, d.Stream().Synchronize())

	assert.Equal(t, 0, sliced.Len())
	assert.Equal(t, 0, degree.Len())
}

// The offset/degree outputs must be numerically identical for every supported
// width and signedness combination of the offset and node-id arrays.
func TestSliceCSCIndptrWidths(t *testing.T) {
	t.Run("int32 indptr, int8 nodes", testSliceWidths[int32, int8])
	t.Run("int32 indptr, int16 nodes", testSliceWidths[int32, int16])
	t.Run("int32 indptr, int64 nodes", testSliceWidths[int32, int64])
	t.Run("int64 indptr, int8 nodes", testSliceWidths[int64, int8])
	t.Run("int64 indptr, int32 nodes", testSliceWidths[int64, int32])
	t.Run("uint32 indptr, uint8 nodes", testSliceWidths[uint32, uint8])
	t.Run("uint64 indptr, uint16 nodes", testSliceWidths[uint64, uint16])
	t.Run("int16 indptr, uint32 nodes", testSliceWidths[int16, uint32])
	t.Run("uint8 indptr, int64 nodes", testSliceWidths[uint8, int64])
}

func testSliceWidths[W, T constraints.Integer](t *testing.T) {
	d := device.New("test")
	defer d.Close()

	// reference values; all small enough for every width above
	refIndptr := []int64{0, 3, 5, 7, 9, 12, 14}
	refNodes := []int64{0, 5, 3}
	wantSliced := []int64{0, 12, 7}
	wantDegree := []int64{3, 2, 2}

	indptr := device.FromSlice(d.Allocator(), convert[W](refIndptr))
	nodes := device.FromSlice(d.Allocator(), convert[T](refNodes))

	sliced, degree, err := SliceCSCIndptr(d, indptr, nodes)
	require.NoError(t, err)
	require.NoError(t, d.Stream().Synchronize())

	require.Equal(t, device.DTypeOf[W](), sliced.DType(), "outputs must carry the offset array's dtype")
	require.Equal(t, device.DTypeOf[W](), degree.DType())

	assert.Equal(t, convert[W](wantSliced), device.ToSlice[W](sliced))
	assert.Equal(t, convert[W](wantDegree), device.ToSlice[W](degree))
}

func convert[T constraints.Integer](s []int64) []T {
	out := make([]T, len(s))
	for i, v := range s {
		out[i] = T(v)
	}
	return out
}
