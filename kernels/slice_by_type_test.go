package kernels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graftml/graft/device"
)

func TestSliceCSCIndptrByEdgeTypeSingleRow(t *testing.T) {
	d := device.New("test")
	defer d.Close()

	// one row of degree 5, types [0 0 1 1 1], absolute start 10
	subIndptr := device.FromSlice(d.Allocator(), []int64{0, 5})
	slicedIndptr := device.FromSlice(d.Allocator(), []int64{10})
	etypes := device.FromSlice(d.Allocator(), []int64{0, 0, 1, 1, 1})

	newSub, newDeg, newSliced, err := SliceCSCIndptrByEdgeType(d, subIndptr, slicedIndptr, etypes, 2)
	require.NoError(t, err)
	require.NoError(t, d.Stream().Synchronize())

	assert.Equal(t, []int64{0, 2, 5}, device.ToSlice[int64](newSub))
	assert.Equal(t, []int64{2, 3}, device.ToSlice[int64](newDeg))
	assert.Equal(t, []int64{10, 12}, device.ToSlice[int64](newSliced))
}

func TestSliceCSCIndptrByEdgeType(t *testing.T) {
	d := device.New("test")
	defer d.Close()

	// six rows sliced over the whole graph, four edge types
	subIndptr := device.FromSlice(d.Allocator(), []int64{0, 3, 5, 7, 9, 12, 14})
	slicedIndptr := device.FromSlice(d.Allocator(), []int64{0, 3, 5, 7, 9, 12})
	etypes := device.FromSlice(d.Allocator(), []int64{0, 0, 2, 0, 2, 0, 2, 1, 1, 1, 3, 3, 1, 3})

	newSub, newDeg, newSliced, err := SliceCSCIndptrByEdgeType(d, subIndptr, slicedIndptr, etypes, 4)
	require.NoError(t, err)
	require.NoError(t, d.Stream().Synchronize())

	wantSub := []int64{
		0, 2, 2, 3,
		3, 4, 4, 5,
		5, 6, 6, 7,
		7, 7, 9, 9,
		9, 9, 10, 10,
		12, 12, 13, 13,
		14,
	}
	assert.Equal(t, wantSub, device.ToSlice[int64](newSub))

	wantDeg := []int64{
		2, 0, 1, 0,
		1, 0, 1, 0,
		1, 0, 1, 0,
		0, 2, 0, 0,
		0, 1, 0, 2,
		0, 1, 0, 1,
	}
	assert.Equal(t, wantDeg, device.ToSlice[int64](newDeg))

	// rows were sliced in place, so absolute starts equal relative boundaries
	assert.Equal(t, wantSub[:24], device.ToSlice[int64](newSliced))
}

// The union of a row's type buckets must reconstruct the row exactly, in
// non-decreasing type order, and the two offset arrays must stay in lockstep.
func TestSliceCSCIndptrByEdgeTypeProperties(t *testing.T) {
	d := device.New("test")
	defer d.Close()

	const fanouts = 3

	// row 1 is empty; rows live apart in the edge data
	sub := []int32{0, 4, 4, 9, 10}
	sliced := []int32{100, 104, 110, 119}
	tags := []int16{0, 0, 1, 2, 0, 1, 1, 2, 2, 2}

	subIndptr := device.FromSlice(d.Allocator(), sub)
	slicedIndptr := device.FromSlice(d.Allocator(), sliced)
	etypes := device.FromSlice(d.Allocator(), tags)

	newSub, newDeg, newSliced, err := SliceCSCIndptrByEdgeType(d, subIndptr, slicedIndptr, etypes, fanouts)
	require.NoError(t, err)
	require.NoError(t, d.Stream().Synchronize())

	gotSub := device.ToSlice[int32](newSub)
	gotDeg := device.ToSlice[int32](newDeg)
	gotSliced := device.ToSlice[int32](newSliced)

	rows := len(sub) - 1
	require.Len(t, gotSub, rows*fanouts+1)
	require.Len(t, gotDeg, rows*fanouts)
	require.Len(t, gotSliced, rows*fanouts)

	for row := 0; row < rows; row++ {
		// buckets tile the row: first bucket starts at the row start and
		// the next row picks up exactly where this one ends
		assert.Equal(t, sub[row], gotSub[row*fanouts], "row %d start", row)

		for k := 0; k < fanouts; k++ {
			i := row*fanouts + k

			// degree/offset identity
			assert.Equal(t, gotSub[i+1]-gotSub[i], gotDeg[i], "degree identity at %d", i)

			// absolute and relative offsets stay in lockstep
			assert.Equal(t, gotSub[i]-sub[row], gotSliced[i]-sliced[row], "lockstep at %d", i)

			// bucket holds only its own tag
			for e := gotSub[i]; e < gotSub[i+1]; e++ {
				assert.Equal(t, int16(k), tags[e], "tag purity at edge %d", e)
			}
		}
	}
	assert.Equal(t, sub[rows], gotSub[rows*fanouts], "trailing boundary closes the range")

	// empty row: every bucket empty, all starts identical
	for k := 0; k < fanouts; k++ {
		i := 1*fanouts + k
		assert.Equal(t, int32(0), gotDeg[i], "empty row bucket %d", k)
		assert.Equal(t, sub[1], gotSub[i])
		assert.Equal(t, sliced[1], gotSliced[i])
	}
}

func TestSliceCSCIndptrByEdgeTypeValidation(t *testing.T) {
	d := device.New("test")
	defer d.Close()

	subIndptr := device.FromSlice(d.Allocator(), []int64{0, 2})
	slicedIndptr := device.FromSlice(d.Allocator(), []int64{0})
	etypes := device.FromSlice(d.Allocator(), []int64{0, 1})

	_, _, _, err := SliceCSCIndptrByEdgeType(d, subIndptr, slicedIndptr, etypes, 0)
	assert.Error(t, err)

	short := device.FromSlice(d.Allocator(), []int64{})
	_, _, _, err = SliceCSCIndptrByEdgeType(d, subIndptr, short, etypes, 2)
	assert.Error(t, err)
}
