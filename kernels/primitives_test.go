package kernels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graftml/graft/device"
)

func TestLowerBound(t *testing.T) {
	s := []int32{1, 3, 3, 5, 8}

	cases := []struct {
		target int32
		want   int
	}{
		{0, 0},
		{1, 0},
		{2, 1},
		{3, 1},
		{4, 3},
		{5, 3},
		{8, 4},
		{9, 5},
	}

	for _, tt := range cases {
		assert.Equal(t, tt.want, lowerBound(s, tt.target), "target %d", tt.target)
	}

	assert.Equal(t, 0, lowerBound([]int32{}, int32(7)))
}

func TestAdjacentDifference(t *testing.T) {
	a := device.NewAllocator()

	in := device.FromSlice(a, []int64{0, 2, 2, 3, 7})
	out := a.Alloc(device.DTypeInt64, in.Len())
	scratch := a.AllocScratch(AdjacentDifferenceScratchBytes(in.Len(), in.DType()))

	require.NoError(t, AdjacentDifference(in, out, scratch))

	// element 0 is the raw first input element, not a difference
	assert.Equal(t, []int64{0, 2, 0, 1, 4}, device.ToSlice[int64](out))
}

// The difference pass conventionally emits in[0] unchanged at position 0.
// That element is junk for degree purposes: dropping it realigns the counts
// 1:1 with the offset array's interior boundaries. This pins that behavior
// down so the view offset in SliceCSCIndptrByEdgeType can't silently drift.
func TestAdjacentDifferenceLeadingElementDiscard(t *testing.T) {
	a := device.NewAllocator()

	// boundaries starting at a non-zero base, as row slices usually do
	boundaries := []int32{5, 7, 7, 10}
	in := device.FromSlice(a, boundaries)
	out := a.Alloc(device.DTypeInt32, in.Len())
	scratch := a.AllocScratch(AdjacentDifferenceScratchBytes(in.Len(), in.DType()))

	require.NoError(t, AdjacentDifference(in, out, scratch))

	raw := device.ToSlice[int32](out)
	assert.Equal(t, int32(5), raw[0], "leading element is the raw base offset, not a degree")

	degrees := device.ToSlice[int32](out.View(1, in.Len()-1))
	assert.Equal(t, []int32{2, 0, 3}, degrees)

	for i, deg := range degrees {
		assert.Equal(t, boundaries[i+1]-boundaries[i], deg)
	}
}

func TestAdjacentDifferenceInPlace(t *testing.T) {
	a := device.NewAllocator()

	in := device.FromSlice(a, []int16{3, 4, 6, 6})
	scratch := a.AllocScratch(AdjacentDifferenceScratchBytes(in.Len(), in.DType()))

	// out aliases in; the scratch snapshot keeps reads consistent
	require.NoError(t, AdjacentDifference(in, in, scratch))
	assert.Equal(t, []int16{3, 1, 2, 0}, device.ToSlice[int16](in))
}

func TestAdjacentDifferenceScratchTooSmall(t *testing.T) {
	a := device.NewAllocator()

	in := device.FromSlice(a, []int64{1, 2, 3})
	out := a.Alloc(device.DTypeInt64, in.Len())
	scratch := a.AllocScratch(8) // one element short

	assert.Error(t, AdjacentDifference(in, out, scratch))
}

func TestGrid(t *testing.T) {
	out := make([]int, 1000)
	require.NoError(t, grid(len(out), func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			out[i] = i * i
		}
		return nil
	}))

	for i, v := range out {
		require.Equal(t, i*i, v)
	}

	// zero-length grids run nothing
	require.NoError(t, grid(0, func(lo, hi int) error {
		t.Fatal("should not run")
		return nil
	}))
}
