package kernels

import (
	"fmt"

	"golang.org/x/exp/constraints"

	"github.com/graftml/graft/device"
)

// lowerBound returns the smallest index in the ascending-sorted slice s whose
// value is not less than target, or len(s) if no such element exists.
func lowerBound[T constraints.Ordered](s []T, target T) int {
	lo, hi := 0, len(s)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if s[mid] < target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}

	return lo
}

// AdjacentDifferenceScratchBytes reports the scratch storage required by
// AdjacentDifference over n elements of dtype dt. It performs no work; callers
// allocate exactly this much and pass it in.
func AdjacentDifferenceScratchBytes(n int, dt device.DType) int {
	return n * dt.Size()
}

// AdjacentDifference computes out[i] = in[i] - in[i-1] with out[0] = in[0].
// out may alias in: the input is snapshotted into scratch first. It runs
// synchronously; asynchrony is the submitting stream's concern.
func AdjacentDifference(in, out, scratch *device.Buffer) error {
	if out.Len() != in.Len() {
		return fmt.Errorf("kernels: adjacent difference length mismatch: in %d, out %d", in.Len(), out.Len())
	}
	if out.DType() != in.DType() {
		return fmt.Errorf("kernels: adjacent difference dtype mismatch: in %s, out %s", in.DType(), out.DType())
	}
	if scratch.Len() < AdjacentDifferenceScratchBytes(in.Len(), in.DType()) {
		return fmt.Errorf("kernels: adjacent difference scratch too small: %d bytes for %d elements of %s",
			scratch.Len(), in.Len(), in.DType())
	}

	switch in.DType() {
	case device.DTypeInt8:
		return adjacentDifference[int8](in, out, scratch)
	case device.DTypeInt16:
		return adjacentDifference[int16](in, out, scratch)
	case device.DTypeInt32:
		return adjacentDifference[int32](in, out, scratch)
	case device.DTypeInt64:
		return adjacentDifference[int64](in, out, scratch)
	case device.DTypeUint8:
		return adjacentDifference[uint8](in, out, scratch)
	case device.DTypeUint16:
		return adjacentDifference[uint16](in, out, scratch)
	case device.DTypeUint32:
		return adjacentDifference[uint32](in, out, scratch)
	case device.DTypeUint64:
		return adjacentDifference[uint64](in, out, scratch)
	default:
		return fmt.Errorf("kernels: adjacent difference unsupported dtype %s", in.DType())
	}
}

func adjacentDifference[T constraints.Integer](in, out, scratch *device.Buffer) error {
	src := device.Elems[T](in)
	dst := device.Elems[T](out)
	tmp := device.Scratch[T](scratch, len(src))

	copy(tmp, src)

	return grid(len(src), func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			if i == 0 {
				dst[0] = tmp[0]
				continue
			}
			dst[i] = tmp[i] - tmp[i-1]
		}
		return nil
	})
}
