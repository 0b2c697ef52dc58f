package kernels

import (
	"fmt"

	"golang.org/x/exp/constraints"

	"github.com/graftml/graft/device"
)

// ExclusiveSum produces the running-sum offset array of counts: out has one
// more element than counts, out[0] = 0 and out[i+1] = out[i] + counts[i].
// Submitted on d's stream; the scan itself is a single sequential pass since
// row counts are small relative to the edge work they describe.
func ExclusiveSum(d *device.Device, counts *device.Buffer) *device.Buffer {
	out := d.Allocator().Alloc(counts.DType(), counts.Len()+1)

	d.Stream().Submit("exclusive_sum", func() error {
		switch counts.DType() {
		case device.DTypeInt8:
			return exclusiveSum[int8](counts, out)
		case device.DTypeInt16:
			return exclusiveSum[int16](counts, out)
		case device.DTypeInt32:
			return exclusiveSum[int32](counts, out)
		case device.DTypeInt64:
			return exclusiveSum[int64](counts, out)
		case device.DTypeUint8:
			return exclusiveSum[uint8](counts, out)
		case device.DTypeUint16:
			return exclusiveSum[uint16](counts, out)
		case device.DTypeUint32:
			return exclusiveSum[uint32](counts, out)
		case device.DTypeUint64:
			return exclusiveSum[uint64](counts, out)
		default:
			return fmt.Errorf("kernels: exclusive_sum unsupported dtype %s", counts.DType())
		}
	})

	return out
}

func exclusiveSum[T constraints.Integer](counts, out *device.Buffer) error {
	in := device.Elems[T](counts)
	dst := device.Elems[T](out)

	var sum T
	dst[0] = 0
	for i, v := range in {
		sum += v
		dst[i+1] = sum
	}

	return nil
}

// GatherRows copies each selected row's edge payload into a compacted output:
// for every row i, count[i] elements starting at srcStart[i] in data land at
// dstStart[i] in out. Rows are independent and run on the grid. The three
// offset buffers must share one dtype; data and out share another.
func GatherRows(d *device.Device, data, srcStart, dstStart, count, out *device.Buffer) error {
	if srcStart.DType() != dstStart.DType() || srcStart.DType() != count.DType() {
		return fmt.Errorf("kernels: gather_rows offset dtypes differ: %s, %s, %s",
			srcStart.DType(), dstStart.DType(), count.DType())
	}
	if srcStart.Len() != dstStart.Len() || srcStart.Len() != count.Len() {
		return fmt.Errorf("kernels: gather_rows offset lengths differ: %d, %d, %d",
			srcStart.Len(), dstStart.Len(), count.Len())
	}
	if data.DType() != out.DType() {
		return fmt.Errorf("kernels: gather_rows data dtype %s does not match output %s", data.DType(), out.DType())
	}

	d.Stream().Submit("gather_rows", func() error {
		return gatherRowsAny(data, srcStart, dstStart, count, out)
	})

	return nil
}

func gatherRowsAny(data, srcStart, dstStart, count, out *device.Buffer) error {
	switch srcStart.DType() {
	case device.DTypeInt8:
		return gatherRowsData[int8](data, srcStart, dstStart, count, out)
	case device.DTypeInt16:
		return gatherRowsData[int16](data, srcStart, dstStart, count, out)
	case device.DTypeInt32:
		return gatherRowsData[int32](data, srcStart, dstStart, count, out)
	case device.DTypeInt64:
		return gatherRowsData[int64](data, srcStart, dstStart, count, out)
	case device.DTypeUint8:
		return gatherRowsData[uint8](data, srcStart, dstStart, count, out)
	case device.DTypeUint16:
		return gatherRowsData[uint16](data, srcStart, dstStart, count, out)
	case device.DTypeUint32:
		return gatherRowsData[uint32](data, srcStart, dstStart, count, out)
	case device.DTypeUint64:
		return gatherRowsData[uint64](data, srcStart, dstStart, count, out)
	default:
		return fmt.Errorf("kernels: gather_rows unsupported offset dtype %s", srcStart.DType())
	}
}

func gatherRowsData[W constraints.Integer](data, srcStart, dstStart, count, out *device.Buffer) error {
	switch data.DType() {
	case device.DTypeInt8:
		return gatherRows[W, int8](data, srcStart, dstStart, count, out)
	case device.DTypeInt16:
		return gatherRows[W, int16](data, srcStart, dstStart, count, out)
	case device.DTypeInt32:
		return gatherRows[W, int32](data, srcStart, dstStart, count, out)
	case device.DTypeInt64:
		return gatherRows[W, int64](data, srcStart, dstStart, count, out)
	case device.DTypeUint8:
		return gatherRows[W, uint8](data, srcStart, dstStart, count, out)
	case device.DTypeUint16:
		return gatherRows[W, uint16](data, srcStart, dstStart, count, out)
	case device.DTypeUint32:
		return gatherRows[W, uint32](data, srcStart, dstStart, count, out)
	case device.DTypeUint64:
		return gatherRows[W, uint64](data, srcStart, dstStart, count, out)
	default:
		return fmt.Errorf("kernels: gather_rows unsupported data dtype %s", data.DType())
	}
}

func gatherRows[W, T constraints.Integer](data, srcStart, dstStart, count, out *device.Buffer) error {
	src := device.Elems[T](data)
	dst := device.Elems[T](out)
	from := device.Elems[W](srcStart)
	to := device.Elems[W](dstStart)
	n := device.Elems[W](count)

	return grid(len(from), func(lo, hi int) error {
		for row := lo; row < hi; row++ {
			s := int(from[row])
			d := int(to[row])
			c := int(n[row])
			copy(dst[d:d+c], src[s:s+c])
		}
		return nil
	})
}
