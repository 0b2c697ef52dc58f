package kernels

import (
	"fmt"

	"golang.org/x/exp/constraints"

	"github.com/graftml/graft/device"
	"github.com/graftml/graft/logutil"
)

// SliceCSCIndptr gathers, for each node in nodes, its start offset and degree
// out of the CSC offset array indptr. indptr has one entry per node plus a
// trailing sentinel; nodes may use any integral dtype, and may be narrower
// than indptr. Both outputs carry indptr's dtype so large offsets never get
// squeezed through the node-id width.
//
// The kernel is submitted onto d's stream and runs asynchronously; the caller
// must synchronize the stream before reading the returned buffers. Node ids
// outside [0, len(indptr)-1) are an unchecked precondition.
func SliceCSCIndptr(d *device.Device, indptr, nodes *device.Buffer) (slicedIndptr, degree *device.Buffer, err error) {
	if indptr.Len() < 1 {
		return nil, nil, fmt.Errorf("kernels: indptr must have at least the trailing sentinel entry")
	}

	m := nodes.Len()
	slicedIndptr = d.Allocator().Alloc(indptr.DType(), m)
	degree = d.Allocator().Alloc(indptr.DType(), m)

	logutil.Trace("launch slice_csc_indptr", "nodes", m, "indptr_dtype", indptr.DType().String(), "nodes_dtype", nodes.DType().String())

	d.Stream().Submit("slice_csc_indptr", func() error {
		return sliceIndptrAny(indptr, nodes, slicedIndptr, degree)
	})

	return slicedIndptr, degree, nil
}

// sliceIndptrAny resolves the offset width, sliceIndptrNodes the node-id
// width; together they instantiate the kernel for the full integral cross
// product from the two runtime tags.
func sliceIndptrAny(indptr, nodes, slicedIndptr, degree *device.Buffer) error {
	switch indptr.DType() {
	case device.DTypeInt8:
		return sliceIndptrNodes[int8](indptr, nodes, slicedIndptr, degree)
	case device.DTypeInt16:
		return sliceIndptrNodes[int16](indptr, nodes, slicedIndptr, degree)
	case device.DTypeInt32:
		return sliceIndptrNodes[int32](indptr, nodes, slicedIndptr, degree)
	case device.DTypeInt64:
		return sliceIndptrNodes[int64](indptr, nodes, slicedIndptr, degree)
	case device.DTypeUint8:
		return sliceIndptrNodes[uint8](indptr, nodes, slicedIndptr, degree)
	case device.DTypeUint16:
		return sliceIndptrNodes[uint16](indptr, nodes, slicedIndptr, degree)
	case device.DTypeUint32:
		return sliceIndptrNodes[uint32](indptr, nodes, slicedIndptr, degree)
	case device.DTypeUint64:
		return sliceIndptrNodes[uint64](indptr, nodes, slicedIndptr, degree)
	default:
		return fmt.Errorf("kernels: slice_csc_indptr unsupported indptr dtype %s", indptr.DType())
	}
}

func sliceIndptrNodes[W constraints.Integer](indptr, nodes, slicedIndptr, degree *device.Buffer) error {
	switch nodes.DType() {
	case device.DTypeInt8:
		return sliceIndptr[W, int8](indptr, nodes, slicedIndptr, degree)
	case device.DTypeInt16:
		return sliceIndptr[W, int16](indptr, nodes, slicedIndptr, degree)
	case device.DTypeInt32:
		return sliceIndptr[W, int32](indptr, nodes, slicedIndptr, degree)
	case device.DTypeInt64:
		return sliceIndptr[W, int64](indptr, nodes, slicedIndptr, degree)
	case device.DTypeUint8:
		return sliceIndptr[W, uint8](indptr, nodes, slicedIndptr, degree)
	case device.DTypeUint16:
		return sliceIndptr[W, uint16](indptr, nodes, slicedIndptr, degree)
	case device.DTypeUint32:
		return sliceIndptr[W, uint32](indptr, nodes, slicedIndptr, degree)
	case device.DTypeUint64:
		return sliceIndptr[W, uint64](indptr, nodes, slicedIndptr, degree)
	default:
		return fmt.Errorf("kernels: slice_csc_indptr unsupported nodes dtype %s", nodes.DType())
	}
}

func sliceIndptr[W, T constraints.Integer](indptr, nodes, slicedIndptr, degree *device.Buffer) error {
	ip := device.Elems[W](indptr)
	ids := device.Elems[T](nodes)
	out := device.Elems[W](slicedIndptr)
	deg := device.Elems[W](degree)

	return grid(len(ids), func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			node := int(ids[i])
			start := ip[node]
			out[i] = start
			deg[i] = ip[node+1] - start
		}
		return nil
	})
}
