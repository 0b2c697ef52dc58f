package kernels

import (
	"fmt"

	"golang.org/x/exp/constraints"

	"github.com/graftml/graft/device"
	"github.com/graftml/graft/logutil"
)

// SliceCSCIndptrByEdgeType carves each row of an already-sliced offset
// structure into numFanouts contiguous type buckets.
//
// subIndptr holds R+1 row boundaries relative to the sliced edge arrays;
// slicedIndptr holds the R absolute row starts in the unsliced edge data;
// etypes holds one type tag per sliced edge, ascending within each row (an
// unchecked precondition: unsorted tags silently produce wrong boundaries).
//
// Outputs, all carrying subIndptr's dtype:
//   - newSubIndptr, length R*F+1: relative bucket boundaries. Entry r*F+k is
//     the start of row r's bucket k; the final entry closes the last row.
//   - newIndegree, length R*F: bucket degrees, the consecutive difference of
//     newSubIndptr.
//   - newSlicedIndptr, length R*F: absolute bucket starts.
//
// Bucket boundaries are independent lower-bound searches, computed in one
// fully parallel pass. The degree pass depends on all boundaries being
// written, so it is a second task on the same stream: ordering, not host
// blocking, sequences the two. Callers synchronize the stream before reading.
func SliceCSCIndptrByEdgeType(d *device.Device, subIndptr, slicedIndptr, etypes *device.Buffer, numFanouts int) (newSubIndptr, newIndegree, newSlicedIndptr *device.Buffer, err error) {
	if subIndptr.Len() < 1 {
		return nil, nil, nil, fmt.Errorf("kernels: sub_indptr must have at least the trailing sentinel entry")
	}
	if numFanouts < 1 {
		return nil, nil, nil, fmt.Errorf("kernels: num_fanouts must be positive, got %d", numFanouts)
	}

	rows := subIndptr.Len() - 1
	if slicedIndptr.Len() != rows {
		return nil, nil, nil, fmt.Errorf("kernels: sliced_indptr length %d does not match %d rows", slicedIndptr.Len(), rows)
	}

	alloc := d.Allocator()
	newSubIndptr = alloc.Alloc(subIndptr.DType(), rows*numFanouts+1)
	newSlicedIndptr = alloc.Alloc(subIndptr.DType(), rows*numFanouts)

	logutil.Trace("launch slice_csc_indptr_by_etype", "rows", rows, "fanouts", numFanouts, "etypes_dtype", etypes.DType().String())

	d.Stream().Submit("slice_csc_indptr_by_etype", func() error {
		return sliceByTypeAny(subIndptr, slicedIndptr, etypes, newSubIndptr, newSlicedIndptr, numFanouts)
	})

	// Degree pass: consecutive difference over the completed boundaries.
	// The raw difference keeps its first element unchanged, which is not a
	// degree; the view drops it so newIndegree lines up 1:1 with interior
	// boundaries. Scratch is sized by query, then allocated exactly.
	diff := alloc.Alloc(newSubIndptr.DType(), newSubIndptr.Len())
	scratch := alloc.AllocScratch(AdjacentDifferenceScratchBytes(newSubIndptr.Len(), newSubIndptr.DType()))

	d.Stream().Submit("adjacent_difference", func() error {
		defer scratch.Release()
		return AdjacentDifference(newSubIndptr, diff, scratch)
	})

	newIndegree = diff.View(1, rows*numFanouts)

	return newSubIndptr, newIndegree, newSlicedIndptr, nil
}

func sliceByTypeAny(subIndptr, slicedIndptr, etypes, newSubIndptr, newSlicedIndptr *device.Buffer, numFanouts int) error {
	switch subIndptr.DType() {
	case device.DTypeInt8:
		return sliceByTypeTags[int8](subIndptr, slicedIndptr, etypes, newSubIndptr, newSlicedIndptr, numFanouts)
	case device.DTypeInt16:
		return sliceByTypeTags[int16](subIndptr, slicedIndptr, etypes, newSubIndptr, newSlicedIndptr, numFanouts)
	case device.DTypeInt32:
		return sliceByTypeTags[int32](subIndptr, slicedIndptr, etypes, newSubIndptr, newSlicedIndptr, numFanouts)
	case device.DTypeInt64:
		return sliceByTypeTags[int64](subIndptr, slicedIndptr, etypes, newSubIndptr, newSlicedIndptr, numFanouts)
	case device.DTypeUint8:
		return sliceByTypeTags[uint8](subIndptr, slicedIndptr, etypes, newSubIndptr, newSlicedIndptr, numFanouts)
	case device.DTypeUint16:
		return sliceByTypeTags[uint16](subIndptr, slicedIndptr, etypes, newSubIndptr, newSlicedIndptr, numFanouts)
	case device.DTypeUint32:
		return sliceByTypeTags[uint32](subIndptr, slicedIndptr, etypes, newSubIndptr, newSlicedIndptr, numFanouts)
	case device.DTypeUint64:
		return sliceByTypeTags[uint64](subIndptr, slicedIndptr, etypes, newSubIndptr, newSlicedIndptr, numFanouts)
	default:
		return fmt.Errorf("kernels: slice_csc_indptr_by_etype unsupported indptr dtype %s", subIndptr.DType())
	}
}

func sliceByTypeTags[W constraints.Integer](subIndptr, slicedIndptr, etypes, newSubIndptr, newSlicedIndptr *device.Buffer, numFanouts int) error {
	switch etypes.DType() {
	case device.DTypeInt8:
		return sliceByType[W, int8](subIndptr, slicedIndptr, etypes, newSubIndptr, newSlicedIndptr, numFanouts)
	case device.DTypeInt16:
		return sliceByType[W, int16](subIndptr, slicedIndptr, etypes, newSubIndptr, newSlicedIndptr, numFanouts)
	case device.DTypeInt32:
		return sliceByType[W, int32](subIndptr, slicedIndptr, etypes, newSubIndptr, newSlicedIndptr, numFanouts)
	case device.DTypeInt64:
		return sliceByType[W, int64](subIndptr, slicedIndptr, etypes, newSubIndptr, newSlicedIndptr, numFanouts)
	case device.DTypeUint8:
		return sliceByType[W, uint8](subIndptr, slicedIndptr, etypes, newSubIndptr, newSlicedIndptr, numFanouts)
	case device.DTypeUint16:
		return sliceByType[W, uint16](subIndptr, slicedIndptr, etypes, newSubIndptr, newSlicedIndptr, numFanouts)
	case device.DTypeUint32:
		return sliceByType[W, uint32](subIndptr, slicedIndptr, etypes, newSubIndptr, newSlicedIndptr, numFanouts)
	case device.DTypeUint64:
		return sliceByType[W, uint64](subIndptr, slicedIndptr, etypes, newSubIndptr, newSlicedIndptr, numFanouts)
	default:
		return fmt.Errorf("kernels: slice_csc_indptr_by_etype unsupported etypes dtype %s", etypes.DType())
	}
}

func sliceByType[W, E constraints.Integer](subIndptr, slicedIndptr, etypes, newSubIndptr, newSlicedIndptr *device.Buffer, numFanouts int) error {
	sub := device.Elems[W](subIndptr)
	sliced := device.Elems[W](slicedIndptr)
	tags := device.Elems[E](etypes)
	outSub := device.Elems[W](newSubIndptr)
	outSliced := device.Elems[W](newSlicedIndptr)

	rows := len(sub) - 1

	err := grid(rows*numFanouts, func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			row := i / numFanouts
			bucket := E(i % numFanouts)

			r0 := int(sub[row])
			r1 := int(sub[row+1])

			// tag comparison happens at the tag array's own width
			boundary := r0 + lowerBound(tags[r0:r1], bucket)

			outSub[i] = W(boundary)
			outSliced[i] = sliced[row] + W(boundary-r0)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// close the flattened range with the last row's full extent
	outSub[rows*numFanouts] = sub[rows]

	return nil
}
