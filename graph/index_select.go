package graph

import (
	"fmt"

	"github.com/graftml/graft/device"
	"github.com/graftml/graft/kernels"
)

// Selection is the result of IndexSelectCSC: the selected rows compacted into
// a fresh CSC fragment, plus the slicing intermediates the heterogeneous
// sampling path re-partitions.
type Selection struct {
	// Indptr is the compacted offset array, one row per selected node.
	Indptr *device.Buffer
	// Indices holds the gathered in-edge sources of the selected rows.
	Indices *device.Buffer
	// TypePerEdge holds the gathered tags of the selected rows, nil when the
	// graph carries none.
	TypePerEdge *device.Buffer

	// SlicedIndptr and Degree are the per-row absolute starts and lengths in
	// the unsliced edge data, as produced by the offset slicer.
	SlicedIndptr *device.Buffer
	Degree       *device.Buffer
}

// IndexSelectCSC compacts the rows named by nodes into a new CSC fragment.
//
// The offset slicing and the scan run asynchronously, but the gather's output
// size is only known once the scan has run, so this operation synchronizes the
// stream once for size discovery before submitting the gather. Node ids must
// be valid row indices; that precondition is unchecked here.
func IndexSelectCSC(d *device.Device, g *FusedCSC, nodes *device.Buffer) (*Selection, error) {
	slicedIndptr, degree, err := kernels.SliceCSCIndptr(d, g.Indptr, nodes)
	if err != nil {
		return nil, err
	}

	outIndptr := kernels.ExclusiveSum(d, degree)

	// size discovery: the total edge count lives in the scan's last element
	if err := d.Stream().Synchronize(); err != nil {
		return nil, err
	}
	total := device.Int64At(outIndptr, outIndptr.Len()-1)

	sel := &Selection{
		Indptr:       outIndptr,
		Indices:      d.Allocator().Alloc(g.Indices.DType(), int(total)),
		SlicedIndptr: slicedIndptr,
		Degree:       degree,
	}

	dstStart := outIndptr.View(0, nodes.Len())
	if err := kernels.GatherRows(d, g.Indices, slicedIndptr, dstStart, degree, sel.Indices); err != nil {
		return nil, err
	}

	if g.TypePerEdge != nil {
		sel.TypePerEdge = d.Allocator().Alloc(g.TypePerEdge.DType(), int(total))
		if err := kernels.GatherRows(d, g.TypePerEdge, slicedIndptr, dstStart, degree, sel.TypePerEdge); err != nil {
			return nil, err
		}
	}

	return sel, nil
}

// PartitionByEdgeType re-partitions a selection's rows into per-type buckets
// using the type-partitioned offset slicer. The selection must come from a
// graph with type tags.
func (s *Selection) PartitionByEdgeType(d *device.Device, numEdgeTypes int) (newSubIndptr, newIndegree, newSlicedIndptr *device.Buffer, err error) {
	if s.TypePerEdge == nil {
		return nil, nil, nil, fmt.Errorf("graph: selection has no type tags to partition by")
	}

	return kernels.SliceCSCIndptrByEdgeType(d, s.Indptr, s.SlicedIndptr, s.TypePerEdge, numEdgeTypes)
}

// Release returns every buffer of the selection to the allocator.
func (s *Selection) Release() {
	for _, b := range []*device.Buffer{s.Indptr, s.Indices, s.TypePerEdge, s.SlicedIndptr, s.Degree} {
		if b != nil {
			b.Release()
		}
	}
}
