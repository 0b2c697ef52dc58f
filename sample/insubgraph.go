// Package sample drives the slicing kernels from minibatches of seed nodes.
// It owns the host/device synchronization boundary: kernels and streams never
// block, and everything handed out of this package is host memory that is
// safe to read.
package sample

import (
	"fmt"
	"time"

	"github.com/graftml/graft/device"
	"github.com/graftml/graft/format"
	"github.com/graftml/graft/graph"
	"github.com/graftml/graft/logutil"
)

// Subgraph is the in-neighborhood of one minibatch of seeds, copied back to
// the host. Row r of Indptr corresponds to Seeds[r]; Indices holds original
// node ids.
type Subgraph struct {
	Seeds   []int64 `json:"seeds"`
	Indptr  []int64 `json:"indptr"`
	Indices []int64 `json:"indices"`

	// TypePerEdge mirrors Indices when the graph is heterogeneous.
	TypePerEdge []int64 `json:"type_per_edge,omitempty"`

	// TypeIndptr and TypeIndegree address rows by (seed, edge type): entry
	// r*F+k bounds seed r's edges of type k. Empty for homogeneous graphs.
	TypeIndptr   []int64 `json:"type_indptr,omitempty"`
	TypeIndegree []int64 `json:"type_indegree,omitempty"`
}

// InSubgraph returns the full in-neighborhood of seeds. For heterogeneous
// graphs each row additionally gets partitioned into per-type buckets.
func InSubgraph(d *device.Device, g *graph.FusedCSC, seeds []int64) (*Subgraph, error) {
	for _, s := range seeds {
		if s < 0 || s >= int64(g.NumNodes) {
			return nil, fmt.Errorf("sample: seed %d outside [0, %d)", s, g.NumNodes)
		}
	}

	start := time.Now()

	nodes := device.FromSlice(d.Allocator(), seeds)
	defer nodes.Release()

	sel, err := graph.IndexSelectCSC(d, g, nodes)
	if err != nil {
		return nil, err
	}
	defer sel.Release()

	var typeIndptr, typeIndegree, typeSliced *device.Buffer
	if g.TypePerEdge != nil {
		typeIndptr, typeIndegree, typeSliced, err = sel.PartitionByEdgeType(d, g.NumEdgeTypes)
		if err != nil {
			return nil, err
		}
		defer typeIndptr.Release()
		defer typeIndegree.Release()
		defer typeSliced.Release()
	}

	// the one place results cross back to the host
	if err := d.Stream().Synchronize(); err != nil {
		return nil, err
	}

	sg := &Subgraph{
		Seeds:   seeds,
		Indptr:  device.Int64s(sel.Indptr),
		Indices: device.Int64s(sel.Indices),
	}
	if g.TypePerEdge != nil {
		sg.TypePerEdge = device.Int64s(sel.TypePerEdge)
		sg.TypeIndptr = device.Int64s(typeIndptr)
		sg.TypeIndegree = device.Int64s(typeIndegree)
	}

	logutil.Trace("in-subgraph sampled",
		"seeds", len(seeds),
		"edges", format.HumanNumber(uint64(len(sg.Indices))),
		"duration", format.ExactDuration(time.Since(start)))

	return sg, nil
}
