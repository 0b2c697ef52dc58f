// Package graph holds the device-resident CSC topology the sampling kernels
// slice against, plus host-side builders that validate untrusted input once at
// the load boundary so kernels can stay unchecked.
package graph

import (
	"fmt"
	"sort"

	"golang.org/x/exp/constraints"

	"github.com/graftml/graft/device"
	"github.com/graftml/graft/format"
	"github.com/graftml/graft/logutil"
)

// FusedCSC is a graph in compressed sparse column form. Indptr has one entry
// per node plus a trailing sentinel; Indices holds the source node of every
// in-edge, grouped by destination. TypePerEdge, when present, tags each edge
// with its type id, ascending within every node's range.
type FusedCSC struct {
	Indptr      *device.Buffer
	Indices     *device.Buffer
	TypePerEdge *device.Buffer

	NumNodes     int
	NumEdges     int
	NumEdgeTypes int
}

// FromCSC uploads a CSC topology. The offset array is validated once here:
// it must be monotonically non-decreasing, start at zero, and close over
// exactly len(indices) edges.
func FromCSC[W, T constraints.Integer](d *device.Device, indptr []W, indices []T) (*FusedCSC, error) {
	if len(indptr) < 1 {
		return nil, fmt.Errorf("graph: indptr must have at least the trailing sentinel entry")
	}
	if indptr[0] != 0 {
		return nil, fmt.Errorf("graph: indptr must start at zero, got %d", indptr[0])
	}
	for i := 1; i < len(indptr); i++ {
		if indptr[i] < indptr[i-1] {
			return nil, fmt.Errorf("graph: indptr decreases at %d: %d < %d", i, indptr[i], indptr[i-1])
		}
	}
	if int(indptr[len(indptr)-1]) != len(indices) {
		return nil, fmt.Errorf("graph: indptr closes over %d edges, have %d", indptr[len(indptr)-1], len(indices))
	}

	numNodes := len(indptr) - 1
	for i, s := range indices {
		if int(s) < 0 || int(s) >= numNodes {
			return nil, fmt.Errorf("graph: edge %d has source %d outside [0, %d)", i, s, numNodes)
		}
	}

	g := &FusedCSC{
		Indptr:   device.FromSlice(d.Allocator(), indptr),
		Indices:  device.FromSlice(d.Allocator(), indices),
		NumNodes: numNodes,
		NumEdges: len(indices),
	}

	logutil.Trace("graph loaded",
		"nodes", format.HumanNumber(uint64(g.NumNodes)),
		"edges", format.HumanNumber(uint64(g.NumEdges)))

	return g, nil
}

// AttachTypePerEdge adds per-edge type tags to g. Tags must already be
// ascending within each node's edge range; the kernels' binary searches rely
// on it, so it is checked here rather than per launch.
func AttachTypePerEdge[W, E constraints.Integer](g *FusedCSC, indptr []W, tags []E, numEdgeTypes int) error {
	if len(tags) != g.NumEdges {
		return fmt.Errorf("graph: %d type tags for %d edges", len(tags), g.NumEdges)
	}
	if numEdgeTypes < 1 {
		return fmt.Errorf("graph: num edge types must be positive, got %d", numEdgeTypes)
	}

	for node := 0; node < g.NumNodes; node++ {
		lo, hi := int(indptr[node]), int(indptr[node+1])
		for i := lo + 1; i < hi; i++ {
			if tags[i] < tags[i-1] {
				return fmt.Errorf("graph: type tags of node %d not ascending at edge %d", node, i)
			}
		}
		for i := lo; i < hi; i++ {
			if int(tags[i]) < 0 || int(tags[i]) >= numEdgeTypes {
				return fmt.Errorf("graph: edge %d has type %d outside [0, %d)", i, tags[i], numEdgeTypes)
			}
		}
	}

	g.TypePerEdge = device.FromSlice(g.Indptr.Allocator(), tags)
	g.NumEdgeTypes = numEdgeTypes

	return nil
}

// FromCOO builds a CSC graph from an edge list, sorting edges by destination
// and then by type within each destination so the per-row tag ordering the
// kernels need holds by construction.
func FromCOO[T, E constraints.Integer](d *device.Device, numNodes int, src, dst []T, etype []E, numEdgeTypes int) (*FusedCSC, error) {
	if len(src) != len(dst) {
		return nil, fmt.Errorf("graph: %d sources for %d destinations", len(src), len(dst))
	}
	if etype != nil && len(etype) != len(src) {
		return nil, fmt.Errorf("graph: %d type tags for %d edges", len(etype), len(src))
	}

	order := make([]int, len(src))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		ea, eb := order[a], order[b]
		if dst[ea] != dst[eb] {
			return dst[ea] < dst[eb]
		}
		if etype != nil && etype[ea] != etype[eb] {
			return etype[ea] < etype[eb]
		}
		return src[ea] < src[eb]
	})

	indptr := make([]int64, numNodes+1)
	indices := make([]T, len(src))
	var tags []E
	if etype != nil {
		tags = make([]E, len(src))
	}

	for out, e := range order {
		if int(dst[e]) < 0 || int(dst[e]) >= numNodes {
			return nil, fmt.Errorf("graph: edge %d has destination %d outside [0, %d)", e, dst[e], numNodes)
		}
		indptr[int(dst[e])+1]++
		indices[out] = src[e]
		if tags != nil {
			tags[out] = etype[e]
		}
	}
	for i := 1; i <= numNodes; i++ {
		indptr[i] += indptr[i-1]
	}

	g, err := FromCSC(d, indptr, indices)
	if err != nil {
		return nil, err
	}

	if tags != nil {
		if err := AttachTypePerEdge(g, indptr, tags, numEdgeTypes); err != nil {
			return nil, err
		}
	}

	return g, nil
}
