package api

import "fmt"

// LoadGraphRequest uploads a topology to the server, either as a ready CSC
// (Indptr+Indices) or as a COO edge list (Src+Dst). Exactly one form must be
// set. TypePerEdge/EdgeTypes are optional and make the graph heterogeneous.
type LoadGraphRequest struct {
	Name string `json:"name"`

	Indptr  []int64 `json:"indptr,omitempty"`
	Indices []int64 `json:"indices,omitempty"`

	NumNodes int     `json:"num_nodes,omitempty"`
	Src      []int64 `json:"src,omitempty"`
	Dst      []int64 `json:"dst,omitempty"`

	TypePerEdge []int64 `json:"type_per_edge,omitempty"`
	EdgeTypes   int     `json:"edge_types,omitempty"`
}

type LoadGraphResponse struct {
	Name      string `json:"name"`
	NumNodes  int    `json:"num_nodes"`
	NumEdges  int    `json:"num_edges"`
	EdgeTypes int    `json:"edge_types,omitempty"`
}

// InSubgraphRequest samples the in-neighborhood of the given seeds against
// the loaded graph, optionally in minibatches.
type InSubgraphRequest struct {
	Seeds     []int64 `json:"seeds"`
	BatchSize int     `json:"batch_size,omitempty"`
}

// SubgraphResponse is one sampled minibatch; field layout mirrors
// sample.Subgraph.
type SubgraphResponse struct {
	Seeds        []int64 `json:"seeds"`
	Indptr       []int64 `json:"indptr"`
	Indices      []int64 `json:"indices"`
	TypePerEdge  []int64 `json:"type_per_edge,omitempty"`
	TypeIndptr   []int64 `json:"type_indptr,omitempty"`
	TypeIndegree []int64 `json:"type_indegree,omitempty"`
}

type InSubgraphResponse struct {
	Batches []SubgraphResponse `json:"batches"`
}

type VersionResponse struct {
	Version string `json:"version"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusError is an error carrying the HTTP status the server answered with;
// it is produced on the client side and never serialized.
type StatusError struct {
	StatusCode   int
	Status       string
	ErrorMessage string
}

func (e StatusError) Error() string {
	switch {
	case e.Status != "" && e.ErrorMessage != "":
		return fmt.Sprintf("%s: %s", e.Status, e.ErrorMessage)
	case e.Status != "":
		return e.Status
	case e.ErrorMessage != "":
		return e.ErrorMessage
	default:
		return "something went wrong, please see the graft server logs for details"
	}
}
