package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graftml/graft/api"
	"github.com/graftml/graft/device"
	"github.com/graftml/graft/version"
)

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dev := device.New("test")
	t.Cleanup(func() { dev.Close() })

	s := NewServer(dev)
	return s, s.GenerateRoutes()
}

func post(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(w, req)
	return w
}

func TestVersionHandler(t *testing.T) {
	_, h := newTestServer(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/version", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp api.VersionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, version.Version, resp.Version)
}

func TestHeartbeat(t *testing.T) {
	_, h := newTestServer(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodHead, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestIDHeader(t *testing.T) {
	_, h := newTestServer(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/version", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	h.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-Id"))
}

func TestLoadGraphAndSample(t *testing.T) {
	_, h := newTestServer(t)

	w := post(t, h, "/api/graph", api.LoadGraphRequest{
		Name:    "ref",
		Indptr:  []int64{0, 3, 5, 7, 9, 12, 14},
		Indices: []int64{0, 1, 4, 2, 3, 0, 5, 1, 2, 0, 3, 5, 1, 4},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var loaded api.LoadGraphResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loaded))
	assert.Equal(t, 6, loaded.NumNodes)
	assert.Equal(t, 14, loaded.NumEdges)

	w = post(t, h, "/api/insubgraph", api.InSubgraphRequest{Seeds: []int64{0, 5, 3}, BatchSize: 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp api.InSubgraphResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Batches, 3)

	assert.Equal(t, []int64{0, 3}, resp.Batches[0].Indptr)
	assert.Equal(t, []int64{0, 1, 4}, resp.Batches[0].Indices)
	assert.Equal(t, []int64{0, 2}, resp.Batches[1].Indptr)
	assert.Equal(t, []int64{1, 4}, resp.Batches[1].Indices)
	assert.Equal(t, []int64{0, 2}, resp.Batches[2].Indptr)
	assert.Equal(t, []int64{1, 2}, resp.Batches[2].Indices)
}

func TestLoadGraphHetero(t *testing.T) {
	_, h := newTestServer(t)

	w := post(t, h, "/api/graph", api.LoadGraphRequest{
		Name:        "hetero",
		Indptr:      []int64{0, 3, 5, 7, 9, 12, 14},
		Indices:     []int64{0, 1, 4, 2, 3, 0, 5, 1, 2, 0, 3, 5, 1, 4},
		TypePerEdge: []int64{0, 0, 2, 0, 2, 0, 2, 1, 1, 1, 3, 3, 1, 3},
		EdgeTypes:   4,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = post(t, h, "/api/insubgraph", api.InSubgraphRequest{Seeds: []int64{0, 5, 3}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp api.InSubgraphResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Batches, 1)

	b := resp.Batches[0]
	assert.Equal(t, []int64{0, 2, 2, 3, 3, 3, 4, 4, 5, 5, 7, 7, 7}, b.TypeIndptr)
	assert.Equal(t, []int64{2, 0, 1, 0, 0, 1, 0, 1, 0, 2, 0, 0}, b.TypeIndegree)
}

func TestInSubgraphErrors(t *testing.T) {
	_, h := newTestServer(t)

	// no graph loaded yet
	w := post(t, h, "/api/insubgraph", api.InSubgraphRequest{Seeds: []int64{0}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post(t, h, "/api/graph", api.LoadGraphRequest{
		Indptr:  []int64{0, 1},
		Indices: []int64{0},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// no seeds
	w = post(t, h, "/api/insubgraph", api.InSubgraphRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// seed out of range
	w = post(t, h, "/api/insubgraph", api.InSubgraphRequest{Seeds: []int64{9}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoadGraphErrors(t *testing.T) {
	_, h := newTestServer(t)

	// empty request
	w := post(t, h, "/api/graph", api.LoadGraphRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// both topologies at once
	w = post(t, h, "/api/graph", api.LoadGraphRequest{
		Indptr: []int64{0, 1}, Indices: []int64{0},
		NumNodes: 1, Src: []int64{0}, Dst: []int64{0},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// malformed offsets
	w = post(t, h, "/api/graph", api.LoadGraphRequest{
		Indptr: []int64{0, 2, 1}, Indices: []int64{0, 0},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoadGraphFromCOO(t *testing.T) {
	_, h := newTestServer(t)

	w := post(t, h, "/api/graph", api.LoadGraphRequest{
		Name:     "coo",
		NumNodes: 3,
		Src:      []int64{1, 2, 0},
		Dst:      []int64{0, 0, 2},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = post(t, h, "/api/insubgraph", api.InSubgraphRequest{Seeds: []int64{0}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp api.InSubgraphResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Batches, 1)
	assert.Equal(t, []int64{0, 2}, resp.Batches[0].Indptr)
	assert.Equal(t, []int64{1, 2}, resp.Batches[0].Indices)
}
