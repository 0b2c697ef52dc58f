// Package server exposes the sampling pipeline over HTTP. It holds at most
// one loaded graph at a time; loading a new one replaces it.
package server

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/graftml/graft/api"
	"github.com/graftml/graft/device"
	"github.com/graftml/graft/envconfig"
	"github.com/graftml/graft/format"
	"github.com/graftml/graft/graph"
	"github.com/graftml/graft/sample"
	"github.com/graftml/graft/version"
)

type Server struct {
	dev *device.Device

	mu        sync.Mutex
	graphName string
	graph     *graph.FusedCSC
}

func NewServer(dev *device.Device) *Server {
	return &Server{dev: dev}
}

func (s *Server) LoadGraphHandler(c *gin.Context) {
	var req api.LoadGraphRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	g, err := buildGraph(s.dev, &req)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	s.mu.Lock()
	if s.graph != nil {
		s.graph.Indptr.Release()
		s.graph.Indices.Release()
		if s.graph.TypePerEdge != nil {
			s.graph.TypePerEdge.Release()
		}
	}
	s.graph = g
	s.graphName = req.Name
	s.mu.Unlock()

	slog.Info("graph loaded",
		"name", req.Name,
		"nodes", format.HumanNumber(uint64(g.NumNodes)),
		"edges", format.HumanNumber(uint64(g.NumEdges)),
		"edge_types", g.NumEdgeTypes,
		"vram", format.HumanBytes(s.dev.Allocator().Live()))

	c.JSON(http.StatusOK, api.LoadGraphResponse{
		Name:      req.Name,
		NumNodes:  g.NumNodes,
		NumEdges:  g.NumEdges,
		EdgeTypes: g.NumEdgeTypes,
	})
}

func buildGraph(dev *device.Device, req *api.LoadGraphRequest) (*graph.FusedCSC, error) {
	switch {
	case len(req.Indptr) > 0 && len(req.Src) > 0:
		return nil, fmt.Errorf("request must carry either a CSC or a COO topology, not both")
	case len(req.Indptr) > 0:
		g, err := graph.FromCSC(dev, req.Indptr, req.Indices)
		if err != nil {
			return nil, err
		}
		if len(req.TypePerEdge) > 0 {
			if err := graph.AttachTypePerEdge(g, req.Indptr, req.TypePerEdge, req.EdgeTypes); err != nil {
				return nil, err
			}
		}
		return g, nil
	case len(req.Src) > 0:
		var etype []int64
		if len(req.TypePerEdge) > 0 {
			etype = req.TypePerEdge
		}
		return graph.FromCOO(dev, req.NumNodes, req.Src, req.Dst, etype, req.EdgeTypes)
	default:
		return nil, fmt.Errorf("request carries no topology")
	}
}

func (s *Server) InSubgraphHandler(c *gin.Context) {
	var req api.InSubgraphRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	s.mu.Lock()
	g := s.graph
	s.mu.Unlock()

	if g == nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, api.ErrorResponse{Error: "no graph loaded"})
		return
	}
	if len(req.Seeds) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, api.ErrorResponse{Error: "no seeds given"})
		return
	}

	p := &sample.Pipeline{Device: s.dev, Graph: g, BatchSize: req.BatchSize}

	var resp api.InSubgraphResponse
	err := p.Each(c.Request.Context(), req.Seeds, func(sg *sample.Subgraph) error {
		resp.Batches = append(resp.Batches, api.SubgraphResponse{
			Seeds:        sg.Seeds,
			Indptr:       sg.Indptr,
			Indices:      sg.Indices,
			TypePerEdge:  sg.TypePerEdge,
			TypeIndptr:   sg.TypeIndptr,
			TypeIndegree: sg.TypeIndegree,
		})
		return nil
	})
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) VersionHandler(c *gin.Context) {
	c.JSON(http.StatusOK, api.VersionResponse{Version: version.Version})
}

// requestID tags every request so log lines from concurrent samples can be
// told apart.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.New().String()
		}
		c.Header("X-Request-Id", id)
		c.Set("request_id", id)
		c.Next()
	}
}

func (s *Server) GenerateRoutes() http.Handler {
	config := cors.DefaultConfig()
	config.AllowWildcard = true
	config.AllowBrowserExtensions = true
	config.AllowOrigins = envconfig.Origins()

	r := gin.Default()
	r.Use(cors.New(config), requestID())

	r.POST("/api/graph", s.LoadGraphHandler)
	r.POST("/api/insubgraph", s.InSubgraphHandler)
	r.GET("/api/version", s.VersionHandler)

	for _, method := range []string{http.MethodGet, http.MethodHead} {
		r.Handle(method, "/", func(c *gin.Context) {
			c.String(http.StatusOK, "Graft is running")
		})
	}

	return r
}

func Serve(ln net.Listener) error {
	if !envconfig.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	dev := device.New("default")
	defer dev.Close()

	s := NewServer(dev)

	slog.Info("listening", "addr", ln.Addr(), "version", version.Version)

	srv := &http.Server{Handler: s.GenerateRoutes()}
	return srv.Serve(ln)
}
