// Package server exposes the index coordinator as an RPC-style HTTP API.
//
// Unary calls are JSON POSTs. Streaming calls are websockets carrying one JSON message per frame,
// answered with exactly one reply per request in request order.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/hyperjump/vecagent/internal/agent"
	"github.com/hyperjump/vecagent/internal/config"
	"go.uber.org/zap"
)

// Index is the coordinator surface served by the API.
type Index interface {
	Insert(ctx context.Context, id string, vector []float32) error
	BuildIndex(ctx context.Context, parallelism int) error
	Search(ctx context.Context, query []float32, k uint32, epsilon float32) ([]agent.SearchResult, error)
	Stats() agent.Stats
}

// Server is the HTTP server for the agent API.
type Server struct {
	index    Index
	config   *config.Config
	logger   *zap.Logger
	upgrader websocket.Upgrader
	server   *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(index Index, cfg *config.Config, logger *zap.Logger) *Server {
	s := &Server{
		index:  index,
		config: cfg,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	s.server = &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: s.Handler(),
	}
	return s
}

// operation is one RPC of the API. A nil handler marks the RPC as unimplemented.
type operation struct {
	service string
	name    string
	method  string
	pattern string
	stream  bool
	handler http.HandlerFunc
}

func (s *Server) operations() []operation {
	return []operation{
		{"Insert", "insert", http.MethodPost, "/v1/insert", false, s.handleInsert},
		{"Insert", "streamInsert", http.MethodGet, "/v1/insert/stream", true, s.handleStreamInsert},
		{"Insert", "multiInsert", http.MethodPost, "/v1/insert/multi", false, s.handleMultiInsert},
		{"Search", "search", http.MethodPost, "/v1/search", false, s.handleSearch},
		{"Search", "streamSearch", http.MethodGet, "/v1/search/stream", true, s.handleStreamSearch},
		{"Search", "searchById", http.MethodPost, "/v1/search/id", false, nil},
		{"Search", "streamSearchById", http.MethodGet, "/v1/search/id/stream", true, nil},
		{"Search", "multiSearch", http.MethodPost, "/v1/search/multi", false, nil},
		{"Search", "multiSearchById", http.MethodPost, "/v1/search/multi/id", false, nil},
		{"Agent", "createIndex", http.MethodPost, "/v1/agent/index/create", false, s.handleCreateIndex},
		{"Agent", "saveIndex", http.MethodPost, "/v1/agent/index/save", false, nil},
		{"Agent", "createAndSaveIndex", http.MethodPost, "/v1/agent/index/create-and-save", false, nil},
		{"Agent", "indexInfo", http.MethodGet, "/v1/agent/index/info", false, nil},
	}
}

// Handler builds the router. Streaming routes skip the timeout and compression middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	ops := s.operations()
	for _, op := range ops {
		if op.stream {
			r.Method(op.method, op.pattern, s.route(op))
		}
	}
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Use(middleware.Compress(5))
		for _, op := range ops {
			if !op.stream {
				r.Method(op.method, op.pattern, s.route(op))
			}
		}
	})
	return r
}

func (s *Server) route(op operation) http.HandlerFunc {
	if op.handler != nil {
		return op.handler
	}
	return func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("unimplemented rpc called", zap.String("service", op.service), zap.String("rpc", op.name))
		s.respondError(w, r, op.name, errUnimplemented)
	}
}

// Start starts the HTTP server and blocks until it stops.
// It returns http.ErrServerClosed after Stop.
func (s *Server) Start() error {
	s.logger.Info("Starting server", zap.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server. Open streams are not waited for.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
