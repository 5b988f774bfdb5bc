package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/hyperjump/vecagent/internal/agent"
	"github.com/hyperjump/vecagent/internal/models"
	"go.uber.org/zap"
)

func (s *Server) insert(ctx context.Context, req *models.InsertRequest) (*models.Location, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", agent.ErrInvalidArgument, err)
	}
	if err := s.index.Insert(ctx, req.Vector.ID, req.Vector.Vector); err != nil {
		return nil, err
	}
	return &models.Location{
		Name: s.config.Agent.Name,
		UUID: req.Vector.ID,
		IPs:  s.config.Agent.IPs,
	}, nil
}

func (s *Server) search(ctx context.Context, req *models.SearchRequest) (*models.SearchResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", agent.ErrInvalidArgument, err)
	}
	requestID := req.Config.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	found, err := s.index.Search(ctx, req.Vector, req.Config.Num, req.Config.Epsilon)
	if err != nil {
		return nil, err
	}
	resp := &models.SearchResponse{
		RequestID: requestID,
		Results:   make([]*models.Distance, 0, len(found)),
	}
	for _, f := range found {
		resp.Results = append(resp.Results, &models.Distance{ID: f.ID, Distance: f.Distance})
	}
	return resp, nil
}

func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request) {
	var req models.InsertRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, r, "insert", err)
		return
	}
	loc, err := s.insert(r.Context(), &req)
	if err != nil {
		s.respondError(w, r, "insert", err)
		return
	}
	s.respondJSON(w, http.StatusOK, loc)
}

func (s *Server) handleMultiInsert(w http.ResponseWriter, r *http.Request) {
	var req models.MultiInsertRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, r, "multiInsert", err)
		return
	}
	out := &models.Locations{Locations: make([]*models.Location, 0, len(req.Requests))}
	for i, ir := range req.Requests {
		if ir == nil {
			ir = &models.InsertRequest{}
		}
		loc, err := s.insert(r.Context(), ir)
		if err != nil {
			s.respondError(w, r, "multiInsert", fmt.Errorf("request %d: %w", i, err))
			return
		}
		out.Locations = append(out.Locations, loc)
	}
	s.respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, r, "search", err)
		return
	}
	resp, err := s.search(r.Context(), &req)
	if err != nil {
		s.respondError(w, r, "search", err)
		return
	}
	s.logger.Debug("search request",
		zap.String("request_id", resp.RequestID),
		zap.Uint32("num", req.Config.Num),
		zap.Int("found", len(resp.Results)),
	)
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateIndex(w http.ResponseWriter, r *http.Request) {
	var req models.CreateIndexRequest
	if err := decodeBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
		s.respondError(w, r, "createIndex", err)
		return
	}
	s.logger.Debug("create index request", zap.Uint32("pool_size", req.PoolSize))
	if err := s.index.BuildIndex(r.Context(), int(req.PoolSize)); err != nil {
		s.respondError(w, r, "createIndex", err)
		return
	}
	s.respondJSON(w, http.StatusOK, models.Empty{})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	stats := s.index.Stats()
	status := http.StatusOK
	if !stats.Ready {
		status = http.StatusServiceUnavailable
	}
	s.respondJSON(w, status, stats)
}

// decodeBody decodes the JSON body into v. Malformed bodies are invalid arguments; an empty body
// is reported as io.EOF wrapped the same way.
func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %w", agent.ErrInvalidArgument, err)
	}
	return nil
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, rpc string, err error) {
	e := rpcError(r.URL.Path, rpc, err)
	if Code(e.Status) == CodeInternal {
		s.logger.Error(rpc+" failed", zap.Error(err))
	} else {
		s.logger.Debug(rpc+" rejected", zap.String("code", e.Type), zap.Error(err))
	}
	s.respondJSON(w, Code(e.Status).HTTPStatus(), e)
}
