package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/hyperjump/vecagent/internal/agent"
	"github.com/hyperjump/vecagent/internal/models"
	"go.uber.org/zap"
)

func (s *Server) handleStreamInsert(w http.ResponseWriter, r *http.Request) {
	instance := r.URL.Path
	serveStream(s, w, r, "streamInsert",
		func(ctx context.Context, req *models.InsertRequest) *models.StreamLocation {
			loc, err := s.insert(ctx, req)
			if err != nil {
				return &models.StreamLocation{Error: rpcError(instance, "streamInsert", err)}
			}
			return &models.StreamLocation{Location: loc}
		},
		func(err error) *models.StreamLocation {
			return &models.StreamLocation{Error: rpcError(instance, "streamInsert", err)}
		},
	)
}

func (s *Server) handleStreamSearch(w http.ResponseWriter, r *http.Request) {
	instance := r.URL.Path
	serveStream(s, w, r, "streamSearch",
		func(ctx context.Context, req *models.SearchRequest) *models.StreamSearchResponse {
			resp, err := s.search(ctx, req)
			if err != nil {
				return &models.StreamSearchResponse{Error: rpcError(instance, "streamSearch", err)}
			}
			return &models.StreamSearchResponse{Response: resp}
		},
		func(err error) *models.StreamSearchResponse {
			return &models.StreamSearchResponse{Error: rpcError(instance, "streamSearch", err)}
		},
	)
}

// serveStream upgrades the connection and answers every inbound message with exactly one reply.
// Requests are handled sequentially by the reading goroutine; replies pass through a bounded
// channel to a single writer, so a slow client stalls the reader instead of growing memory.
// Per-message failures are embedded in the reply and the stream continues.
func serveStream[Req any, Resp any](
	s *Server,
	w http.ResponseWriter,
	r *http.Request,
	rpc string,
	handle func(context.Context, *Req) Resp,
	fail func(error) Resp,
) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("stream upgrade failed", zap.String("rpc", rpc), zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	size := s.config.Stream.BufferSize
	if size <= 0 {
		size = 1
	}
	replies := make(chan Resp, size)
	written := make(chan struct{})
	go func() {
		defer close(written)
		for reply := range replies {
			if err := conn.WriteJSON(reply); err != nil {
				if ctx.Err() == nil {
					s.logger.Debug("stream write failed", zap.String("rpc", rpc), zap.Error(err))
				}
				cancel()
				for range replies {
				}
				return
			}
		}
	}()

	var handled int
loop:
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("stream read failed", zap.String("rpc", rpc), zap.Error(err))
			}
			break
		}
		var reply Resp
		req := new(Req)
		if err := json.Unmarshal(data, req); err != nil {
			reply = fail(fmt.Errorf("%w: invalid message: %w", agent.ErrInvalidArgument, err))
		} else {
			reply = handle(ctx, req)
		}
		handled++
		select {
		case replies <- reply:
		case <-ctx.Done():
			break loop
		}
	}
	close(replies)
	<-written
	s.logger.Debug("stream closed", zap.String("rpc", rpc), zap.Int("messages", handled))
}
