package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hyperjump/vecagent/internal/models"
	"golang.org/x/sync/errgroup"
)

// Client talks to a running agent over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the agent at baseURL, e.g. "http://localhost:8080".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 2 * time.Minute},
	}
}

// APIError is a non-2xx reply from the agent.
type APIError struct {
	StatusCode int
	RPC        *models.RPCError
	Body       string
}

func (e *APIError) Error() string {
	if e.RPC != nil {
		return fmt.Sprintf("server returned %d: %s: %s", e.StatusCode, e.RPC.Type, e.RPC.Error)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Body)
}

func (c *Client) post(ctx context.Context, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
		var rpc models.RPCError
		if json.Unmarshal(b, &rpc) == nil && rpc.Type != "" {
			apiErr.RPC = &rpc
		}
		return apiErr
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Insert registers one vector.
func (c *Client) Insert(ctx context.Context, id string, vector []float32) (*models.Location, error) {
	var loc models.Location
	req := &models.InsertRequest{Vector: &models.Object{ID: id, Vector: vector}}
	if err := c.post(ctx, "/v1/insert", req, &loc); err != nil {
		return nil, err
	}
	return &loc, nil
}

// Search queries the built index.
func (c *Client) Search(ctx context.Context, vector []float32, num uint32, epsilon float32) (*models.SearchResponse, error) {
	var resp models.SearchResponse
	req := &models.SearchRequest{Vector: vector, Config: &models.SearchConfig{Num: num, Epsilon: epsilon}}
	if err := c.post(ctx, "/v1/search", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateIndex builds the index. poolSize 0 uses the agent's configured parallelism.
func (c *Client) CreateIndex(ctx context.Context, poolSize uint32) error {
	var out models.Empty
	return c.post(ctx, "/v1/agent/index/create", &models.CreateIndexRequest{PoolSize: poolSize}, &out)
}

// StreamInsert sends every object over one insert stream and calls onReply with each reply in
// request order. It returns after all replies were received.
func (c *Client) StreamInsert(ctx context.Context, objects []*models.Object, onReply func(*models.Object, *models.StreamLocation)) error {
	url := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/v1/insert/stream"
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial stream: %w", err)
	}
	resp.Body.Close()
	defer conn.Close()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for _, obj := range objects {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := conn.WriteJSON(&models.InsertRequest{Vector: obj}); err != nil {
				return fmt.Errorf("send %q: %w", obj.ID, err)
			}
		}
		return nil
	})
	g.Go(func() error {
		for _, obj := range objects {
			var reply models.StreamLocation
			if err := conn.ReadJSON(&reply); err != nil {
				return fmt.Errorf("receive reply for %q: %w", obj.ID, err)
			}
			onReply(obj, &reply)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// ReadObjects reads one JSON object {"id": ..., "vector": [...]} per line. Blank lines are skipped.
func ReadObjects(r io.Reader) ([]*models.Object, error) {
	var out []*models.Object
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var obj models.Object
		if err := json.Unmarshal([]byte(text), &obj); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, &obj)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
