// Package agent coordinates a vector index engine with caller-visible ids.
//
// Inserts are buffered and only reach the engine when BuildIndex drains the buffer, so a vector
// is either pending or mapped, never both. BuildIndex runs under exclusive locks on the engine,
// the buffer and both id map directions (always taken in that order); searches share the engine
// lock and therefore observe either all or none of a build.
package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hyperjump/vecagent/internal/engine"
	"go.uber.org/zap"
)

// Config describes the engine a Coordinator creates.
type Config struct {
	Engine           engine.Kind
	Properties       engine.Properties
	BuildParallelism int
}

// SearchResult is one ranked neighbor. An empty ID means the engine handle had no mapping.
type SearchResult struct {
	ID       string  `json:"id"`
	Distance float32 `json:"distance"`
}

// Stats is a point-in-time view of the coordinator.
type Stats struct {
	Ready     bool `json:"ready"`
	Pending   int  `json:"pending"`
	Indexed   int  `json:"indexed"`
	Dimension int  `json:"dimension"`
}

// EngineFactory creates the engine on Initialize.
type EngineFactory func(kind engine.Kind, props engine.Properties) (engine.Engine, error)

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithLogger sets the logger. Build-time engine corruption is logged at Fatal level.
func WithLogger(logger *zap.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithRecorder sets the operation recorder.
func WithRecorder(r Recorder) CoordinatorOption {
	return func(c *Coordinator) {
		c.recorder = r
	}
}

// WithEngineFactory replaces engine.Create.
func WithEngineFactory(f EngineFactory) CoordinatorOption {
	return func(c *Coordinator) {
		c.create = f
	}
}

// Coordinator owns the engine, the identity map and the pending buffer.
type Coordinator struct {
	cfg      Config
	logger   *zap.Logger
	recorder Recorder
	create   EngineFactory

	ready    atomic.Bool
	engineMu sync.RWMutex
	engine   engine.Engine

	ids     *IdentityMap
	pending *PendingBuffer
}

// NewCoordinator returns an uninitialized coordinator. Call Initialize before use.
func NewCoordinator(cfg Config, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		cfg:      cfg,
		logger:   zap.NewNop(),
		recorder: NoopRecorder{},
		create:   engine.Create,
		ids:      NewIdentityMap(),
		pending:  NewPendingBuffer(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Initialize creates the engine and makes the coordinator ready.
func (c *Coordinator) Initialize() error {
	c.engineMu.Lock()
	defer c.engineMu.Unlock()
	if c.engine != nil {
		return fmt.Errorf("index engine already initialized")
	}
	e, err := c.create(c.cfg.Engine, c.cfg.Properties)
	if err != nil {
		return fmt.Errorf("create index engine: %w", err)
	}
	c.engine = e
	c.ready.Store(true)
	c.logger.Info("index engine created",
		zap.String("engine", string(c.cfg.Engine)),
		zap.Int("dimension", c.cfg.Properties.Dimension),
		zap.String("distance_type", string(c.cfg.Properties.DistanceType)),
		zap.String("object_type", string(c.cfg.Properties.ObjectType)),
	)
	return nil
}

// Insert buffers vector under id. It becomes searchable after the next BuildIndex.
func (c *Coordinator) Insert(ctx context.Context, id string, vector []float32) (err error) {
	start := time.Now()
	defer func() { c.recorder.RecordInsert(time.Since(start), err) }()

	if err := ctx.Err(); err != nil {
		return err
	}
	if !c.ready.Load() {
		return ErrNotReady
	}
	if id == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidArgument)
	}
	if err := c.checkVector(vector); err != nil {
		return err
	}

	vec := make([]float32, len(vector))
	copy(vec, vector)

	c.pending.mu.Lock()
	defer c.pending.mu.Unlock()
	if c.pending.containsLocked(id) {
		return fmt.Errorf("%w: %q is pending", ErrAlreadyExists, id)
	}
	if _, ok := c.ids.Internal(id); ok {
		return fmt.Errorf("%w: %q is indexed", ErrAlreadyExists, id)
	}
	c.pending.appendLocked(id, vec)
	return nil
}

// BuildIndex submits every pending vector to the engine and rebuilds it once.
// parallelism <= 0 uses the configured default.
func (c *Coordinator) BuildIndex(ctx context.Context, parallelism int) (err error) {
	start := time.Now()
	var built, remaining int
	defer func() { c.recorder.RecordBuild(built, remaining, time.Since(start), err) }()

	if err := ctx.Err(); err != nil {
		remaining = c.pending.Len()
		return err
	}
	if !c.ready.Load() {
		remaining = c.pending.Len()
		return ErrNotReady
	}
	if parallelism <= 0 {
		parallelism = c.cfg.BuildParallelism
	}
	if parallelism <= 0 {
		parallelism = 1
	}

	c.engineMu.Lock()
	defer c.engineMu.Unlock()
	c.pending.mu.Lock()
	defer c.pending.mu.Unlock()
	c.ids.lock()
	defer c.ids.unlock()

	var (
		failed []pendingEntry
		errs   []error
	)
	for _, e := range c.pending.drainLocked() {
		oid, err := c.engine.Insert(e.vector)
		if err != nil {
			failed = append(failed, e)
			errs = append(errs, fmt.Errorf("insert %q: %w", e.id, err))
			continue
		}
		c.ids.setLocked(e.id, oid)
		built++
	}
	c.pending.restoreLocked(failed)
	remaining = len(c.pending.entries)

	if err := c.engine.Build(parallelism); err != nil {
		if errors.Is(err, engine.ErrCorrupted) {
			c.logger.Fatal("index build corrupted the engine", zap.Error(err))
		}
		errs = append(errs, fmt.Errorf("build: %w", err))
	}
	if len(errs) > 0 {
		c.logger.Error("index build failed",
			zap.Int("built", built),
			zap.Int("pending", remaining),
			zap.Errors("errors", errs),
		)
		return fmt.Errorf("%w: %w", ErrEngine, errors.Join(errs...))
	}
	c.logger.Info("index built",
		zap.Int("built", built),
		zap.Int("indexed", len(c.ids.forward)),
		zap.Int("parallelism", parallelism),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

// Search returns up to k neighbors of query ordered by ascending distance.
// Vectors that are still pending are never returned.
func (c *Coordinator) Search(ctx context.Context, query []float32, k uint32, epsilon float32) (results []SearchResult, err error) {
	start := time.Now()
	defer func() { c.recorder.RecordSearch(int(k), len(results), time.Since(start), err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !c.ready.Load() {
		return nil, ErrNotReady
	}
	if err := c.checkVector(query); err != nil {
		return nil, err
	}

	c.engineMu.RLock()
	defer c.engineMu.RUnlock()
	neighbors, err := c.engine.Search(query, int(k), epsilon)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEngine, err)
	}
	results = make([]SearchResult, 0, len(neighbors))
	for _, n := range neighbors {
		id, _ := c.ids.External(n.ID)
		results = append(results, SearchResult{ID: id, Distance: n.Distance})
	}
	return results, nil
}

// Stats reports readiness and the pending and indexed counts.
func (c *Coordinator) Stats() Stats {
	return Stats{
		Ready:     c.ready.Load(),
		Pending:   c.pending.Len(),
		Indexed:   c.ids.Len(),
		Dimension: c.cfg.Properties.Dimension,
	}
}

func (c *Coordinator) checkVector(vector []float32) error {
	if len(vector) == 0 {
		return fmt.Errorf("%w: vector is required", ErrInvalidArgument)
	}
	if dim := c.cfg.Properties.Dimension; dim > 0 && len(vector) != dim {
		return fmt.Errorf("%w: vector has %d dimensions, expected %d", ErrInvalidArgument, len(vector), dim)
	}
	return nil
}
