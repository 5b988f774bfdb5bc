// Package engine provides the approximate nearest neighbor engines fronted by the agent.
//
// An engine assigns a numeric handle to every inserted vector, but inserted vectors only become
// searchable after Build. Engines are not safe for concurrent use: callers must serialize Insert
// and Build against everything else. Concurrent Search calls are safe between builds.
package engine

import (
	"errors"
	"fmt"
	"os"
)

// Kind selects an engine implementation.
type Kind string

const (
	// KindFlat scans every built vector. Exact, suitable for small indexes.
	KindFlat Kind = "flat"
	// KindGraph walks a k-nearest-neighbor graph built at Build time.
	KindGraph Kind = "graph"
)

// DistanceType is the metric used to compare vectors.
type DistanceType string

const (
	DistanceL2     DistanceType = "l2"
	DistanceL1     DistanceType = "l1"
	DistanceAngle  DistanceType = "angle"
	DistanceCosine DistanceType = "cosine"
)

// ObjectType is the element type vectors are stored as.
type ObjectType string

const (
	ObjectFloat ObjectType = "float"
	// ObjectUint8 rounds every component and clamps it into [0, 255].
	ObjectUint8 ObjectType = "uint8"
)

var (
	// ErrDimensionMismatch is returned when a vector length differs from the engine dimension.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrCapacity is returned when the handle space is exhausted.
	ErrCapacity = errors.New("object handle space exhausted")
	// ErrCorrupted reports a broken internal structure. The engine must not be used afterwards.
	ErrCorrupted = errors.New("index structure corrupted")
)

// Properties configure an engine at creation.
type Properties struct {
	Dimension    int
	DistanceType DistanceType
	ObjectType   ObjectType
	// Path is the engine home directory. Created when non-empty.
	Path string
	// Edges is the number of neighbors kept per object by the graph engine.
	Edges int
	// SearchEdges, when positive and below Edges, caps the nearest neighbors each object links to
	// in the graph walked by searches. Reverse and component-linking edges are always kept.
	SearchEdges int
}

// Neighbor is a single search hit.
type Neighbor struct {
	ID       uint32
	Distance float32
}

// Engine is an ANN index with explicit build.
type Engine interface {
	// Insert stages vector and returns its handle. The vector is not searchable until Build.
	Insert(vector []float32) (uint32, error)
	// Build materializes all staged vectors.
	Build(parallelism int) error
	// Search returns up to k built neighbors of query ordered by ascending distance.
	Search(query []float32, k int, epsilon float32) ([]Neighbor, error)
	// Len returns the number of built vectors.
	Len() int
}

// Create builds an engine of the given kind.
func Create(kind Kind, props Properties) (Engine, error) {
	if props.Path != "" {
		if err := os.MkdirAll(props.Path, 0755); err != nil {
			return nil, fmt.Errorf("create index dir: %w", err)
		}
	}
	switch kind {
	case KindGraph, "":
		return NewGraphIndex(props)
	case KindFlat:
		return NewFlatIndex(props)
	default:
		return nil, fmt.Errorf("unknown engine: %s (supported: flat, graph)", kind)
	}
}
