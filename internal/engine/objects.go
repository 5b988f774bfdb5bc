package engine

import (
	"fmt"
	"math"
	"sort"
)

// objects is the vector repository shared by the engines. Handle h lives at vectors[h-1];
// handles start at 1 like NGT object ids. The first built entries are searchable.
type objects struct {
	dimensions int
	objectType ObjectType
	distance   distanceFunc
	vectors    [][]float32
	built      int
}

func newObjects(props Properties) (objects, error) {
	if props.Dimension <= 0 {
		return objects{}, fmt.Errorf("dimensions must be positive")
	}
	switch props.ObjectType {
	case ObjectFloat, ObjectUint8, "":
	default:
		return objects{}, fmt.Errorf("unknown object type: %s (supported: float, uint8)", props.ObjectType)
	}
	dist, err := distanceFor(props.DistanceType)
	if err != nil {
		return objects{}, err
	}
	return objects{
		dimensions: props.Dimension,
		objectType: props.ObjectType,
		distance:   dist,
	}, nil
}

func (o *objects) add(vector []float32) (uint32, error) {
	if len(vector) != o.dimensions {
		return 0, fmt.Errorf("%w: got %d, expected %d", ErrDimensionMismatch, len(vector), o.dimensions)
	}
	if uint64(len(o.vectors)) >= math.MaxUint32 {
		return 0, ErrCapacity
	}
	vec := make([]float32, o.dimensions)
	copy(vec, vector)
	if o.objectType == ObjectUint8 {
		quantizeUint8(vec)
	}
	o.vectors = append(o.vectors, vec)
	return uint32(len(o.vectors)), nil
}

func (o *objects) checkQuery(query []float32) error {
	if len(query) != o.dimensions {
		return fmt.Errorf("%w: query has %d, expected %d", ErrDimensionMismatch, len(query), o.dimensions)
	}
	return nil
}

// prepareQuery applies the object type so queries compare like stored vectors.
func (o *objects) prepareQuery(query []float32) []float32 {
	if o.objectType != ObjectUint8 {
		return query
	}
	q := make([]float32, len(query))
	copy(q, query)
	quantizeUint8(q)
	return q
}

func (o *objects) vector(id uint32) []float32 {
	return o.vectors[id-1]
}

// Len returns the number of built vectors.
func (o *objects) Len() int {
	return o.built
}

func quantizeUint8(vec []float32) {
	for i, v := range vec {
		vec[i] = float32(math.Max(0, math.Min(255, math.Round(float64(v)))))
	}
}

// sortNeighbors orders by ascending distance, ties by handle.
func sortNeighbors(ns []Neighbor) {
	sort.Slice(ns, func(i, j int) bool {
		if ns[i].Distance != ns[j].Distance {
			return ns[i].Distance < ns[j].Distance
		}
		return ns[i].ID < ns[j].ID
	})
}
