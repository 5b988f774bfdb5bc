package engine

import (
	"container/heap"
	"fmt"

	"golang.org/x/sync/errgroup"
)

const (
	defaultEdges = 10
	maxSeeds     = 8
)

// GraphIndex is an approximate engine over a k-nearest-neighbor graph (ANNG).
// Build recomputes the neighbor lists of every object; Search walks the graph best-first
// and keeps exploring while candidates lie within (1+epsilon) of the current k-th distance.
// Build links disconnected components, so every built object is reachable from any seed.
type GraphIndex struct {
	objects
	edges       int
	searchEdges int
	graph       [][]uint32
}

// NewGraphIndex creates a graph engine.
func NewGraphIndex(props Properties) (*GraphIndex, error) {
	objs, err := newObjects(props)
	if err != nil {
		return nil, err
	}
	if props.SearchEdges < 0 {
		return nil, fmt.Errorf("search edges must not be negative")
	}
	edges := props.Edges
	if edges <= 0 {
		edges = defaultEdges
	}
	return &GraphIndex{
		objects:     objs,
		edges:       edges,
		searchEdges: props.SearchEdges,
	}, nil
}

// Insert stages vector and returns its handle.
func (g *GraphIndex) Insert(vector []float32) (uint32, error) {
	return g.add(vector)
}

// Build rebuilds the neighbor graph over all objects, computing up to parallelism
// neighbor lists at a time.
func (g *GraphIndex) Build(parallelism int) error {
	n := len(g.vectors)
	if n == g.built {
		return nil
	}
	if parallelism <= 0 {
		parallelism = 1
	}

	adjacency := make([][]uint32, n)
	var eg errgroup.Group
	eg.SetLimit(parallelism)
	for i := 0; i < n; i++ {
		eg.Go(func() error {
			adjacency[i] = g.nearestTo(i, n)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	// Every edge gets its reverse, so reachability equals undirected connectivity.
	reverse := make([][]uint32, n)
	for i, ns := range adjacency {
		for _, id := range ns {
			reverse[id-1] = append(reverse[id-1], uint32(i+1))
		}
	}
	for i := range adjacency {
		adjacency[i] = mergeEdges(adjacency[i], reverse[i])
	}
	g.connect(adjacency)
	if err := checkGraph(adjacency); err != nil {
		return err
	}

	g.graph = adjacency
	g.built = n
	return nil
}

func (g *GraphIndex) nearestTo(i, n int) []uint32 {
	cand := make([]Neighbor, 0, n-1)
	for j := 0; j < n; j++ {
		if j == i {
			continue
		}
		cand = append(cand, Neighbor{ID: uint32(j + 1), Distance: g.distance(g.vectors[i], g.vectors[j])})
	}
	sortNeighbors(cand)
	if limit := g.linkedNeighbors(); len(cand) > limit {
		cand = cand[:limit]
	}
	ids := make([]uint32, len(cand))
	for j, c := range cand {
		ids[j] = c.ID
	}
	return ids
}

// connect links every component to its closest object in an earlier component,
// leaving a single component reachable from any seed.
func (g *GraphIndex) connect(adjacency [][]uint32) {
	comps := components(adjacency)
	for c := 1; c < len(comps); c++ {
		var (
			from, to uint32
			best     float32 = -1
		)
		for _, a := range comps[c] {
			for _, earlier := range comps[:c] {
				for _, b := range earlier {
					d := g.distance(g.vector(a), g.vector(b))
					if best < 0 || d < best {
						from, to, best = a, b, d
					}
				}
			}
		}
		adjacency[from-1] = append(adjacency[from-1], to)
		adjacency[to-1] = append(adjacency[to-1], from)
	}
}

// components returns the handles of each connected component, in order of their lowest handle.
func components(adjacency [][]uint32) [][]uint32 {
	seen := make([]bool, len(adjacency))
	var out [][]uint32
	for i := range adjacency {
		if seen[i] {
			continue
		}
		seen[i] = true
		comp := []uint32{uint32(i + 1)}
		for q := 0; q < len(comp); q++ {
			for _, id := range adjacency[comp[q]-1] {
				if !seen[id-1] {
					seen[id-1] = true
					comp = append(comp, id)
				}
			}
		}
		out = append(out, comp)
	}
	return out
}

// linkedNeighbors is the number of nearest neighbors each object links to.
func (g *GraphIndex) linkedNeighbors() int {
	if g.searchEdges > 0 && g.searchEdges < g.edges {
		return g.searchEdges
	}
	return g.edges
}

func mergeEdges(edges, extra []uint32) []uint32 {
	seen := make(map[uint32]struct{}, len(edges)+len(extra))
	for _, id := range edges {
		seen[id] = struct{}{}
	}
	for _, id := range extra {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			edges = append(edges, id)
		}
	}
	return edges
}

func checkGraph(adjacency [][]uint32) error {
	n := uint32(len(adjacency))
	for i, ns := range adjacency {
		for _, id := range ns {
			if id == 0 || id > n || id == uint32(i+1) {
				return fmt.Errorf("%w: object %d has edge to %d", ErrCorrupted, i+1, id)
			}
		}
	}
	return nil
}

// Search returns up to k built neighbors of query ordered by ascending distance.
// A larger epsilon explores more of the graph and raises recall.
func (g *GraphIndex) Search(query []float32, k int, epsilon float32) ([]Neighbor, error) {
	if err := g.checkQuery(query); err != nil {
		return nil, err
	}
	if k <= 0 || g.built == 0 {
		return nil, nil
	}
	if epsilon < 0 {
		epsilon = 0
	}
	q := g.prepareQuery(query)

	visited := make([]bool, g.built)
	candidates := &neighborHeap{}
	results := &neighborHeap{max: true}
	radius := func() float32 {
		return results.top().Distance * (1 + epsilon)
	}
	for _, seed := range g.seeds() {
		visited[seed-1] = true
		n := Neighbor{ID: seed, Distance: g.distance(q, g.vector(seed))}
		heap.Push(candidates, n)
		offer(results, n, k)
	}

	for candidates.Len() > 0 {
		c := heap.Pop(candidates).(Neighbor)
		if results.Len() >= k && c.Distance > radius() {
			break
		}
		for _, id := range g.graph[c.ID-1] {
			if visited[id-1] {
				continue
			}
			visited[id-1] = true
			d := g.distance(q, g.vector(id))
			if results.Len() < k || d <= radius() {
				n := Neighbor{ID: id, Distance: d}
				heap.Push(candidates, n)
				offer(results, n, k)
			}
		}
	}

	out := make([]Neighbor, results.Len())
	copy(out, results.items)
	sortNeighbors(out)
	return out, nil
}

// seeds spreads the entry points evenly over the built objects.
func (g *GraphIndex) seeds() []uint32 {
	step := g.built / maxSeeds
	if step < 1 {
		step = 1
	}
	out := make([]uint32, 0, maxSeeds)
	for i := 0; i < g.built && len(out) < maxSeeds; i += step {
		out = append(out, uint32(i+1))
	}
	return out
}

func offer(results *neighborHeap, n Neighbor, k int) {
	heap.Push(results, n)
	if results.Len() > k {
		heap.Pop(results)
	}
}

// neighborHeap is a min-heap on distance, or a max-heap when max is set.
type neighborHeap struct {
	items []Neighbor
	max   bool
}

func (h *neighborHeap) Len() int { return len(h.items) }

func (h *neighborHeap) Less(i, j int) bool {
	if h.max {
		return h.items[i].Distance > h.items[j].Distance
	}
	return h.items[i].Distance < h.items[j].Distance
}

func (h *neighborHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *neighborHeap) Push(x any) { h.items = append(h.items, x.(Neighbor)) }

func (h *neighborHeap) Pop() any {
	n := len(h.items)
	x := h.items[n-1]
	h.items = h.items[:n-1]
	return x
}

func (h *neighborHeap) top() Neighbor { return h.items[0] }
