package engine

// FlatIndex is an exact engine using a brute-force scan over built vectors.
// Suitable for tests and small datasets.
type FlatIndex struct {
	objects
}

// NewFlatIndex creates a flat engine.
func NewFlatIndex(props Properties) (*FlatIndex, error) {
	objs, err := newObjects(props)
	if err != nil {
		return nil, err
	}
	return &FlatIndex{objects: objs}, nil
}

// Insert stages vector and returns its handle.
func (f *FlatIndex) Insert(vector []float32) (uint32, error) {
	return f.add(vector)
}

// Build makes every staged vector searchable.
func (f *FlatIndex) Build(parallelism int) error {
	f.built = len(f.vectors)
	return nil
}

// Search returns the k nearest built vectors. epsilon is ignored since the scan is exact.
func (f *FlatIndex) Search(query []float32, k int, epsilon float32) ([]Neighbor, error) {
	if err := f.checkQuery(query); err != nil {
		return nil, err
	}
	if k <= 0 || f.built == 0 {
		return nil, nil
	}
	q := f.prepareQuery(query)
	scored := make([]Neighbor, f.built)
	for i := 0; i < f.built; i++ {
		scored[i] = Neighbor{ID: uint32(i + 1), Distance: f.distance(q, f.vectors[i])}
	}
	sortNeighbors(scored)
	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}
