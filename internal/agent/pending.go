package agent

import "sync"

type pendingEntry struct {
	id     string
	vector []float32
}

// PendingBuffer holds inserted vectors, in insertion order, until the next build.
type PendingBuffer struct {
	mu      sync.Mutex
	entries []pendingEntry
	ids     map[string]struct{}
}

// NewPendingBuffer returns an empty buffer.
func NewPendingBuffer() *PendingBuffer {
	return &PendingBuffer{ids: make(map[string]struct{})}
}

// Len returns the number of pending entries.
func (b *PendingBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

func (b *PendingBuffer) containsLocked(id string) bool {
	_, ok := b.ids[id]
	return ok
}

func (b *PendingBuffer) appendLocked(id string, vector []float32) {
	b.entries = append(b.entries, pendingEntry{id: id, vector: vector})
	b.ids[id] = struct{}{}
}

// drainLocked empties the buffer and returns its entries in insertion order.
func (b *PendingBuffer) drainLocked() []pendingEntry {
	out := b.entries
	b.entries = nil
	b.ids = make(map[string]struct{}, len(b.ids))
	return out
}

// restoreLocked puts entries back at the front, ahead of anything added since the drain.
func (b *PendingBuffer) restoreLocked(entries []pendingEntry) {
	if len(entries) == 0 {
		return
	}
	b.entries = append(append(make([]pendingEntry, 0, len(entries)+len(b.entries)), entries...), b.entries...)
	for _, e := range entries {
		b.ids[e.id] = struct{}{}
	}
}
