package agent

import "sync"

// IdentityMap maps external ids to engine handles and back. Each direction has its own
// lock so searches only contend on the reverse map.
type IdentityMap struct {
	forwardMu sync.RWMutex
	forward   map[string]uint32

	reverseMu sync.RWMutex
	reverse   map[uint32]string
}

// NewIdentityMap returns an empty map.
func NewIdentityMap() *IdentityMap {
	return &IdentityMap{
		forward: make(map[string]uint32),
		reverse: make(map[uint32]string),
	}
}

// Internal returns the engine handle for id.
func (m *IdentityMap) Internal(id string) (uint32, bool) {
	m.forwardMu.RLock()
	defer m.forwardMu.RUnlock()
	oid, ok := m.forward[id]
	return oid, ok
}

// External returns the id registered for the engine handle oid.
func (m *IdentityMap) External(oid uint32) (string, bool) {
	m.reverseMu.RLock()
	defer m.reverseMu.RUnlock()
	id, ok := m.reverse[oid]
	return id, ok
}

// Len returns the number of mapped ids.
func (m *IdentityMap) Len() int {
	m.forwardMu.RLock()
	defer m.forwardMu.RUnlock()
	return len(m.forward)
}

// lock takes both directions exclusively, forward first.
func (m *IdentityMap) lock() {
	m.forwardMu.Lock()
	m.reverseMu.Lock()
}

func (m *IdentityMap) unlock() {
	m.reverseMu.Unlock()
	m.forwardMu.Unlock()
}

// setLocked records id <-> oid. Callers hold lock.
func (m *IdentityMap) setLocked(id string, oid uint32) {
	if old, ok := m.forward[id]; ok {
		delete(m.reverse, old)
	}
	m.forward[id] = oid
	m.reverse[oid] = id
}
