package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentityMap(t *testing.T) {
	m := NewIdentityMap()
	m.lock()
	m.setLocked("a", 1)
	m.setLocked("b", 2)
	m.unlock()

	oid, ok := m.Internal("a")
	assert.True(t, ok)
	assert.Equal(t, uint32(1), oid)
	id, ok := m.External(2)
	assert.True(t, ok)
	assert.Equal(t, "b", id)

	_, ok = m.External(3)
	assert.False(t, ok)
	_, ok = m.Internal("c")
	assert.False(t, ok)
	assert.Equal(t, 2, m.Len())
}

func TestIdentityMap_RemapDropsStaleReverseEntry(t *testing.T) {
	m := NewIdentityMap()
	m.lock()
	m.setLocked("a", 1)
	m.setLocked("a", 5)
	m.unlock()

	_, ok := m.External(1)
	assert.False(t, ok)
	id, _ := m.External(5)
	assert.Equal(t, "a", id)
	assert.Equal(t, 1, m.Len())
}

func TestPendingBuffer_DrainAndRestore(t *testing.T) {
	b := NewPendingBuffer()
	b.mu.Lock()
	b.appendLocked("a", []float32{1})
	b.appendLocked("b", []float32{2})
	drained := b.drainLocked()
	b.appendLocked("c", []float32{3})
	b.restoreLocked(drained[1:])
	b.mu.Unlock()

	assert.Len(t, drained, 2)
	assert.Equal(t, "a", drained[0].id)
	assert.Equal(t, 2, b.Len())
	assert.Equal(t, "b", b.entries[0].id)
	assert.Equal(t, "c", b.entries[1].id)
	assert.True(t, b.containsLocked("b"))
	assert.False(t, b.containsLocked("a"))
}
