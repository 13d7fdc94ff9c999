// Package snapshot implements the read-mostly publication of the deck's
// record map. Readers (the facade, the reporter runtime) take a read lock
// only long enough to clone the map; the deck takes the write lock only to
// replace the whole map at once. A snapshot is therefore always internally
// consistent — no partial updates are ever visible — at the cost of being
// up to one publication tick stale.
package snapshot

import (
	"sync"

	"github.com/relaypulse/beatkeeper/internal/model"
)

// Map is a published, concurrency-safe view of the deck's record map.
type Map struct {
	mu      sync.RWMutex
	records map[model.RecordId]model.Record
}

// New returns an empty, ready-to-use Map.
func New() *Map {
	return &Map{records: make(map[model.RecordId]model.Record)}
}

// Replace atomically swaps the published contents. The deck passes in a
// fresh map it no longer needs (callers must not retain a reference to src
// afterward) so no extra copy is made on the write side.
func (m *Map) Replace(src map[model.RecordId]model.Record) {
	m.mu.Lock()
	m.records = src
	m.mu.Unlock()
}

// Get clones a single record, if present.
func (m *Map) Get(id model.RecordId) (model.Record, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[id]
	return r, ok
}

// Clone returns a shallow copy of the whole published map: the map
// structure plus record values (Record itself holds no pointers that
// Clone's caller could use to mutate the deck's state).
func (m *Map) Clone() map[model.RecordId]model.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[model.RecordId]model.Record, len(m.records))
	for id, r := range m.records {
		out[id] = r
	}
	return out
}

// Roster returns every published record id. Order is unspecified.
func (m *Map) Roster() []model.RecordId {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.RecordId, 0, len(m.records))
	for id := range m.records {
		out = append(out, id)
	}
	return out
}
