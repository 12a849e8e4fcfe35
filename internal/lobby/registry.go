// Package lobby keeps track of the tables that are currently open.
package lobby

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"devils-dice/internal/game/table"
)

// Registry errors.
var (
	ErrNilTable = errors.New("cannot register nil table")
	ErrNilID    = errors.New("table id cannot be nil")
)

// Registry maps table ids to open tables. It is safe for concurrent use;
// the tables it holds are not, so callers serialise access per table.
type Registry struct {
	tables map[uuid.UUID]*table.Table
	mu     sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tables: make(map[uuid.UUID]*table.Table),
	}
}

// Register adds a table under id, replacing any table already there.
func (r *Registry) Register(id uuid.UUID, t *table.Table) error {
	if t == nil {
		return ErrNilTable
	}
	if id == uuid.Nil {
		return ErrNilID
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tables[id] = t
	return nil
}

// Get returns the table registered under id.
func (r *Registry) Get(id uuid.UUID) (*table.Table, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tables[id]
	return t, ok
}

// List returns every open table.
func (r *Registry) List() []*table.Table {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tables := make([]*table.Table, 0, len(r.tables))
	for _, t := range r.tables {
		tables = append(tables, t)
	}
	return tables
}

// IDs returns the ids of every open table, sorted.
func (r *Registry) IDs() []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]uuid.UUID, 0, len(r.tables))
	for id := range r.tables {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

// Count returns the number of open tables.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tables)
}

// Remove drops the table registered under id and reports whether it existed.
func (r *Registry) Remove(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tables[id]; ok {
		delete(r.tables, id)
		return true
	}
	return false
}
