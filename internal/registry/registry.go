// Package registry holds the in-memory authorization registry: the single
// source of truth for which athletes the sweeper acts on. It is written by
// the OAuth callback (insert/replace), by scheduler hydration and by the
// processor's failure path (invalidation), and iterated by every sweep
// tick. The original behavior assumed cooperatively scheduled access; here
// HTTP handlers and sweep goroutines run in parallel, so an RWMutex
// provides the same atomicity while Snapshot keeps iteration decoupled
// from concurrent writes.
package registry

import (
	"sync"

	"github.com/iliyamo/privacy2run/internal/model"
)

type Registry struct {
	mu    sync.RWMutex
	codes map[int64]model.AuthCode
}

func New() *Registry {
	return &Registry{codes: make(map[int64]model.AuthCode)}
}

// Upsert inserts or replaces the record for its athlete id and reports
// whether the id was already present. The presence result is what the
// OAuth callback uses to choose between a store insert and a store update.
func (r *Registry) Upsert(c model.AuthCode) (replaced bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, replaced = r.codes[c.ID]
	r.codes[c.ID] = c
	return replaced
}

// MarkInvalid flips Valid to false for an existing record. An absent id is
// a benign no-op: the sweep that observed the failure may have started
// before a registry reconfiguration.
func (r *Registry) MarkInvalid(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.codes[id]
	if !ok {
		return
	}
	c.Valid = false
	r.codes[id] = c
}

// Get returns the record for id and whether it exists.
func (r *Registry) Get(id int64) (model.AuthCode, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.codes[id]
	return c, ok
}

// Has reports whether a record exists for id.
func (r *Registry) Has(id int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.codes[id]
	return ok
}

// Len returns the number of records currently registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.codes)
}

// Snapshot returns a copy of the current records. Callers iterate the copy
// freely while upserts and invalidations proceed against the live map.
func (r *Registry) Snapshot() []model.AuthCode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.AuthCode, 0, len(r.codes))
	for _, c := range r.codes {
		out = append(out, c)
	}
	return out
}
