// Package registry tracks which goroutines currently hold suppression
// grants.
//
// The registry is pure bookkeeping: a mutex-guarded map from goroutine ID
// to the number of live grants. A goroutine absent from the map holds no
// grants. Entries are removed when their count returns to zero so the map
// does not grow with the lifetime of the process.
package registry

import (
	"sync"

	"github.com/roach88/hush/internal/gid"
)

// Registry maps goroutine IDs to active suppression counts.
//
// Thread-safety: all methods are safe for concurrent use. A goroutine's
// own Increment is visible to its own subsequent Suppressed check; no
// ordering is guaranteed (or needed) between different goroutines'
// entries.
type Registry struct {
	mu     sync.Mutex
	counts map[gid.ID]int
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{counts: make(map[gid.ID]int)}
}

// Increment raises the grant count for id by one.
func (r *Registry) Increment(id gid.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[id]++
}

// Decrement lowers the grant count for id by one, removing the entry when
// it reaches zero.
//
// A decrement without a matching increment is a logic defect in the
// caller: scope ownership guarantees exactly one decrement per increment.
// Panics rather than clamping so the defect surfaces immediately.
func (r *Registry) Decrement(id gid.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count, ok := r.counts[id]
	if !ok {
		panic("registry: decrement without matching increment")
	}
	if count == 1 {
		delete(r.counts, id)
		return
	}
	r.counts[id] = count - 1
}

// Suppressed reports whether id currently holds at least one grant.
//
// Called from the report interception path; must never block for long.
// The critical section is a single map lookup.
func (r *Registry) Suppressed(id gid.ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[id] > 0
}

// Len returns the number of goroutines with at least one grant.
// Used by tests to verify entries are cleaned up.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.counts)
}
