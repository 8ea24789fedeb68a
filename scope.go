package hush

import (
	"sync/atomic"

	"github.com/roach88/hush/internal/gid"
)

// Scope is one live suppression grant, bound to the goroutine that
// acquired it. The zero value is not usable; obtain scopes from
// ThisGoroutine.
//
// A scope is owned by its acquirer and released at most once. Scopes on
// the same goroutine are independent siblings: releasing one leaves the
// others (and suppression) in force.
type Scope struct {
	id       gid.ID
	released atomic.Bool
}

// Release relinquishes the grant, re-enabling reports on the owning
// goroutine once its last scope is released.
//
// Release consumes the scope: the first call decrements the grant count,
// every later call is a no-op. This makes the deferred release safe to
// combine with an explicit early release.
func (s *Scope) Release() {
	if s == nil {
		return
	}
	if !s.released.CompareAndSwap(false, true) {
		return
	}
	grants.Decrement(s.id)
}

// Released reports whether the scope has already been released.
func (s *Scope) Released() bool {
	if s == nil {
		return true
	}
	return s.released.Load()
}
