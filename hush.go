// Package hush suppresses panic reports for individual goroutines.
//
// Its primary consumer is automated testing: a test that intentionally
// triggers a panic wants to assert the panic occurred without a full
// diagnostic dump polluting the output. Reports for all other goroutines
// are unaffected, and the panic itself still unwinds normally — only the
// report text is discarded.
//
// Usage in a test:
//
//	func TestRejectsBadInput(t *testing.T) {
//		defer hush.ThisGoroutine().Release()
//
//		err := trap.Run(func() { mustParse("garbage") })
//		if !trap.IsPanic(err) {
//			t.Fatal("expected a panic")
//		}
//	}
//
// The first acquisition interposes an interceptor over the report
// pipeline (see the report package), capturing the previously-installed
// handler exactly once. Suppressed reports are discarded; all others are
// forwarded to that handler unchanged.
package hush

import (
	"sync"

	"github.com/roach88/hush/internal/gid"
	"github.com/roach88/hush/internal/registry"
	"github.com/roach88/hush/report"
)

var (
	// grants tracks live suppression scopes per goroutine.
	grants = registry.New()

	// installOnce guards the one-time capture of the original handler.
	// Concurrent first acquisitions race here safely: exactly one
	// capture happens, before the interceptor is visible.
	installOnce sync.Once

	// original is the handler that was installed before the
	// interceptor. Written once inside installOnce, read-only after.
	original report.Handler
)

// install interposes the interceptor over the report pipeline.
// Idempotent: later calls are no-ops and never re-capture the original
// handler (re-capturing could capture the interceptor itself).
func install() {
	installOnce.Do(func() {
		original = report.Swap(intercept)
	})
}

// intercept is the process-wide report handler while hush is installed.
//
// It runs in an already-failing context and must never panic: the
// registry consultation and the forwarding call are each recovered
// independently, and an internal failure falls open to forwarding so a
// bug here cannot silently eat diagnostics.
func intercept(r *report.Report) {
	suppressed := false
	func() {
		defer func() { _ = recover() }()
		suppressed = grants.Suppressed(gid.Current())
	}()
	if suppressed {
		return
	}
	func() {
		defer func() { _ = recover() }()
		if original != nil {
			original(r)
		}
	}()
}

// ThisGoroutine acquires a suppression scope for the calling goroutine.
//
// While at least one scope is live, panic reports emitted on this
// goroutine are discarded. Scopes nest: each acquisition must be matched
// by one Release, and suppression ends when the last scope on the
// goroutine is released. Release the scope on every exit path:
//
//	defer hush.ThisGoroutine().Release()
//
// A goroutine that exits with live scopes leaks its grant entries. The
// runtime never reuses goroutine IDs within a process, so the leak can
// never suppress reports on some other goroutine; it only costs a map
// entry.
func ThisGoroutine() *Scope {
	install()
	id := gid.Current()
	grants.Increment(id)
	return &Scope{id: id}
}

// Active reports whether the calling goroutine currently holds at least
// one live suppression scope.
func Active() bool {
	return grants.Suppressed(gid.Current())
}
