// Package report is the process-wide panic reporting pipeline.
//
// A single Handler is installed at any time. Crash boundaries (see the
// trap package) build a Report for each panic they observe and hand it to
// Emit, which routes it through whatever handler is currently installed.
// The default handler prints the report to stderr in the same shape as an
// unrecovered runtime panic.
//
// The handler slot is the interception point for the rest of the module:
// it can be read (Current), replaced (Swap), and the previous handler
// invoked with unmodified report data when forwarding.
package report

import (
	"io"
	"os"
	"sync"
)

// Report describes a single abnormal termination: the panic value, the
// stack of the panicking goroutine, and its identity.
type Report struct {
	// Goroutine is the ID of the goroutine that panicked.
	Goroutine uint64

	// Value is the value passed to panic.
	Value any

	// Stack is the formatted stack trace of the panicking goroutine,
	// as produced by runtime.Stack.
	Stack []byte
}

// Handler consumes a panic report. Handlers must not panic: they run in
// an already-failing context.
type Handler func(*Report)

var (
	mu      sync.Mutex
	handler Handler = Stderr

	outMu  sync.Mutex
	output io.Writer = os.Stderr
)

// Swap installs h as the process-wide handler and returns the previously
// installed one. Installing a nil handler discards all reports.
//
// Safe for concurrent use; the swap is atomic with respect to Emit.
func Swap(h Handler) Handler {
	mu.Lock()
	defer mu.Unlock()
	prev := handler
	handler = h
	return prev
}

// Current returns the currently installed handler without replacing it.
func Current() Handler {
	mu.Lock()
	defer mu.Unlock()
	return handler
}

// Emit routes r through the installed handler. A nil handler discards
// the report. The handler runs outside the slot lock so it may itself
// call Swap or Current without deadlocking.
func Emit(r *Report) {
	h := Current()
	if h == nil {
		return
	}
	h(r)
}

// Stderr is the default handler. It formats the report the way the Go
// runtime prints an unrecovered panic and writes it to the package
// output (stderr unless redirected with SetOutput).
func Stderr(r *Report) {
	outMu.Lock()
	defer outMu.Unlock()
	_, _ = output.Write(Format(r))
}

// SetOutput redirects the Stderr handler to w and returns the previous
// writer. Tests point the output at a buffer to observe report bytes.
func SetOutput(w io.Writer) io.Writer {
	outMu.Lock()
	defer outMu.Unlock()
	prev := output
	output = w
	return prev
}
