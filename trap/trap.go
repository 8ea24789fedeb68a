// Package trap is the crash boundary that feeds the report pipeline.
//
// Go offers no hook over the runtime's own fatal-panic printer, so code
// that wants its panics routed through the pipeline runs under a trap:
// Run for an isolated sub-execution on the current goroutine, Go for a
// spawned goroutine. A trapped panic still terminates the function
// abnormally; the trap only centralizes where the report goes.
package trap

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/roach88/hush/internal/gid"
	"github.com/roach88/hush/report"
)

// panicExitCode matches the exit status of an unrecovered runtime panic.
const panicExitCode = 2

// exitFunc terminates the process after an unrecovered goroutine panic.
// Swapped out by tests.
var exitFunc = os.Exit

// PanicError is returned by Run when the trapped function panicked.
type PanicError struct {
	// Value is the value passed to panic.
	Value any

	// Stack is the stack of the panicking goroutine at recovery time.
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// IsPanic reports whether err wraps a trapped panic.
func IsPanic(err error) bool {
	var pe *PanicError
	return errors.As(err, &pe)
}

// Run executes fn on the calling goroutine with a trap installed.
//
// If fn panics, the panic is recovered, a report is emitted through the
// pipeline, and Run returns a *PanicError carrying the panic value and
// stack. If fn returns normally, Run returns nil.
//
// panic(nil) is indistinguishable from a normal return on Go versions
// where the runtime does not wrap it; callers should not panic with nil.
func Run(fn func()) (err error) {
	defer func() {
		v := recover()
		if v == nil {
			return
		}
		stack := captureStack()
		report.Emit(&report.Report{
			Goroutine: uint64(gid.Current()),
			Value:     v,
			Stack:     stack,
		})
		err = &PanicError{Value: v, Stack: stack}
	}()
	fn()
	return nil
}

// Go runs fn on a new goroutine with a trap installed.
//
// An unrecovered panic in fn is reported through the pipeline and then
// terminates the process with the runtime's panic exit code, preserving
// the abort semantics of an untrapped goroutine panic.
func Go(fn func()) {
	go func() {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			report.Emit(&report.Report{
				Goroutine: uint64(gid.Current()),
				Value:     v,
				Stack:     captureStack(),
			})
			exitFunc(panicExitCode)
		}()
		fn()
	}()
}

// captureStack returns the current goroutine's stack, growing the buffer
// until the trace fits.
func captureStack() []byte {
	buf := make([]byte, 8192)
	for {
		n := runtime.Stack(buf, false)
		if n < len(buf) {
			return buf[:n]
		}
		buf = make([]byte, 2*len(buf))
	}
}
