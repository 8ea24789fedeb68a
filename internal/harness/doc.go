// Package harness runs conformance scenarios against the suppression
// system.
//
// A scenario is a YAML file describing a sequence of steps executed on a
// dedicated goroutine: acquire a suppression scope, release one, or
// trigger a panic in an isolated sub-execution. Every panic step records
// a routing decision - whether the interceptor forwarded the report to
// the original handler or discarded it - into a trace and a journal.
//
// Determinism is the point of the design: trace events are stamped with
// a logical clock, goroutine IDs are kept out of the trace, and string
// values are NFC-normalized, so the same scenario produces byte-identical
// traces on every run. Golden file comparison builds on that.
//
// # Process invariant
//
// The harness observes forwarded reports through a process-wide
// recording handler that must be captured as the interceptor's original
// handler. This happens on the first Run in the process; if some other
// code installs the interceptor first (by acquiring a hush scope), the
// recorder ends up above the interceptor and scenario outcomes become
// meaningless. Run the harness in a process that does not otherwise use
// hush - the CLI test command and this package's tests both satisfy
// this.
package harness
