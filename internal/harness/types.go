package harness

// TraceEvent is one executed scenario step.
//
// The trace deliberately excludes goroutine IDs and run IDs unless
// pinned: everything in it is deterministic, which is what golden file
// comparison depends on.
type TraceEvent struct {
	// Seq is the logical clock stamp of the event.
	Seq int64 `json:"seq"`

	// Op is the step operation: acquire, release, or panic.
	Op string `json:"op"`

	// Scope is the 1-based acquire index for acquire/release events.
	Scope int `json:"scope,omitempty"`

	// Value is the panic value for panic events.
	Value string `json:"value,omitempty"`

	// Outcome is the routing decision for panic events:
	// "emitted" or "suppressed".
	Outcome string `json:"outcome,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success.
	// True if all expect clauses and assertions held.
	Pass bool `json:"pass"`

	// RunID identifies the journal run for this execution.
	RunID string `json:"run_id"`

	// Trace contains all executed steps in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expect/assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(runID string) *Result {
	return &Result{
		Pass:   true,
		RunID:  runID,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends an event to the trace.
func (r *Result) AddTrace(event TraceEvent) {
	r.Trace = append(r.Trace, event)
}

// EmittedValues returns the panic values of forwarded reports in trace
// order. Used by the emitted_order assertion.
func (r *Result) EmittedValues() []string {
	var values []string
	for _, event := range r.Trace {
		if event.Op == OpPanic && event.Outcome == "emitted" {
			values = append(values, event.Value)
		}
	}
	return values
}

// CountOutcome returns the number of panic events with the given
// outcome.
func (r *Result) CountOutcome(outcome string) int {
	count := 0
	for _, event := range r.Trace {
		if event.Op == OpPanic && event.Outcome == outcome {
			count++
		}
	}
	return count
}
