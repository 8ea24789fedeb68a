package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/hush/internal/journal"
)

// AssertionContext carries what assertions need beyond the result: the
// journal and the run they should query.
type AssertionContext struct {
	Journal *journal.Journal
	RunID   string
	Ctx     context.Context
}

// AssertionError is returned when an assertion fails.
// It includes the trace so the failure can be debugged from the message
// alone.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for i, event := range e.Trace {
		switch event.Op {
		case OpPanic:
			fmt.Fprintf(&buf, "  [%d] panic %q -> %s\n", i+1, event.Value, event.Outcome)
		default:
			fmt.Fprintf(&buf, "  [%d] %s scope %d\n", i+1, event.Op, event.Scope)
		}
	}

	return buf.String()
}

// EvaluateAssertions checks all assertions against the result and
// journal, returning one message per failure.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var failures []string
	for _, assertion := range assertions {
		var err error
		switch assertion.Type {
		case AssertEmittedCount:
			err = assertOutcomeCount(result, "emitted", assertion.Count)
		case AssertSuppressedCount:
			err = assertOutcomeCount(result, "suppressed", assertion.Count)
		case AssertEmittedOrder:
			err = assertEmittedOrder(result, assertion.Values)
		case AssertJournalCount:
			err = assertJournalCount(actx, assertion.Outcome, assertion.Count, result.Trace)
		default:
			err = fmt.Errorf("unknown assertion type %q", assertion.Type)
		}
		if err != nil {
			failures = append(failures, err.Error())
		}
	}
	return failures
}

// assertOutcomeCount checks the number of panic events with the given
// outcome in the trace.
func assertOutcomeCount(result *Result, outcome string, want int) error {
	got := result.CountOutcome(outcome)
	if got == want {
		return nil
	}
	return &AssertionError{
		Type:     outcome + "_count",
		Expected: fmt.Sprintf("%d %s reports", want, outcome),
		Actual:   fmt.Sprintf("%d %s reports", got, outcome),
		Trace:    result.Trace,
	}
}

// assertEmittedOrder checks that forwarded panic values appear in
// exactly the given order.
func assertEmittedOrder(result *Result, want []string) error {
	got := result.EmittedValues()
	if len(got) == len(want) {
		match := true
		for i := range want {
			if got[i] != want[i] {
				match = false
				break
			}
		}
		if match {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertEmittedOrder,
		Expected: fmt.Sprintf("emitted values %q", want),
		Actual:   fmt.Sprintf("emitted values %q", got),
		Trace:    result.Trace,
	}
}

// assertJournalCount checks the journal rather than the trace: the two
// must agree, so this doubles as a write-path check.
func assertJournalCount(actx *AssertionContext, outcome string, want int, trace []TraceEvent) error {
	got, err := actx.Journal.CountDecisions(actx.Ctx, actx.RunID, outcome)
	if err != nil {
		return fmt.Errorf("journal_count: %w", err)
	}
	if got == want {
		return nil
	}
	return &AssertionError{
		Type:     AssertJournalCount,
		Expected: fmt.Sprintf("%d journaled %s decisions", want, outcome),
		Actual:   fmt.Sprintf("%d journaled %s decisions", got, outcome),
		Trace:    trace,
	}
}
