package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/hush"
	"github.com/roach88/hush/internal/gid"
	"github.com/roach88/hush/internal/journal"
	"github.com/roach88/hush/internal/testutil"
	"github.com/roach88/hush/trap"
)

// Harness executes one scenario: steps run sequentially on a dedicated
// goroutine, decisions land in the trace and the journal.
type Harness struct {
	journal *journal.Journal
	clock   *testutil.DeterministicClock
	logger  *slog.Logger
	runID   string
}

// Options configures a scenario execution.
type Options struct {
	// JournalPath is the SQLite path for the decision journal.
	// Empty means an in-memory journal discarded after the run.
	JournalPath string

	// Logger receives per-step progress. Nil discards.
	Logger *slog.Logger
}

// Run executes a scenario with an in-memory journal and no logging.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithOptions(scenario, Options{})
}

// RunWithOptions executes a scenario and returns the result.
//
// Execution flow:
//  1. Install the process-wide recorder (first run only)
//  2. Open the decision journal
//  3. Execute steps on a dedicated goroutine, validating expect clauses
//  4. Evaluate assertions against the trace and journal
//
// Scenario executions do not run concurrently with each other: the
// recorder delta that classifies a panic as emitted or suppressed is
// only meaningful while one scenario panics at a time.
func RunWithOptions(scenario *Scenario, opts Options) (*Result, error) {
	ensureRecorder()

	journalPath := opts.JournalPath
	if journalPath == "" {
		journalPath = ":memory:"
	}
	jnl, err := journal.Open(journalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	defer jnl.Close()

	runID := scenario.RunID
	if runID == "" {
		runID = journal.NewRunID()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	}

	h := &Harness{
		journal: jnl,
		clock:   testutil.NewDeterministicClock(),
		logger:  logger,
		runID:   runID,
	}

	ctx := context.Background()
	result := NewResult(runID)

	// Steps run on their own goroutine so the scopes they acquire are
	// bound to an identity that is not the caller's: a scenario can
	// never leak suppression into the process that runs it.
	done := make(chan error, 1)
	go func() {
		done <- h.executeSteps(ctx, scenario.Steps, result)
	}()
	if err := <-done; err != nil {
		return nil, fmt.Errorf("failed to execute steps: %w", err)
	}

	actx := &AssertionContext{
		Journal: jnl,
		RunID:   runID,
		Ctx:     ctx,
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

// executeSteps runs all steps in order on the calling goroutine.
//
// Scopes are tracked by acquire order; a release step targets either an
// explicit 1-based acquire index or the most recently acquired live
// scope. Any scope still live after the last step is released so the
// goroutine's registry entry does not outlive the scenario.
func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) error {
	self := gid.Current()
	var scopes []*hush.Scope
	defer func() {
		for _, s := range scopes {
			s.Release()
		}
	}()

	for i, step := range steps {
		seq := h.clock.Next()

		switch step.Op {
		case OpAcquire:
			scopes = append(scopes, hush.ThisGoroutine())
			result.AddTrace(TraceEvent{Seq: seq, Op: OpAcquire, Scope: len(scopes)})

			h.logger.Info("scope acquired", "step", i, "scope", len(scopes))

		case OpRelease:
			idx, err := resolveRelease(scopes, step.Scope)
			if err != nil {
				return fmt.Errorf("step %d: %w", i, err)
			}
			scopes[idx].Release()
			result.AddTrace(TraceEvent{Seq: seq, Op: OpRelease, Scope: idx + 1})

			h.logger.Info("scope released", "step", i, "scope", idx+1)

		case OpPanic:
			before := recorder.Len()
			if err := trap.Run(func() { panic(step.Value) }); !trap.IsPanic(err) {
				return fmt.Errorf("step %d: sub-execution did not panic", i)
			}

			outcome := journal.OutcomeSuppressed
			for _, r := range recorder.Reports()[before:] {
				if r.Goroutine == uint64(self) {
					outcome = journal.OutcomeEmitted
					break
				}
			}

			if err := h.journal.WriteDecision(ctx, journal.Decision{
				RunID:     h.runID,
				Seq:       seq,
				Goroutine: uint64(self),
				Outcome:   outcome,
				Value:     step.Value,
			}); err != nil {
				return fmt.Errorf("step %d: %w", i, err)
			}

			result.AddTrace(TraceEvent{Seq: seq, Op: OpPanic, Value: step.Value, Outcome: outcome})

			if step.Expect == ExpectSilent && outcome != journal.OutcomeSuppressed {
				result.AddError(fmt.Sprintf("step %d: expected panic %q to be silent, but its report was emitted", i, step.Value))
			}
			if step.Expect == ExpectPrinted && outcome != journal.OutcomeEmitted {
				result.AddError(fmt.Sprintf("step %d: expected panic %q to be printed, but its report was suppressed", i, step.Value))
			}

			h.logger.Info("panic step completed",
				"step", i,
				"value", step.Value,
				"outcome", outcome,
			)

		default:
			// validateScenario rejects unknown ops; reaching this is a
			// harness bug.
			return fmt.Errorf("step %d: unknown op %q", i, step.Op)
		}
	}

	return nil
}

// resolveRelease maps a release step to a scope index.
// target is the 1-based acquire index, or zero for the most recently
// acquired live scope.
func resolveRelease(scopes []*hush.Scope, target int) (int, error) {
	if target > 0 {
		if target > len(scopes) {
			return 0, fmt.Errorf("release targets scope %d but only %d acquired", target, len(scopes))
		}
		if scopes[target-1].Released() {
			return 0, fmt.Errorf("release targets scope %d which is already released", target)
		}
		return target - 1, nil
	}

	for i := len(scopes) - 1; i >= 0; i-- {
		if !scopes[i].Released() {
			return i, nil
		}
	}
	return 0, fmt.Errorf("release without a live scope")
}
