package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/hush/internal/journal"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	Root *RootOptions

	// Run selects a single run ID. Empty lists all runs.
	Run string
}

// RunTrace is the JSON output for one run's decisions.
type RunTrace struct {
	RunID     string             `json:"run_id"`
	Decisions []journal.Decision `json:"decisions"`
}

func newTraceCommand(root *RootOptions) *cobra.Command {
	opts := &TraceOptions{Root: root}

	cmd := &cobra.Command{
		Use:   "trace <journal.db>",
		Short: "Inspect journaled report routing decisions",
		Long: `Read a decision journal produced by "hush test --journal" and print
the routing decisions in order.

Without --run, all runs in the journal are listed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmtr := NewFormatter(root.Format, root.Verbose)
			fmtr.SetWriters(cmd.OutOrStdout(), cmd.ErrOrStderr())
			return runTrace(fmtr, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.Run, "run", "", "show only the given run ID")

	return cmd
}

func runTrace(fmtr *Formatter, path string, opts *TraceOptions) error {
	ctx := context.Background()

	jnl, err := journal.Open(path)
	if err != nil {
		return NewCmdError(ExitError, fmt.Errorf("open journal: %w", err))
	}
	defer jnl.Close()

	runIDs := []string{opts.Run}
	if opts.Run == "" {
		runIDs, err = jnl.Runs(ctx)
		if err != nil {
			return NewCmdError(ExitError, fmt.Errorf("list runs: %w", err))
		}
	}

	var traces []RunTrace
	for _, runID := range runIDs {
		decisions, err := jnl.ReadDecisions(ctx, runID)
		if err != nil {
			return NewCmdError(ExitError, fmt.Errorf("read run %s: %w", runID, err))
		}
		if opts.Run != "" && len(decisions) == 0 {
			return NewCmdError(ExitError, fmt.Errorf("run %s not found in %s", runID, path))
		}
		traces = append(traces, RunTrace{RunID: runID, Decisions: decisions})
	}

	if opts.Root.Format == "json" {
		if err := fmtr.Success("", traces); err != nil {
			return NewCmdError(ExitError, err)
		}
		return nil
	}

	for _, trace := range traces {
		fmt.Fprintf(fmtr.ErrWriter(), "run %s (%d decisions)\n", trace.RunID, len(trace.Decisions))
		for _, d := range trace.Decisions {
			fmt.Fprintf(fmtr.ErrWriter(), "  %4d  goroutine %-6d  %-10s  %s\n",
				d.Seq, d.Goroutine, d.Outcome, d.Value)
		}
	}
	return nil
}
