package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/hush/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	Root *RootOptions

	// Filter is a glob matched against scenario base names.
	Filter string

	// Journal is the SQLite path decisions are written to.
	// Empty keeps the journal in memory.
	Journal string
}

// ScenarioResult is the per-scenario entry in JSON output.
type ScenarioResult struct {
	Name   string   `json:"name"`
	File   string   `json:"file"`
	Pass   bool     `json:"pass"`
	RunID  string   `json:"run_id"`
	Errors []string `json:"errors,omitempty"`
}

// TestSummary is the aggregate JSON output of a test run.
type TestSummary struct {
	Total     int              `json:"total"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Scenarios []ScenarioResult `json:"scenarios"`
}

func newTestCommand(root *RootOptions) *cobra.Command {
	opts := &TestOptions{Root: root}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run scenario files against the suppression harness",
		Long: `Run every scenario YAML file in a directory and report the results.

Each scenario executes on its own goroutine; panic reports are classified
as emitted or suppressed and checked against the scenario's expect clauses
and assertions.

Exit codes:
  0  all scenarios passed
  1  one or more scenarios failed
  2  a scenario could not be loaded or executed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmtr := NewFormatter(root.Format, root.Verbose)
			fmtr.SetWriters(cmd.OutOrStdout(), cmd.ErrOrStderr())
			return runTest(fmtr, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "glob matched against scenario file names")
	cmd.Flags().StringVar(&opts.Journal, "journal", "", "SQLite path for the decision journal (default in-memory)")

	return cmd
}

func runTest(fmtr *Formatter, dir string, opts *TestOptions) error {
	paths, err := collectScenarios(dir, opts.Filter)
	if err != nil {
		return NewCmdError(ExitError, err)
	}
	if len(paths) == 0 {
		return NewCmdError(ExitError, fmt.Errorf("no scenarios found in %s", dir))
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if opts.Root.Verbose {
		logger = slog.New(slog.NewTextHandler(fmtr.ErrWriter(), nil))
	}

	summary := TestSummary{}
	for _, path := range paths {
		fmtr.Verbose("running %s", path)

		scenario, err := harness.LoadScenario(path)
		if err != nil {
			return NewCmdError(ExitError, fmt.Errorf("load %s: %w", path, err))
		}

		result, err := harness.RunWithOptions(scenario, harness.Options{
			JournalPath: opts.Journal,
			Logger:      logger,
		})
		if err != nil {
			return NewCmdError(ExitError, fmt.Errorf("run %s: %w", path, err))
		}

		sr := ScenarioResult{
			Name:   scenario.Name,
			File:   filepath.Base(path),
			Pass:   result.Pass,
			RunID:  result.RunID,
			Errors: result.Errors,
		}
		summary.Scenarios = append(summary.Scenarios, sr)
		summary.Total++
		if result.Pass {
			summary.Passed++
		} else {
			summary.Failed++
		}

		if opts.Root.Format != "json" {
			printScenarioResult(fmtr, sr)
		}
	}

	if opts.Root.Format == "json" {
		if err := fmtr.Success("", summary); err != nil {
			return NewCmdError(ExitError, err)
		}
	} else {
		fmt.Fprintf(fmtr.ErrWriter(), "\n%d scenarios: %d passed, %d failed\n",
			summary.Total, summary.Passed, summary.Failed)
	}

	if summary.Failed > 0 {
		return NewCmdError(ExitFailures, fmt.Errorf("%d of %d scenarios failed", summary.Failed, summary.Total))
	}
	return nil
}

func printScenarioResult(fmtr *Formatter, sr ScenarioResult) {
	status := "PASS"
	if !sr.Pass {
		status = "FAIL"
	}
	fmt.Fprintf(fmtr.ErrWriter(), "%s  %s (%s)\n", status, sr.Name, sr.File)
	for _, msg := range sr.Errors {
		fmt.Fprintf(fmtr.ErrWriter(), "      %s\n", msg)
	}
}

// collectScenarios lists scenario files in dir, sorted by name for a
// stable run order. The filter glob applies to base names.
func collectScenarios(dir string, filter string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read scenarios dir: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if filepath.Ext(name) != ".yaml" && filepath.Ext(name) != ".yml" {
			continue
		}
		if filter != "" {
			match, err := filepath.Match(filter, name)
			if err != nil {
				return nil, fmt.Errorf("invalid filter %q: %w", filter, err)
			}
			if !match {
				continue
			}
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	sort.Strings(paths)
	return paths, nil
}
