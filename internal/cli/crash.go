package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/hush"
	"github.com/roach88/hush/trap"
)

// CrashOptions holds flags for the crash command.
type CrashOptions struct {
	Root *RootOptions

	// Hush acquires a suppression scope before panicking.
	Hush bool

	// Value is the panic value.
	Value string

	// Background panics on a spawned goroutine instead of the caller.
	Background bool
}

func newCrashCommand(root *RootOptions) *cobra.Command {
	opts := &CrashOptions{Root: root}

	cmd := &cobra.Command{
		Use:   "crash",
		Short: "Panic on purpose, optionally under a suppression scope",
		Long: `Trigger a panic and route its report through the pipeline.

Without --hush the report is written to stderr and the command exits 2,
matching an unrecovered runtime panic. With --hush a suppression scope is
acquired on the panicking goroutine first, so nothing is printed; the
foreground form then exits 0.

With --background the panic happens on a spawned goroutine and the process
exits 2 either way, since a goroutine panic aborts the process regardless
of whether its report was suppressed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmtr := NewFormatter(root.Format, root.Verbose)
			fmtr.SetWriters(cmd.OutOrStdout(), cmd.ErrOrStderr())
			return runCrash(fmtr, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Hush, "hush", false, "suppress the panic report")
	cmd.Flags().StringVar(&opts.Value, "value", "deliberate crash", "panic value")
	cmd.Flags().BoolVar(&opts.Background, "background", false, "panic on a spawned goroutine")

	return cmd
}

func runCrash(fmtr *Formatter, opts *CrashOptions) error {
	if opts.Background {
		fmtr.Verbose("panicking on a spawned goroutine")
		done := make(chan struct{})
		trap.Go(func() {
			defer close(done)
			if opts.Hush {
				// Held through process exit: releasing during the
				// unwind would happen before the report is routed.
				hush.ThisGoroutine()
			}
			panic(opts.Value)
		})
		// The trap exits the process after reporting; done only closes
		// if the panic somehow did not happen.
		<-done
		return NewCmdError(ExitError, fmt.Errorf("background crash did not panic"))
	}

	if opts.Hush {
		scope := hush.ThisGoroutine()
		defer scope.Release()
		fmtr.Verbose("suppression active: %v", hush.Active())
	}
	err := trap.Run(func() {
		panic(opts.Value)
	})
	if !trap.IsPanic(err) {
		return NewCmdError(ExitError, fmt.Errorf("crash did not panic"))
	}

	if opts.Hush {
		fmtr.Verbose("panic suppressed")
		return nil
	}
	return NewCmdError(ExitError, err)
}
