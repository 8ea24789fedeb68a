// Package cli wires the hush commands: running scenario files against the
// suppression harness, inspecting decision journals, and a crash demo for
// exercising the trap boundary from a real process.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// RootOptions holds flags shared by every subcommand.
type RootOptions struct {
	Verbose bool
	Format  string
}

// ValidFormats lists the accepted values for --format.
var ValidFormats = []string{"text", "json"}

// NewRootCommand builds the hush command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "hush",
		Short: "Run and inspect panic-suppression scenarios",
		Long: `hush drives the goroutine panic-suppression library from the command line.

Scenario files describe sequences of scope acquisitions, releases and panics,
with expectations about which panic reports reach the installed handler.
Decisions are journaled to SQLite for later inspection with "hush trace".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !validFormat(opts.Format) {
				return NewCmdError(ExitError, fmt.Errorf(
					"invalid format %q (valid: %s)", opts.Format, strings.Join(ValidFormats, ", ")))
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "print diagnostic detail to stderr")
	cmd.PersistentFlags().StringVarP(&opts.Format, "format", "f", "text", "output format (text or json)")

	cmd.AddCommand(newTestCommand(opts))
	cmd.AddCommand(newTraceCommand(opts))
	cmd.AddCommand(newCrashCommand(opts))

	return cmd
}

func validFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
