// Command hush runs panic-suppression scenarios and inspects their
// decision journals.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/hush/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
