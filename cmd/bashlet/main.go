// Command bashlet is the CLI host process: it resolves configuration,
// selects a sandbox backend, and drives session create/run/exec/terminate
// against the durable session store.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// exitCode carries a guest command's exit status out of run/exec's RunE
// (which must return nil on a non-zero exit so the session store update and
// output flushing above it still happen) to main's final os.Exit.
var exitCode int

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(exitCode)
}

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "bashlet",
		Short:         "Sandboxed bash execution environment",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "configuration file path (env BASHLET_CONFIG)")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if configPath != "" {
			os.Setenv("BASHLET_CONFIG", configPath)
		}
		return nil
	}

	root.AddCommand(
		newCreateCommand(),
		newRunCommand(),
		newExecCommand(),
		newTerminateCommand(),
		newListCommand(),
		newConfigCommand(),
		newInitCommand(),
		newBackendsCommand(),
		newServeCommand(),
	)

	return root
}
