package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTerminateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "terminate <session>",
		Short: "Terminate a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.store.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "terminated %s\n", args[0])
			return nil
		},
	}
}
