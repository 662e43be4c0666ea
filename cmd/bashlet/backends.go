package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newBackendsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List sandbox backends and their availability on this host",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tAVAILABLE\tDESCRIPTION\tREASON")
			for _, info := range a.factory.AvailableBackends() {
				fmt.Fprintf(w, "%s\t%v\t%s\t%s\n", info.Name, info.Available, info.Description, info.UnavailableReason)
			}
			return w.Flush()
		},
	}
}
