package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			records, err := a.store.List()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tWORKDIR\tCREATED\tEXPIRED")
			for _, r := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%v\n",
					r.ID, r.Name, r.Workdir,
					time.Unix(r.CreatedAtEpochS, 0).Format(time.RFC3339),
					r.IsExpired(),
				)
			}
			return w.Flush()
		},
	}
}
