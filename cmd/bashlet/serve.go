package main

import (
	"github.com/spf13/cobra"

	"github.com/seantiz/bashlet/internal/control"
)

func newServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP control plane (health, metrics, backend/session REST API)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			server := control.NewServer(addr, a.factory, a.store, a.cfg.DefaultBackend, a.logger)
			return server.Run()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "address the control plane listens on")
	return cmd
}
