package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seantiz/bashlet/internal/sandbox"
)

func newRunCommand() *cobra.Command {
	var backendKind string

	cmd := &cobra.Command{
		Use:   "run <session> -- <command...>",
		Short: "Execute a command in an existing session",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			record, err := a.store.Get(args[0])
			if err != nil {
				return err
			}

			backend, err := a.factory.Create(sandbox.BackendConfig{Kind: a.backendKind(backendKind)})
			if err != nil {
				return err
			}
			defer backend.Shutdown(context.Background())

			params := sandbox.RuntimeParams{
				Mounts:  record.Mounts,
				Env:     record.Env,
				Workdir: record.Workdir,
			}

			result, err := backend.Execute(context.Background(), strings.Join(args[1:], " "), params)
			if err != nil {
				return err
			}

			if err := a.store.Touch(record.ID); err != nil {
				a.logger.Warn("failed to touch session after execute", "session", record.ID, "error", err)
			}

			fmt.Fprint(cmd.OutOrStdout(), result.Stdout)
			fmt.Fprint(cmd.ErrOrStderr(), result.Stderr)
			exitCode = result.ExitCode
			return nil
		},
	}

	cmd.Flags().StringVar(&backendKind, "backend", "", "backend kind to execute against (default: configured default_backend)")

	return cmd
}
