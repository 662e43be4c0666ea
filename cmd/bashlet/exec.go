package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seantiz/bashlet/internal/sandbox"
)

func newExecCommand() *cobra.Command {
	var (
		backendKind string
		mountSpecs  []string
		envSpecs    []string
		workdir     string
	)

	cmd := &cobra.Command{
		Use:   "exec -- <command...>",
		Short: "Execute a one-shot command: create, run, terminate in one step",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			mounts, err := parseMounts(mountSpecs)
			if err != nil {
				return err
			}
			env, err := parseEnv(envSpecs)
			if err != nil {
				return err
			}

			backend, err := a.factory.Create(sandbox.BackendConfig{Kind: a.backendKind(backendKind)})
			if err != nil {
				return err
			}
			defer backend.Shutdown(context.Background())

			params := sandbox.RuntimeParams{Mounts: mounts, Env: env, Workdir: workdir}
			result, err := backend.Execute(context.Background(), strings.Join(args, " "), params)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), result.Stdout)
			fmt.Fprint(cmd.ErrOrStderr(), result.Stderr)
			exitCode = result.ExitCode
			return nil
		},
	}

	cmd.Flags().StringVar(&backendKind, "backend", "", "backend kind to execute against (default: configured default_backend)")
	cmd.Flags().StringArrayVar(&mountSpecs, "mount", nil, "host:guest[:ro|rw] mount, repeatable")
	cmd.Flags().StringArrayVar(&envSpecs, "env", nil, "KEY=VALUE environment variable, repeatable")
	cmd.Flags().StringVar(&workdir, "workdir", "", "working directory for the command")

	return cmd
}
