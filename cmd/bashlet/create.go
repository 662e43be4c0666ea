package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seantiz/bashlet/internal/session"
)

func newCreateCommand() *cobra.Command {
	var (
		name       string
		mountSpecs []string
		envSpecs   []string
		workdir    string
		wasmBinary string
		ttl        string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new sandbox session",
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

			var ttlSeconds *int64
			if ttl != "" {
				seconds, err := session.ParseTTL(ttl)
				if err != nil {
					return err
				}
				ttlSeconds = &seconds
			}

			record := session.NewRecord(name, workdir, mounts, env, wasmBinary, ttlSeconds)
			if err := a.store.Save(record); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), record.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "optional, unique session name")
	cmd.Flags().StringArrayVar(&mountSpecs, "mount", nil, "host:guest[:ro|rw] mount, repeatable")
	cmd.Flags().StringArrayVar(&envSpecs, "env", nil, "KEY=VALUE environment variable, repeatable")
	cmd.Flags().StringVar(&workdir, "workdir", "", "working directory for commands run in this session")
	cmd.Flags().StringVar(&wasmBinary, "wasm-binary", "", "WASM package path override, if this session runs on the wasm backend")
	cmd.Flags().StringVar(&ttl, "ttl", "", "session time-to-live, e.g. 30s, 5m, 1h, 2d")

	return cmd
}
