package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"

	"github.com/seantiz/bashlet/internal/config"
)

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect resolved configuration",
	}
	cmd.AddCommand(newConfigShowCommand(), newConfigPathCommand())
	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(cfg)
		},
	}
}

func newConfigPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path that would be used",
		RunE: func(cmd *cobra.Command, args []string) error {
			if v := os.Getenv("BASHLET_CONFIG"); v != "" {
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			}
			if p, err := xdg.SearchConfigFile("bashlet.toml"); err == nil {
				fmt.Fprintln(cmd.OutOrStdout(), p)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "bashlet.toml")
			return nil
		},
	}
}
