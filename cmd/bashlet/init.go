package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const defaultConfigTemplate = `# bashlet configuration
data_dir = "%s"
cache_dir = "%s"
default_backend = "auto"
log_level = "info"

[wasm]
# runtime_binary = "/usr/local/bin/wasmer"
# package_path = "/path/to/bash.webc"

[microvm]
# hypervisor_binary = "/usr/local/bin/firecracker"
# kernel_path = "/var/lib/bashlet/vmlinux"
# rootfs_path = "/var/lib/bashlet/rootfs.ext4"
vcpu_count = 1
enable_networking = false

[container]
image = "bashlet-sandbox:latest"
auto_build = true
networking = false
session_mode = true

[remote]
# host = "sandbox.example.com"
# user = "runner"
# port = 22
# identity_file = "/home/you/.ssh/id_ed25519"
control_mux = true
`

func newInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a default bashlet.toml configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "bashlet.toml"
			if len(args) == 1 {
				path = args[0]
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			home, err := os.UserHomeDir()
			if err != nil {
				home = "."
			}
			body := fmt.Sprintf(defaultConfigTemplate, home+"/.local/share/bashlet", home+"/.cache/bashlet")

			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing configuration file")
	return cmd
}
