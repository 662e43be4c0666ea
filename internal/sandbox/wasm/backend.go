// Package wasm implements the sandbox.Backend contract over the Wasmer
// CLI: every command runs as `wasmer run --mapdir ... --env ... <webc> --
// -c <cmd>` against a prebuilt bash WEBC package, giving stateless,
// cross-platform WASM isolation with no native-code execution at all.
package wasm

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/seantiz/bashlet/internal/asset"
	"github.com/seantiz/bashlet/internal/sandbox"
)

// Backend runs commands through the Wasmer CLI against one resolved WEBC
// package. Stateless: there is no persistent process between calls.
type Backend struct {
	wasmerBinary string
	webcPath     string
	logger       *slog.Logger
}

// NewBackend resolves the wasmer runtime binary and WEBC package (custom
// path, or the default bash package downloaded on demand) per
// sandbox.WasmConfig.
func NewBackend(ctx context.Context, cfg sandbox.WasmConfig, assets *asset.Manager, logger *slog.Logger) (*Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}

	wasmerBinary, err := assets.GetWasmerBinary(ctx, cfg.RuntimeBinary)
	if err != nil {
		return nil, err
	}

	webcPath := cfg.PackagePath
	if webcPath != "" {
		if _, err := os.Stat(webcPath); err != nil {
			return nil, sandbox.NewWasmNotFound(webcPath)
		}
	} else {
		webcPath, err = assets.GetDefaultWebcPackage(ctx)
		if err != nil {
			return nil, err
		}
	}

	logger.Info("wasm backend initialized", "webc", webcPath)
	return &Backend{wasmerBinary: wasmerBinary, webcPath: webcPath, logger: logger}, nil
}

// Name returns "wasm".
func (b *Backend) Name() string { return Name }

// Capabilities reports wasm's capability profile: no native Linux
// semantics, no networking, no persistence across calls.
func (b *Backend) Capabilities() sandbox.BackendCapabilities {
	return sandbox.BackendCapabilities{
		NativeLinux:  false,
		Networking:   false,
		PersistentFS: false,
	}
}

// Execute runs cmd inside the WASM sandbox via `wasmer run`.
func (b *Backend) Execute(ctx context.Context, cmd string, params sandbox.RuntimeParams) (sandbox.CommandResult, error) {
	args := []string{"run"}

	for _, m := range params.Mounts {
		if _, err := os.Stat(m.HostPath); err != nil {
			return sandbox.CommandResult{}, sandbox.NewMountPathNotFound(m.HostPath)
		}
		args = append(args, "--mapdir", fmt.Sprintf("%s:%s", m.GuestPath, m.HostPath))
	}
	for _, e := range params.Env {
		args = append(args, "--env", fmt.Sprintf("%s=%s", e.Key, e.Value))
	}

	args = append(args, b.webcPath, "--", "-c", cmd)

	command := exec.CommandContext(ctx, b.wasmerBinary, args...)
	var stdout, stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr
	command.Stdin = nil

	err := command.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return sandbox.CommandResult{}, sandbox.NewSandboxExecution("run wasmer", err)
		}
	}

	return sandbox.CommandResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}, nil
}

// WriteFile writes content to path via a derived printf redirect.
func (b *Backend) WriteFile(ctx context.Context, path, content string) error {
	return sandbox.DeriveWriteFile(ctx, b, path, content)
}

// ReadFile reads path's content via a derived `cat`.
func (b *Backend) ReadFile(ctx context.Context, path string) (string, error) {
	return sandbox.DeriveReadFile(ctx, b, path)
}

// ListDir lists path via a derived `ls -la`.
func (b *Backend) ListDir(ctx context.Context, path string) (string, error) {
	return sandbox.DeriveListDir(ctx, b, path)
}

// Info reports the resolved WEBC package; wasm has no running instance
// identity since it is stateless.
func (b *Backend) Info(ctx context.Context) (sandbox.SandboxInfo, error) {
	return sandbox.SandboxInfo{
		BackendType: Name,
		InstanceID:  "",
		Running:     true,
		Metadata: map[string]string{
			"webc_path": b.webcPath,
		},
	}, nil
}

// HealthCheck delegates to the default echo-based probe.
func (b *Backend) HealthCheck(ctx context.Context) (bool, error) {
	return sandbox.DefaultHealthCheck(ctx, b)
}

// Shutdown is a no-op: wasm holds no persistent process or resource.
func (b *Backend) Shutdown(ctx context.Context) error { return nil }
