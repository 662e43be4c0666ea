// Package remote implements the sandbox.Backend contract over an SSH
// ControlMaster connection: one multiplexed master socket per instance,
// every Execute call riding it via a short-lived `ssh -S <socket> ...`
// invocation wrapping the command in an export/cd/exec shell envelope.
package remote

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/seantiz/bashlet/internal/sandbox"
)

// Backend is one SSH destination, optionally multiplexed through a
// ControlMaster socket established at construction time.
type Backend struct {
	cfg    sandbox.RemoteConfig
	logger *slog.Logger

	mu          sync.Mutex
	controlPath string // empty when ControlMux is disabled or not yet started
	connected   bool
}

// NewBackend validates the destination, verifies the ssh client is
// installed, and either establishes a ControlMaster master connection or
// probes the destination with a one-shot `echo ok`.
func NewBackend(ctx context.Context, cfg sandbox.RemoteConfig, logger *slog.Logger) (*Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Host == "" {
		return nil, sandbox.NewBackendNotAvailable(Name, "ssh host is not configured")
	}
	if cfg.User == "" {
		return nil, sandbox.NewBackendNotAvailable(Name, "ssh user is not configured")
	}
	if !sshAvailable(ctx) {
		return nil, sandbox.NewBackendNotAvailable(Name, "ssh client is not installed or not accessible")
	}
	if cfg.Port == 0 {
		cfg.Port = 22
	}
	if cfg.ConnectTimeoutSec == 0 {
		cfg.ConnectTimeoutSec = defaultConnectTimeoutSec
	}

	b := &Backend{cfg: cfg, logger: logger}

	if cfg.ControlMux {
		if err := b.startControlMaster(ctx); err != nil {
			return nil, err
		}
	} else {
		res, err := b.execSSH(ctx, "echo ok")
		if err != nil {
			return nil, err
		}
		if res.ExitCode != 0 {
			return nil, sandbox.NewSandboxInit("ssh connection test failed: "+res.Stderr, nil)
		}
		b.connected = true
	}

	logger.Info("remote backend initialized", "host", cfg.Host, "port", cfg.Port, "user", cfg.User, "control_mux", cfg.ControlMux)
	return b, nil
}

func sshAvailable(ctx context.Context) bool {
	return exec.CommandContext(ctx, "ssh", "-V").Run() == nil
}

func (b *Backend) destination() string {
	return fmt.Sprintf("%s@%s", b.cfg.User, b.cfg.Host)
}

func (b *Backend) controlSocketPath() string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("bashlet-ssh-%s-%s-%d.sock", b.cfg.User, b.cfg.Host, os.Getpid()))
}

// connectionArgs assembles the options shared by every ssh invocation:
// connect timeout, batch mode, host-key policy, port, and identity file.
func (b *Backend) connectionArgs() []string {
	args := []string{
		"-o", fmt.Sprintf("ConnectTimeout=%d", b.cfg.ConnectTimeoutSec),
		"-o", "BatchMode=yes",
		"-o", "StrictHostKeyChecking=accept-new",
		"-p", strconv.Itoa(b.cfg.Port),
	}
	if b.cfg.IdentityFile != "" {
		args = append(args, "-i", b.cfg.IdentityFile)
	}
	return args
}

func (b *Backend) startControlMaster(ctx context.Context) error {
	controlPath := b.controlSocketPath()

	args := []string{"-M", "-S", controlPath, "-o", "ControlPersist=yes"}
	args = append(args, b.connectionArgs()...)
	args = append(args, b.destination(), "exit", "0")

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "ssh", args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return sandbox.NewSandboxInit(fmt.Sprintf("establish ssh connection to %s@%s:%d: %s",
			b.cfg.User, b.cfg.Host, b.cfg.Port, strings.TrimSpace(stderr.String())), err)
	}

	b.mu.Lock()
	b.controlPath = controlPath
	b.connected = true
	b.mu.Unlock()

	b.logger.Info("ssh ControlMaster connection established", "control_path", controlPath)
	return nil
}

// Name returns "remote".
func (b *Backend) Name() string { return Name }

// Capabilities reports remote's capability profile: a remote host is
// assumed Linux-compatible, networked, and filesystem-persistent.
func (b *Backend) Capabilities() sandbox.BackendCapabilities {
	return sandbox.BackendCapabilities{
		NativeLinux:  true,
		Networking:   true,
		PersistentFS: true,
	}
}

// Execute runs cmd on the remote host via SSH, wrapped in an
// export/cd/exec envelope built from params.
func (b *Backend) Execute(ctx context.Context, cmd string, params sandbox.RuntimeParams) (sandbox.CommandResult, error) {
	return b.execSSH(ctx, buildRemoteCommand(cmd, params))
}

func (b *Backend) execSSH(ctx context.Context, remoteCommand string) (sandbox.CommandResult, error) {
	b.mu.Lock()
	controlPath := b.controlPath
	b.mu.Unlock()

	args := []string{}
	if controlPath != "" {
		args = append(args, "-S", controlPath)
	}
	args = append(args, b.connectionArgs()...)
	args = append(args, b.destination(), remoteCommand)

	command := exec.CommandContext(ctx, "ssh", args...)
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
			return sandbox.CommandResult{}, sandbox.NewSandboxExecution("run ssh", err)
		}
	}

	return sandbox.CommandResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}, nil
}

// buildRemoteCommand joins env exports, a best-effort workdir change, and
// the actual command into one semicolon-separated shell line.
func buildRemoteCommand(cmd string, params sandbox.RuntimeParams) string {
	var parts []string
	for _, e := range params.Env {
		escaped := strings.ReplaceAll(e.Value, "'", `'"'"'`)
		parts = append(parts, fmt.Sprintf("export %s='%s'", e.Key, escaped))
	}
	if params.Workdir != "" {
		parts = append(parts, fmt.Sprintf("cd '%s' 2>/dev/null || true", params.Workdir))
	}
	parts = append(parts, cmd)
	return strings.Join(parts, "; ")
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

// Info reports the destination and ControlMaster socket state.
func (b *Backend) Info(ctx context.Context) (sandbox.SandboxInfo, error) {
	b.mu.Lock()
	connected := b.connected
	controlPath := b.controlPath
	b.mu.Unlock()

	if controlPath == "" {
		controlPath = "none"
	}

	return sandbox.SandboxInfo{
		BackendType: Name,
		InstanceID:  fmt.Sprintf("%s@%s:%d", b.cfg.User, b.cfg.Host, b.cfg.Port),
		Running:     connected,
		Metadata: map[string]string{
			"host":         b.cfg.Host,
			"port":         strconv.Itoa(b.cfg.Port),
			"user":         b.cfg.User,
			"control_mux":  strconv.FormatBool(b.cfg.ControlMux),
			"control_path": controlPath,
		},
	}, nil
}

// HealthCheck runs `echo ok` and checks both exit code and stdout,
// matching the original implementation's stricter-than-default probe.
func (b *Backend) HealthCheck(ctx context.Context) (bool, error) {
	res, err := b.Execute(ctx, "echo ok", sandbox.RuntimeParams{})
	if err != nil {
		return false, nil
	}
	return res.ExitCode == 0 && strings.TrimSpace(res.Stdout) == "ok", nil
}

// Shutdown closes the ControlMaster connection, if one was started.
// Idempotent.
func (b *Backend) Shutdown(ctx context.Context) error {
	if !b.cfg.ControlMux {
		return nil
	}

	b.mu.Lock()
	controlPath := b.controlPath
	b.controlPath = ""
	b.connected = false
	b.mu.Unlock()

	if controlPath == "" {
		return nil
	}

	args := append([]string{"-S", controlPath, "-O", "exit"}, b.destination())
	if err := exec.CommandContext(ctx, "ssh", args...).Run(); err != nil {
		b.logger.Warn("failed to cleanly close ssh ControlMaster", "error", err)
	}
	if _, err := os.Stat(controlPath); err == nil {
		if err := os.Remove(controlPath); err != nil {
			b.logger.Warn("failed to remove ControlMaster socket file", "error", err)
		}
	}

	b.logger.Info("ssh ControlMaster connection closed")
	return nil
}
