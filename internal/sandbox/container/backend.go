// Package container implements the sandbox.Backend contract over the
// Docker CLI. Stateless mode runs each command in a fresh, auto-removed
// container (`docker run --rm`); session mode keeps one container alive
// (`docker run -d` + `tail -f /dev/null`) and drives commands through
// `docker exec`.
package container

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/seantiz/bashlet/internal/sandbox"
)

// Backend is one Docker-backed sandbox, stateless or session-mode per
// sandbox.ContainerConfig.SessionMode.
type Backend struct {
	cfg    sandbox.ContainerConfig
	image  string
	logger *slog.Logger

	mu          sync.Mutex
	containerID string // set once the session container is started
}

// NewBackend verifies Docker is reachable and, for an auto-built image,
// builds it if missing. Session-mode containers are started lazily on the
// first Execute call, since mounts/env/workdir arrive with RuntimeParams
// rather than at construction time.
func NewBackend(ctx context.Context, cfg sandbox.ContainerConfig, logger *slog.Logger) (*Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !dockerAvailable(ctx) {
		return nil, sandbox.NewBackendNotAvailable(Name, "docker daemon is not accessible; ensure Docker is installed and running")
	}

	image := cfg.Image
	if image == "" {
		image = defaultImage
	}

	if !imageExists(ctx, image) {
		if cfg.AutoBuild {
			if err := buildImage(ctx, image); err != nil {
				return nil, err
			}
		} else {
			return nil, sandbox.NewBackendNotAvailable(Name, fmt.Sprintf(
				"image %q not found; set auto_build=true or build manually with: docker build -t %s -f %s .",
				image, image, dockerfilePath))
		}
	}

	return &Backend{cfg: cfg, image: image, logger: logger}, nil
}

func dockerAvailable(ctx context.Context) bool {
	return exec.CommandContext(ctx, "docker", "info").Run() == nil
}

func imageExists(ctx context.Context, image string) bool {
	return exec.CommandContext(ctx, "docker", "image", "inspect", image).Run() == nil
}

func buildImage(ctx context.Context, image string) error {
	dockerfile := dockerfilePath
	if _, err := os.Stat(dockerfile); err != nil {
		return sandbox.NewSandboxInit("locate "+dockerfilePath, err)
	}
	cmd := exec.CommandContext(ctx, "docker", "build", "-t", image, "-f", dockerfile, ".")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return sandbox.NewSandboxInit("docker build: "+strings.TrimSpace(stderr.String()), err)
	}
	return nil
}

// Name returns "container".
func (b *Backend) Name() string { return Name }

// Capabilities reports container's capability profile.
func (b *Backend) Capabilities() sandbox.BackendCapabilities {
	return sandbox.BackendCapabilities{
		NativeLinux:  true,
		Networking:   b.cfg.Networking,
		PersistentFS: b.cfg.SessionMode,
	}
}

// Execute runs cmd under params, via docker exec in session mode or
// docker run --rm in stateless mode.
func (b *Backend) Execute(ctx context.Context, cmd string, params sandbox.RuntimeParams) (sandbox.CommandResult, error) {
	if b.cfg.SessionMode {
		id, err := b.ensureSession(ctx, params)
		if err != nil {
			return sandbox.CommandResult{}, err
		}
		return b.execInSession(ctx, id, cmd, params)
	}
	return b.execStateless(ctx, cmd, params)
}

// ensureSession starts the persistent container on first use, built from
// the first Execute call's mounts/env/workdir/memory limit.
func (b *Backend) ensureSession(ctx context.Context, params sandbox.RuntimeParams) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.containerID != "" {
		return b.containerID, nil
	}

	for _, m := range params.Mounts {
		if _, err := os.Stat(m.HostPath); err != nil {
			return "", sandbox.NewMountPathNotFound(m.HostPath)
		}
	}
	args := append(buildRunArgs([]string{"run", "-d"}, b.cfg.Networking, b.image, params), "tail", "-f", "/dev/null")

	out, err := exec.CommandContext(ctx, "docker", args...).Output()
	if err != nil {
		return "", sandbox.NewSandboxInit("start session container", err)
	}
	id := strings.TrimSpace(string(out))
	b.containerID = id
	b.logger.Info("container session started", "container_id", id, "image", b.image)
	return id, nil
}

func (b *Backend) execInSession(ctx context.Context, containerID, cmd string, params sandbox.RuntimeParams) (sandbox.CommandResult, error) {
	args := buildExecArgs(containerID, params)
	args = append(args, "sh", "-c", cmd)
	return runDocker(ctx, args)
}

func (b *Backend) execStateless(ctx context.Context, cmd string, params sandbox.RuntimeParams) (sandbox.CommandResult, error) {
	for _, m := range params.Mounts {
		if _, err := os.Stat(m.HostPath); err != nil {
			return sandbox.CommandResult{}, sandbox.NewMountPathNotFound(m.HostPath)
		}
	}
	args := buildRunArgs([]string{"run", "--rm"}, b.cfg.Networking, b.image, params)
	args = append(args, cmd)
	return runDocker(ctx, args)
}

// buildRunArgs assembles the shared `docker run` flag set for both
// stateless and session-start invocations: network isolation, memory
// limit, bind mounts, env vars, working directory, then the image.
func buildRunArgs(prefix []string, networking bool, image string, params sandbox.RuntimeParams) []string {
	args := append([]string{}, prefix...)
	if !networking {
		args = append(args, "--network=none")
	}
	if params.MemoryMB > 0 {
		args = append(args, fmt.Sprintf("--memory=%dm", params.MemoryMB))
	}
	for _, m := range params.Mounts {
		mode := "rw"
		if m.ReadOnly {
			mode = "ro"
		}
		args = append(args, "-v", fmt.Sprintf("%s:%s:%s", m.HostPath, m.GuestPath, mode))
	}
	for _, e := range params.Env {
		args = append(args, "-e", fmt.Sprintf("%s=%s", e.Key, e.Value))
	}
	if params.Workdir != "" {
		args = append(args, "-w", params.Workdir)
	}
	return append(args, image)
}

// buildExecArgs assembles the `docker exec` flag set: working directory
// and env vars (mounts can't be changed after container start), then the
// container ID.
func buildExecArgs(containerID string, params sandbox.RuntimeParams) []string {
	args := []string{"exec"}
	if params.Workdir != "" {
		args = append(args, "-w", params.Workdir)
	}
	for _, e := range params.Env {
		args = append(args, "-e", fmt.Sprintf("%s=%s", e.Key, e.Value))
	}
	return append(args, containerID)
}

func runDocker(ctx context.Context, args []string) (sandbox.CommandResult, error) {
	cmd := exec.CommandContext(ctx, "docker", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Stdin = nil

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return sandbox.CommandResult{}, sandbox.NewSandboxExecution("run docker", err)
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

// Info reports the backend's current container identity, if any.
func (b *Backend) Info(ctx context.Context) (sandbox.SandboxInfo, error) {
	b.mu.Lock()
	id := b.containerID
	b.mu.Unlock()

	return sandbox.SandboxInfo{
		BackendType: Name,
		InstanceID:  id,
		Running:     !b.cfg.SessionMode || id != "",
		Metadata: map[string]string{
			"image":        b.image,
			"networking":   fmt.Sprintf("%t", b.cfg.Networking),
			"session_mode": fmt.Sprintf("%t", b.cfg.SessionMode),
		},
	}, nil
}

// HealthCheck delegates to the default echo-based probe.
func (b *Backend) HealthCheck(ctx context.Context) (bool, error) {
	return sandbox.DefaultHealthCheck(ctx, b)
}

// Shutdown stops and removes the session container, if one is running.
// Idempotent; a no-op in stateless mode or if never started.
func (b *Backend) Shutdown(ctx context.Context) error {
	b.mu.Lock()
	id := b.containerID
	b.containerID = ""
	b.mu.Unlock()

	if id == "" {
		return nil
	}

	if err := exec.CommandContext(ctx, "docker", "stop", id).Run(); err != nil {
		b.logger.Warn("failed to stop container", "container_id", id, "error", err)
	}
	if err := exec.CommandContext(ctx, "docker", "rm", "-f", id).Run(); err != nil {
		b.logger.Warn("failed to remove container", "container_id", id, "error", err)
	}
	b.logger.Info("container session stopped", "container_id", id)
	return nil
}
