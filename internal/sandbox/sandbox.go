// Package sandbox defines the abstract contract shared by every isolation
// backend (WASM, microVM, container, remote-shell): capability discovery,
// command execution, derived file operations, and lifecycle management.
package sandbox

import "context"

// Mount describes a host directory made visible inside a sandbox.
type Mount struct {
	HostPath  string `json:"host_path"`
	GuestPath string `json:"guest_path"`
	ReadOnly  bool   `json:"readonly"`
}

// EnvVar is an ordered environment variable pair. A slice is used instead of
// a map so that env ordering is reproducible across runs.
type EnvVar struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// RuntimeParams configures one execution: mounts, environment, working
// directory, resource limits and the time budget for the command.
type RuntimeParams struct {
	Mounts         []Mount
	Env            []EnvVar
	Workdir        string
	MemoryMB       int
	TimeoutSeconds int
}

// CommandResult is the outcome of a command that actually ran inside the
// sandbox. A non-zero ExitCode is a normal result, not an error: only a
// failure to spawn, transport, or configure the sandbox produces an error.
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// UnknownExitCode denotes "could not determine the exit code" — used when a
// process was killed by a signal or never reported a status.
const UnknownExitCode = -1

// BackendCapabilities is purely descriptive: callers inspect it, they never
// set it, and it is constant for the lifetime of a Backend instance.
type BackendCapabilities struct {
	NativeLinux  bool
	Networking   bool
	PersistentFS bool
}

// SandboxInfo describes a running (or last-known) sandbox instance. It is
// never persisted; it exists purely for diagnostics.
type SandboxInfo struct {
	BackendType string
	InstanceID  string
	Running     bool
	Metadata    map[string]string
}

// Backend is the contract every concrete isolation mechanism satisfies.
// All methods may suspend on I/O (subprocess spawn, socket read, HTTP) and
// must respect ctx cancellation at every suspension point.
type Backend interface {
	// Name returns the backend's short identifier, e.g. "microvm".
	Name() string

	// Capabilities reports what this backend supports. Constant over the
	// backend's lifetime.
	Capabilities() BackendCapabilities

	// Execute runs cmd under params and returns its result. A non-zero
	// ExitCode is a CommandResult, not an error.
	Execute(ctx context.Context, cmd string, params RuntimeParams) (CommandResult, error)

	// WriteFile writes content to path inside the sandbox.
	WriteFile(ctx context.Context, path, content string) error

	// ReadFile reads the content of path inside the sandbox.
	ReadFile(ctx context.Context, path string) (string, error)

	// ListDir lists the contents of path inside the sandbox (`ls -la` style).
	ListDir(ctx context.Context, path string) (string, error)

	// Info returns descriptive, non-authoritative state for diagnostics.
	Info(ctx context.Context) (SandboxInfo, error)

	// Shutdown releases any resources held by the backend. Idempotent.
	Shutdown(ctx context.Context) error

	// HealthCheck reports whether the backend is responsive.
	HealthCheck(ctx context.Context) (bool, error)
}

// DefaultHealthCheck implements the default health_check behavior described
// in the backend abstraction: run `echo ok` and check the exit code.
// Backends without a cheaper liveness probe should delegate to this.
func DefaultHealthCheck(ctx context.Context, b Backend) (bool, error) {
	res, err := b.Execute(ctx, "echo ok", RuntimeParams{})
	if err != nil {
		return false, err
	}
	return res.ExitCode == 0, nil
}
