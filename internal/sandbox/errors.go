package sandbox

import "fmt"

// Kind is a closed set of failure categories every component maps its
// foreign errors onto. Non-zero guest exit is never represented here — it
// is a CommandResult, not an Error.
type Kind int

const (
	// KindConfig marks invalid or missing configuration.
	KindConfig Kind = iota
	// KindBackendNotAvailable marks a missing platform prerequisite.
	KindBackendNotAvailable
	// KindSandboxInit marks a backend that failed to become ready.
	KindSandboxInit
	// KindSandboxExecution marks a subprocess or guest operation failure.
	KindSandboxExecution
	// KindSandboxTimeout marks an exceeded time budget. Retryable.
	KindSandboxTimeout
	// KindMountPathNotFound marks a referenced host path that does not exist.
	KindMountPathNotFound
	// KindWasmNotFound marks a missing WASM package.
	KindWasmNotFound
	// KindHypervisorAPI marks a non-2xx hypervisor REST reply.
	KindHypervisorAPI
	// KindVMBootFailed marks a VM that never became ready.
	KindVMBootFailed
	// KindVMCommunication marks a guest-transport failure. Retryable.
	KindVMCommunication
	// KindAssetDownload marks a failed asset fetch. Retryable.
	KindAssetDownload
	// KindSessionNotFound marks a session lookup miss.
	KindSessionNotFound
	// KindSessionExpired marks a session whose TTL has elapsed.
	KindSessionExpired
	// KindSessionNameExists marks a unique-name violation.
	KindSessionNameExists
	// KindIO marks a standard I/O failure.
	KindIO
	// KindJSON marks a JSON (de)serialization failure.
	KindJSON
	// KindTomlParse marks a TOML parse failure.
	KindTomlParse
)

var kindNames = map[Kind]string{
	KindConfig:              "config",
	KindBackendNotAvailable: "backend_not_available",
	KindSandboxInit:         "sandbox_init",
	KindSandboxExecution:    "sandbox_execution",
	KindSandboxTimeout:      "sandbox_timeout",
	KindMountPathNotFound:   "mount_path_not_found",
	KindWasmNotFound:        "wasm_not_found",
	KindHypervisorAPI:       "hypervisor_api",
	KindVMBootFailed:        "vm_boot_failed",
	KindVMCommunication:     "vm_communication",
	KindAssetDownload:       "asset_download",
	KindSessionNotFound:     "session_not_found",
	KindSessionExpired:      "session_expired",
	KindSessionNameExists:   "session_name_exists",
	KindIO:                  "io",
	KindJSON:                "json",
	KindTomlParse:           "toml_parse",
}

// retryableKinds lists the kinds a caller may safely retry.
var retryableKinds = map[Kind]bool{
	KindSandboxTimeout:  true,
	KindVMCommunication: true,
	KindAssetDownload:   true,
}

// Error is the single error type every sandbox component produces at its
// boundary. Backend, Reason, Path, URL, Seconds, Status, Body, ID and Name
// are populated only for the kinds that carry them.
type Error struct {
	Kind    Kind
	Message string

	Backend string
	Reason  string
	Path    string
	URL     string
	Seconds int
	Status  int
	Body    string
	ID      string
	Name    string

	Wrapped error
}

func (e *Error) Error() string {
	base := fmt.Sprintf("%s: %s", kindNames[e.Kind], e.Message)
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %v", base, e.Wrapped)
	}
	return base
}

// Unwrap exposes the wrapped foreign error for errors.Is/As.
func (e *Error) Unwrap() error { return e.Wrapped }

// Retryable reports whether a caller may reasonably retry the operation that
// produced this error.
func (e *Error) Retryable() bool { return retryableKinds[e.Kind] }

// NewConfig wraps a configuration failure.
func NewConfig(message string) *Error {
	return &Error{Kind: KindConfig, Message: message}
}

// NewBackendNotAvailable wraps a missing platform prerequisite.
func NewBackendNotAvailable(backend, reason string) *Error {
	return &Error{Kind: KindBackendNotAvailable, Backend: backend, Reason: reason,
		Message: fmt.Sprintf("backend %q not available: %s", backend, reason)}
}

// NewSandboxInit wraps a backend readiness failure.
func NewSandboxInit(message string, wrapped error) *Error {
	return &Error{Kind: KindSandboxInit, Message: message, Wrapped: wrapped}
}

// NewSandboxExecution wraps a subprocess or guest operation failure.
func NewSandboxExecution(message string, wrapped error) *Error {
	return &Error{Kind: KindSandboxExecution, Message: message, Wrapped: wrapped}
}

// NewSandboxTimeout wraps an exceeded time budget.
func NewSandboxTimeout(seconds int) *Error {
	return &Error{Kind: KindSandboxTimeout, Seconds: seconds,
		Message: fmt.Sprintf("time budget of %ds exceeded", seconds)}
}

// NewMountPathNotFound wraps a missing host mount path.
func NewMountPathNotFound(path string) *Error {
	return &Error{Kind: KindMountPathNotFound, Path: path,
		Message: fmt.Sprintf("mount host path %q does not exist", path)}
}

// NewWasmNotFound wraps a missing WASM package.
func NewWasmNotFound(path string) *Error {
	return &Error{Kind: KindWasmNotFound, Path: path,
		Message: fmt.Sprintf("wasm package %q not found", path)}
}

// NewHypervisorAPI wraps a non-2xx hypervisor REST reply.
func NewHypervisorAPI(status int, body string) *Error {
	return &Error{Kind: KindHypervisorAPI, Status: status, Body: body,
		Message: fmt.Sprintf("hypervisor API returned status %d", status)}
}

// NewVMBootFailed wraps a VM that never became ready.
func NewVMBootFailed(message string) *Error {
	return &Error{Kind: KindVMBootFailed, Message: message}
}

// NewVMCommunication wraps a guest-transport failure.
func NewVMCommunication(message string, wrapped error) *Error {
	return &Error{Kind: KindVMCommunication, Message: message, Wrapped: wrapped}
}

// NewAssetDownload wraps a failed asset fetch.
func NewAssetDownload(url string, wrapped error) *Error {
	return &Error{Kind: KindAssetDownload, URL: url,
		Message: fmt.Sprintf("failed to download %s", url), Wrapped: wrapped}
}

// NewSessionNotFound wraps a session lookup miss.
func NewSessionNotFound(id string) *Error {
	return &Error{Kind: KindSessionNotFound, ID: id,
		Message: fmt.Sprintf("session %q not found", id)}
}

// NewSessionExpired wraps a session whose TTL has elapsed.
func NewSessionExpired(id string) *Error {
	return &Error{Kind: KindSessionExpired, ID: id,
		Message: fmt.Sprintf("session %q has expired", id)}
}

// NewSessionNameExists wraps a unique-name violation.
func NewSessionNameExists(name string) *Error {
	return &Error{Kind: KindSessionNameExists, Name: name,
		Message: fmt.Sprintf("session name %q already in use", name)}
}

// NewIO wraps a standard I/O failure.
func NewIO(message string, wrapped error) *Error {
	return &Error{Kind: KindIO, Message: message, Wrapped: wrapped}
}

// NewJSON wraps a JSON (de)serialization failure.
func NewJSON(message string, wrapped error) *Error {
	return &Error{Kind: KindJSON, Message: message, Wrapped: wrapped}
}

// NewTomlParse wraps a TOML parse failure.
func NewTomlParse(message string, wrapped error) *Error {
	return &Error{Kind: KindTomlParse, Message: message, Wrapped: wrapped}
}
