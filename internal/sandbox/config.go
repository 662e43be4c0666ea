package sandbox

// Backend kind tags for BackendConfig.
const (
	KindWasm      = "wasm"
	KindMicroVM   = "microvm"
	KindContainer = "container"
	KindRemote    = "remote"
	KindAuto      = "auto"
)

// BackendConfig is a tagged variant: exactly one of Wasm, MicroVM,
// Container, Remote is non-nil, selected by Kind.
type BackendConfig struct {
	Kind string

	Wasm      *WasmConfig
	MicroVM   *MicroVMConfig
	Container *ContainerConfig
	Remote    *RemoteConfig
}

// WasmConfig configures the WASM backend.
type WasmConfig struct {
	// RuntimeBinary overrides the WASM runtime CLI path.
	RuntimeBinary string
	// PackagePath overrides the WEBC package path.
	PackagePath string
}

// MicroVMConfig configures the microVM backend.
type MicroVMConfig struct {
	HypervisorBinary string
	KernelPath       string
	RootfsPath       string
	VCPUCount        int // 1..=32
	EnableNetworking bool
}

// ContainerConfig configures the container backend.
type ContainerConfig struct {
	Image       string
	AutoBuild   bool
	Networking  bool
	SessionMode bool
}

// RemoteConfig configures the remote-shell backend.
type RemoteConfig struct {
	Host              string
	Port              int // 1..=65535
	User              string
	IdentityFile      string
	ControlMux        bool
	ConnectTimeoutSec int
}
