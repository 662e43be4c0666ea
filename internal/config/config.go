// Package config loads application configuration from a bashlet.toml file,
// with environment variable overrides and XDG-resolved defaults.
package config

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"

	"github.com/seantiz/bashlet/internal/sandbox"
)

const (
	envConfigFile = "BASHLET_CONFIG"
	envDataDir    = "BASHLET_DATA_DIR"
	envCacheDir   = "BASHLET_CACHE_DIR"
	envLogLevel   = "BASHLET_LOG_LEVEL"
	envBackend    = "BASHLET_BACKEND"

	configFileName = "bashlet.toml"
)

// Config holds application configuration.
type Config struct {
	// DataDir is where session records and other durable state live.
	DataDir string `toml:"data_dir"`
	// CacheDir is where downloaded assets (kernels, rootfs images,
	// runtime binaries) are cached.
	CacheDir string `toml:"cache_dir"`
	// DefaultBackend is the backend kind used when a caller doesn't
	// specify one explicitly ("auto" probes in priority order).
	DefaultBackend string `toml:"default_backend"`
	// LogLevel is the minimum slog level emitted.
	LogLevel slog.Level `toml:"-"`

	// Backends holds the per-kind settings consumed when a sandbox.Backend
	// of that kind is constructed.
	Backends BackendsConfig `toml:"-"`
}

// BackendsConfig groups the persistent, per-kind settings that the CLI
// combines with a call's mounts/env/workdir to build a sandbox.BackendConfig.
type BackendsConfig struct {
	Wasm      sandbox.WasmConfig
	MicroVM   sandbox.MicroVMConfig
	Container sandbox.ContainerConfig
	Remote    sandbox.RemoteConfig
}

// fileConfig mirrors Config's TOML-decodable fields; LogLevel needs the
// raw string form before it's parsed into a slog.Level.
type fileConfig struct {
	DataDir        string `toml:"data_dir"`
	CacheDir       string `toml:"cache_dir"`
	DefaultBackend string `toml:"default_backend"`
	LogLevel       string `toml:"log_level"`

	Wasm      fileWasmConfig      `toml:"wasm"`
	MicroVM   fileMicroVMConfig   `toml:"microvm"`
	Container fileContainerConfig `toml:"container"`
	Remote    fileRemoteConfig    `toml:"remote"`
}

type fileWasmConfig struct {
	RuntimeBinary string `toml:"runtime_binary"`
	PackagePath   string `toml:"package_path"`
}

type fileMicroVMConfig struct {
	HypervisorBinary string `toml:"hypervisor_binary"`
	KernelPath       string `toml:"kernel_path"`
	RootfsPath       string `toml:"rootfs_path"`
	VCPUCount        int    `toml:"vcpu_count"`
	EnableNetworking bool   `toml:"enable_networking"`
}

type fileContainerConfig struct {
	Image       string `toml:"image"`
	AutoBuild   bool   `toml:"auto_build"`
	Networking  bool   `toml:"networking"`
	SessionMode bool   `toml:"session_mode"`
}

type fileRemoteConfig struct {
	Host              string `toml:"host"`
	Port              int    `toml:"port"`
	User              string `toml:"user"`
	IdentityFile      string `toml:"identity_file"`
	ControlMux        bool   `toml:"control_mux"`
	ConnectTimeoutSec int    `toml:"connect_timeout_sec"`
}

// Load resolves configuration in order: built-in defaults, then
// bashlet.toml (if present), then environment variable overrides.
func Load() (Config, error) {
	file := fileConfig{
		DataDir:        defaultDataDir(),
		CacheDir:       defaultCacheDir(),
		DefaultBackend: "auto",
	}
	file.MicroVM.VCPUCount = 1
	file.Container.SessionMode = true

	path := configPath()
	if _, statErr := os.Stat(path); statErr == nil {
		if _, decodeErr := toml.DecodeFile(path, &file); decodeErr != nil {
			return Config{}, sandbox.NewTomlParse("parse "+path, decodeErr)
		}
	}

	applyEnvOverrides(&file)

	cfg := Config{
		DataDir:        file.DataDir,
		CacheDir:       file.CacheDir,
		DefaultBackend: file.DefaultBackend,
		LogLevel:       parseLogLevel(file.LogLevel),
		Backends: BackendsConfig{
			Wasm: sandbox.WasmConfig{
				RuntimeBinary: file.Wasm.RuntimeBinary,
				PackagePath:   file.Wasm.PackagePath,
			},
			MicroVM: sandbox.MicroVMConfig{
				HypervisorBinary: file.MicroVM.HypervisorBinary,
				KernelPath:       file.MicroVM.KernelPath,
				RootfsPath:       file.MicroVM.RootfsPath,
				VCPUCount:        file.MicroVM.VCPUCount,
				EnableNetworking: file.MicroVM.EnableNetworking,
			},
			Container: sandbox.ContainerConfig{
				Image:       file.Container.Image,
				AutoBuild:   file.Container.AutoBuild,
				Networking:  file.Container.Networking,
				SessionMode: file.Container.SessionMode,
			},
			Remote: sandbox.RemoteConfig{
				Host:              file.Remote.Host,
				Port:              file.Remote.Port,
				User:              file.Remote.User,
				IdentityFile:      file.Remote.IdentityFile,
				ControlMux:        file.Remote.ControlMux,
				ConnectTimeoutSec: file.Remote.ConnectTimeoutSec,
			},
		},
	}
	return cfg, nil
}

func configPath() string {
	if v := os.Getenv(envConfigFile); v != "" {
		return v
	}
	if p, lookErr := xdg.SearchConfigFile(configFileName); lookErr == nil {
		return p
	}
	return configFileName
}

func defaultDataDir() string {
	return xdg.DataHome + "/bashlet"
}

func defaultCacheDir() string {
	return xdg.CacheHome + "/bashlet"
}

func applyEnvOverrides(cfg *fileConfig) {
	if v := os.Getenv(envDataDir); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv(envCacheDir); v != "" {
		cfg.CacheDir = v
	}
	if v := os.Getenv(envBackend); v != "" {
		cfg.DefaultBackend = v
	}
	if v := os.Getenv(envLogLevel); v != "" {
		cfg.LogLevel = v
	}
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a structured JSON logger writing to w at the configured level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}
