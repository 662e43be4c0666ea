package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/seantiz/bashlet/internal/asset"
	"github.com/seantiz/bashlet/internal/config"
	"github.com/seantiz/bashlet/internal/sandbox"
	"github.com/seantiz/bashlet/internal/sandbox/container"
	"github.com/seantiz/bashlet/internal/sandbox/microvm"
	"github.com/seantiz/bashlet/internal/sandbox/remote"
	"github.com/seantiz/bashlet/internal/sandbox/wasm"
	"github.com/seantiz/bashlet/internal/session"
)

// app bundles everything a subcommand needs: resolved configuration, a
// logger, a backend factory wired with every kind, and the session store.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	assets  *asset.Manager
	factory *sandbox.Factory
	store   *session.Store
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := config.NewLogger(os.Stderr, cfg.LogLevel)
	assets := asset.NewManager(cfg.CacheDir)

	a := &app{
		cfg:     cfg,
		logger:  logger,
		assets:  assets,
		factory: sandbox.NewFactory(),
		store:   session.NewStore(cfg.DataDir),
	}
	a.registerBackends()
	return a, nil
}

// registerBackends wires every backend kind's availability probe and
// constructor into the factory. Construction closes over a background
// context because sandbox.Factory.Create has no ctx parameter of its own;
// asset downloads triggered during construction still honor ctx internally
// via the underlying http.Client.
func (a *app) registerBackends() {
	a.factory.RegisterKind(sandbox.KindMicroVM, microvm.Prober{}, func(cfg sandbox.BackendConfig) (sandbox.Backend, error) {
		return microvm.NewBackend(context.Background(), a.resolveMicroVMConfig(cfg), a.assets, a.logger)
	})
	a.factory.RegisterKind(sandbox.KindContainer, container.Prober{}, func(cfg sandbox.BackendConfig) (sandbox.Backend, error) {
		return container.NewBackend(context.Background(), a.resolveContainerConfig(cfg), a.logger)
	})
	a.factory.RegisterKind(sandbox.KindWasm, wasm.Prober{}, func(cfg sandbox.BackendConfig) (sandbox.Backend, error) {
		return wasm.NewBackend(context.Background(), a.resolveWasmConfig(cfg), a.assets, a.logger)
	})
	a.factory.RegisterKind(sandbox.KindRemote, remote.Prober{}, func(cfg sandbox.BackendConfig) (sandbox.Backend, error) {
		return remote.NewBackend(context.Background(), a.resolveRemoteConfig(cfg), a.logger)
	})
}

// resolve*Config returns the per-call BackendConfig's settings for that kind
// when a caller supplied them, otherwise the configuration file's settings
// for that kind; the two are not merged field by field.
func (a *app) resolveMicroVMConfig(cfg sandbox.BackendConfig) sandbox.MicroVMConfig {
	if cfg.MicroVM != nil {
		return *cfg.MicroVM
	}
	return a.cfg.Backends.MicroVM
}

func (a *app) resolveContainerConfig(cfg sandbox.BackendConfig) sandbox.ContainerConfig {
	if cfg.Container != nil {
		return *cfg.Container
	}
	return a.cfg.Backends.Container
}

func (a *app) resolveWasmConfig(cfg sandbox.BackendConfig) sandbox.WasmConfig {
	if cfg.Wasm != nil {
		return *cfg.Wasm
	}
	return a.cfg.Backends.Wasm
}

func (a *app) resolveRemoteConfig(cfg sandbox.BackendConfig) sandbox.RemoteConfig {
	if cfg.Remote != nil {
		return *cfg.Remote
	}
	return a.cfg.Backends.Remote
}

// backendKind resolves an explicit --backend flag value against the
// configured default.
func (a *app) backendKind(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return a.cfg.DefaultBackend
}
