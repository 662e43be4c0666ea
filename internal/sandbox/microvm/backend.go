// Package microvm implements the sandbox.Backend contract on top of a
// Firecracker microVM: a hand-rolled REST client configures and boots the
// VM, then every Execute/ReadFile/WriteFile call is an independent
// host-transport RPC over the guest's vsock UDS bridge.
package microvm

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/seantiz/bashlet/internal/asset"
	"github.com/seantiz/bashlet/internal/guestrpc"
	"github.com/seantiz/bashlet/internal/sandbox"
)

// Backend is one Firecracker microVM instance, Spawned and Configured once
// at construction and torn down by Shutdown.
type Backend struct {
	cfg        sandbox.MicroVMConfig
	logger     *slog.Logger
	netMgr     *NetworkManager
	instanceID string

	apiSocketPath string
	vsockUDSPath  string
	dir           string
	rootfsCopy    string

	mu      sync.Mutex
	cmd     *exec.Cmd
	running bool

	netCfg *NetworkConfig
}

// NewBackend spawns and boots a microVM per sandbox.MicroVMConfig, blocking
// until the guest agent's vsock bridge is reachable.
func NewBackend(ctx context.Context, cfg sandbox.MicroVMConfig, assets *asset.Manager, logger *slog.Logger) (*Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}

	hypervisorBin, err := assets.GetFirecrackerBinary(ctx, cfg.HypervisorBinary)
	if err != nil {
		return nil, err
	}
	kernelPath, err := assets.GetKernel(ctx, cfg.KernelPath)
	if err != nil {
		return nil, err
	}
	baseRootfs, err := assets.GetRootfs(ctx, cfg.RootfsPath)
	if err != nil {
		return nil, err
	}

	instanceID := fmt.Sprintf("vm-%x", time.Now().UnixMilli())
	dir, err := os.MkdirTemp("", "bashlet-"+instanceID+"-")
	if err != nil {
		return nil, sandbox.NewIO("create instance dir", err)
	}

	rootfsCopy, err := assets.CreateRootfsCopy("microvm", instanceID, baseRootfs)
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}

	b := &Backend{
		cfg:           cfg,
		logger:        logger,
		instanceID:    instanceID,
		apiSocketPath: filepath.Join(dir, "api.sock"),
		vsockUDSPath:  filepath.Join(dir, "vsock.sock"),
		dir:           dir,
		rootfsCopy:    rootfsCopy,
	}

	var netCfg *NetworkConfig
	if cfg.EnableNetworking {
		netMgr, err := NewNetworkManager(logger)
		if err != nil {
			b.cleanup(ctx)
			return nil, err
		}
		netCfg, err = netMgr.Setup(ctx, instanceID)
		if err != nil {
			b.cleanup(ctx)
			return nil, err
		}
		b.netMgr = netMgr
		b.netCfg = netCfg
	}

	if err := b.spawn(ctx, hypervisorBin); err != nil {
		b.cleanup(ctx)
		return nil, err
	}
	if err := b.waitForSocket(b.apiSocketPath, apiSocketPollInterval, apiSocketPollAttempts); err != nil {
		b.cleanup(ctx)
		return nil, sandbox.NewVMBootFailed("api socket never appeared: " + err.Error())
	}
	if err := b.configure(ctx, kernelPath, rootfsCopy); err != nil {
		b.cleanup(ctx)
		return nil, err
	}
	if err := b.start(ctx); err != nil {
		b.cleanup(ctx)
		return nil, err
	}
	if err := b.waitForSocket(b.vsockUDSPath, vsockSocketPollInterval, vsockSocketPollAttempts); err != nil {
		b.cleanup(ctx)
		return nil, sandbox.NewVMBootFailed("vsock socket never appeared: " + err.Error())
	}

	b.mu.Lock()
	b.running = true
	b.mu.Unlock()

	logger.Info("microvm started", "instance_id", instanceID)
	return b, nil
}

func (b *Backend) spawn(ctx context.Context, hypervisorBin string) error {
	cmd := exec.CommandContext(ctx, hypervisorBin, "--api-sock", b.apiSocketPath)
	if err := cmd.Start(); err != nil {
		return sandbox.NewVMBootFailed("spawn hypervisor: " + err.Error())
	}
	b.mu.Lock()
	b.cmd = cmd
	b.mu.Unlock()
	return nil
}

func (b *Backend) waitForSocket(path string, interval time.Duration, attempts int) error {
	for range attempts {
		if _, err := os.Stat(path); err == nil {
			return nil
		}
		time.Sleep(interval)
	}
	return fmt.Errorf("timed out waiting for %s", path)
}

func (b *Backend) configure(ctx context.Context, kernelPath, rootfsPath string) error {
	api := newAPIClient(b.apiSocketPath)

	if err := api.putBootSource(ctx, kernelPath, defaultBootArgs); err != nil {
		return err
	}

	vcpus := b.cfg.VCPUCount
	if vcpus <= 0 {
		vcpus = defaultVCPUCount
	}
	if err := api.putMachineConfig(ctx, vcpus, defaultMemSizeMib); err != nil {
		return err
	}

	if err := api.putDrive(ctx, rootfsDriveID, rootfsPath, true, false); err != nil {
		return err
	}

	if b.netCfg != nil {
		if err := api.putNetworkInterface(ctx, netIfaceID, b.netCfg.MACAddress, b.netCfg.TAPDevice); err != nil {
			return err
		}
	}

	if err := api.putVsock(ctx, guestCID, b.vsockUDSPath); err != nil {
		return err
	}

	return nil
}

func (b *Backend) start(ctx context.Context) error {
	api := newAPIClient(b.apiSocketPath)
	return api.putActions(ctx, "InstanceStart")
}

// Name returns "microvm".
func (b *Backend) Name() string { return Name }

// Capabilities reports microVM's capability profile.
func (b *Backend) Capabilities() sandbox.BackendCapabilities {
	return sandbox.BackendCapabilities{
		NativeLinux:  true,
		Networking:   b.cfg.EnableNetworking,
		PersistentFS: true,
	}
}

func (b *Backend) rpcClient() *guestrpc.Client {
	return guestrpc.NewClient(func() (net.Conn, error) {
		return dialGuestVsock(b.vsockUDSPath, guestVsockPort)
	})
}

// Execute runs cmd inside the guest via the vsock RPC transport.
func (b *Backend) Execute(ctx context.Context, cmd string, params sandbox.RuntimeParams) (sandbox.CommandResult, error) {
	resp, err := b.rpcClient().Execute(cmd, params.Workdir)
	if err != nil {
		return sandbox.CommandResult{}, sandbox.NewVMCommunication("execute", err)
	}
	return sandbox.CommandResult{
		Stdout:   resp.Stdout,
		Stderr:   resp.Stderr,
		ExitCode: resp.ExitCode,
	}, nil
}

// WriteFile writes content to path inside the guest via the native
// write_file RPC message.
func (b *Backend) WriteFile(ctx context.Context, path, content string) error {
	if err := b.rpcClient().WriteFile(path, content); err != nil {
		return sandbox.NewVMCommunication("write_file", err)
	}
	return nil
}

// ReadFile reads path's content from the guest via the native read_file
// RPC message.
func (b *Backend) ReadFile(ctx context.Context, path string) (string, error) {
	content, err := b.rpcClient().ReadFile(path)
	if err != nil {
		return "", sandbox.NewVMCommunication("read_file", err)
	}
	return content, nil
}

// ListDir lists path inside the guest, derived from Execute since the RPC
// schema has no dedicated list_dir message.
func (b *Backend) ListDir(ctx context.Context, path string) (string, error) {
	return sandbox.DeriveListDir(ctx, b, path)
}

// Info reports this instance's identity and running state, enriched with
// the hypervisor's own view of the VM when it's reachable.
func (b *Backend) Info(ctx context.Context) (sandbox.SandboxInfo, error) {
	b.mu.Lock()
	running := b.running
	b.mu.Unlock()

	metadata := map[string]string{
		"api_socket":   b.apiSocketPath,
		"vsock_socket": b.vsockUDSPath,
	}

	if running {
		if info, err := newAPIClient(b.apiSocketPath).getInfo(ctx); err == nil {
			metadata["hypervisor_state"] = info.State
			metadata["vmm_version"] = info.VMMVersion
		}
	}

	return sandbox.SandboxInfo{
		BackendType: Name,
		InstanceID:  b.instanceID,
		Running:     running,
		Metadata:    metadata,
	}, nil
}

// HealthCheck delegates to the default echo-based probe.
func (b *Backend) HealthCheck(ctx context.Context) (bool, error) {
	return sandbox.DefaultHealthCheck(ctx, b)
}

// Shutdown sends SendCtrlAltDel, waits briefly, then force-kills the
// hypervisor process and removes all instance-local files. Idempotent.
func (b *Backend) Shutdown(ctx context.Context) error {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return nil
	}
	b.running = false
	b.mu.Unlock()

	api := newAPIClient(b.apiSocketPath)
	_ = api.putActions(ctx, "SendCtrlAltDel")
	time.Sleep(shutdownSettleDelay)

	b.cleanup(ctx)
	return nil
}

func (b *Backend) cleanup(ctx context.Context) {
	b.mu.Lock()
	cmd := b.cmd
	b.mu.Unlock()

	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Kill()
		_, _ = cmd.Process.Wait()
	}

	if b.netMgr != nil {
		if err := b.netMgr.Teardown(ctx, b.instanceID); err != nil {
			b.logger.Warn("network teardown failed", "instance_id", b.instanceID, "error", err)
		}
	}

	if b.dir != "" {
		os.RemoveAll(b.dir)
	}
	if b.rootfsCopy != "" {
		os.Remove(b.rootfsCopy)
	}
}
