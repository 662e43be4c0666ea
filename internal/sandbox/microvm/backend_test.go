package microvm

import (
	"context"
	"testing"
	"time"

	"github.com/seantiz/bashlet/internal/sandbox"
)

func TestBackendImplementsInterface(t *testing.T) {
	var _ sandbox.Backend = (*Backend)(nil)
}

func TestBackendName(t *testing.T) {
	b := &Backend{}
	if b.Name() != Name {
		t.Errorf("Name() = %q, want %q", b.Name(), Name)
	}
}

func TestCapabilities(t *testing.T) {
	b := &Backend{cfg: sandbox.MicroVMConfig{EnableNetworking: true}}

	caps := b.Capabilities()
	if !caps.NativeLinux {
		t.Error("NativeLinux = false, want true")
	}
	if !caps.PersistentFS {
		t.Error("PersistentFS = false, want true")
	}
	if !caps.Networking {
		t.Error("Networking = false, want true (EnableNetworking set)")
	}
}

func TestCapabilitiesNetworkingDisabled(t *testing.T) {
	b := &Backend{cfg: sandbox.MicroVMConfig{EnableNetworking: false}}

	if b.Capabilities().Networking {
		t.Error("Networking = true, want false (EnableNetworking unset)")
	}
}

func TestInfoReportsInstanceState(t *testing.T) {
	b := &Backend{
		instanceID:    "vm-test",
		apiSocketPath: "/tmp/api.sock",
		vsockUDSPath:  "/tmp/vsock.sock",
		running:       true,
	}

	info, err := b.Info(context.Background())
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.BackendType != Name {
		t.Errorf("BackendType = %q, want %q", info.BackendType, Name)
	}
	if info.InstanceID != "vm-test" {
		t.Errorf("InstanceID = %q, want %q", info.InstanceID, "vm-test")
	}
	if !info.Running {
		t.Error("Running = false, want true")
	}
	if info.Metadata["api_socket"] != "/tmp/api.sock" {
		t.Errorf("Metadata[api_socket] = %q", info.Metadata["api_socket"])
	}
}

func TestShutdownIdempotentWhenNotRunning(t *testing.T) {
	b := &Backend{running: false}

	if err := b.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown on non-running backend: %v", err)
	}
}

func TestWaitForSocketTimesOut(t *testing.T) {
	b := &Backend{}

	err := b.waitForSocket("/nonexistent/path/to/socket", time.Millisecond, 3)
	if err == nil {
		t.Fatal("expected timeout error for a socket that never appears")
	}
}
