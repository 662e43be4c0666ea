package wasm

import (
	"context"
	"testing"

	"github.com/seantiz/bashlet/internal/sandbox"
)

func TestCapabilitiesAreAllFalse(t *testing.T) {
	b := &Backend{wasmerBinary: "wasmer", webcPath: "bash.webc"}
	caps := b.Capabilities()
	if caps.NativeLinux || caps.Networking || caps.PersistentFS {
		t.Errorf("Capabilities() = %+v, want all false", caps)
	}
}

func TestInfoReportsWebcPathAndAlwaysRunning(t *testing.T) {
	b := &Backend{wasmerBinary: "wasmer", webcPath: "/path/bash.webc"}
	info, err := b.Info(context.Background())
	if err != nil {
		t.Fatalf("Info() error = %v", err)
	}
	if !info.Running {
		t.Errorf("Info().Running = false, want true (wasm has no lifecycle)")
	}
	if info.Metadata["webc_path"] != "/path/bash.webc" {
		t.Errorf("Metadata[webc_path] = %q", info.Metadata["webc_path"])
	}
}

func TestExecuteRejectsMissingMountPath(t *testing.T) {
	b := &Backend{wasmerBinary: "wasmer", webcPath: "bash.webc"}
	params := sandbox.RuntimeParams{Mounts: []sandbox.Mount{{HostPath: "/does/not/exist", GuestPath: "/g"}}}

	_, err := b.Execute(context.Background(), "echo hi", params)
	if err == nil {
		t.Fatal("Execute() error = nil, want mount-path-not-found error")
	}
	sbErr, ok := err.(*sandbox.Error)
	if !ok || sbErr.Kind != sandbox.KindMountPathNotFound {
		t.Errorf("err = %v, want KindMountPathNotFound", err)
	}
}

func TestShutdownIsNoop(t *testing.T) {
	b := &Backend{}
	if err := b.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
}
