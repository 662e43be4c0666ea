package container

import (
	"context"
	"testing"

	"github.com/seantiz/bashlet/internal/sandbox"
)

func TestBuildRunArgsStatelessIncludesNetworkIsolationByDefault(t *testing.T) {
	args := buildRunArgs([]string{"run", "--rm"}, false, "myimage", sandbox.RuntimeParams{})
	if !contains(args, "--network=none") {
		t.Errorf("args = %v, want --network=none", args)
	}
	if args[len(args)-1] != "myimage" {
		t.Errorf("last arg = %q, want image name", args[len(args)-1])
	}
}

func TestBuildRunArgsNetworkingEnabledOmitsIsolationFlag(t *testing.T) {
	args := buildRunArgs([]string{"run", "--rm"}, true, "myimage", sandbox.RuntimeParams{})
	if contains(args, "--network=none") {
		t.Errorf("args = %v, want no --network=none", args)
	}
}

func TestBuildRunArgsIncludesMountsEnvAndWorkdir(t *testing.T) {
	params := sandbox.RuntimeParams{
		Mounts:   []sandbox.Mount{{HostPath: "/host", GuestPath: "/guest", ReadOnly: true}},
		Env:      []sandbox.EnvVar{{Key: "FOO", Value: "bar"}},
		Workdir:  "/work",
		MemoryMB: 256,
	}
	args := buildRunArgs([]string{"run", "--rm"}, false, "myimage", params)

	if !contains(args, "/host:/guest:ro") {
		t.Errorf("args = %v, want mount flag", args)
	}
	if !contains(args, "FOO=bar") {
		t.Errorf("args = %v, want env flag", args)
	}
	if !contains(args, "/work") {
		t.Errorf("args = %v, want workdir flag", args)
	}
	if !contains(args, "--memory=256m") {
		t.Errorf("args = %v, want memory flag", args)
	}
}

func TestBuildExecArgsOmitsMountsButKeepsWorkdirAndEnv(t *testing.T) {
	params := sandbox.RuntimeParams{
		Mounts:  []sandbox.Mount{{HostPath: "/host", GuestPath: "/guest"}},
		Env:     []sandbox.EnvVar{{Key: "FOO", Value: "bar"}},
		Workdir: "/work",
	}
	args := buildExecArgs("abc123", params)

	if contains(args, "-v") {
		t.Errorf("args = %v, exec should never carry -v", args)
	}
	if !contains(args, "FOO=bar") || !contains(args, "/work") {
		t.Errorf("args = %v, want env and workdir", args)
	}
	if args[len(args)-1] != "abc123" {
		t.Errorf("last arg = %q, want container id", args[len(args)-1])
	}
}

func TestCapabilitiesReflectSessionModeAndNetworking(t *testing.T) {
	b := &Backend{cfg: sandbox.ContainerConfig{Networking: true, SessionMode: true}}
	caps := b.Capabilities()
	if !caps.Networking || !caps.PersistentFS || !caps.NativeLinux {
		t.Errorf("Capabilities() = %+v", caps)
	}
}

func TestInfoStatelessReportsRunningWithoutContainerID(t *testing.T) {
	b := &Backend{cfg: sandbox.ContainerConfig{SessionMode: false}, image: "img"}
	info, err := b.Info(context.Background())
	if err != nil {
		t.Fatalf("Info() error = %v", err)
	}
	if !info.Running {
		t.Errorf("Info().Running = false, want true for stateless backend")
	}
	if info.InstanceID != "" {
		t.Errorf("InstanceID = %q, want empty before any session starts", info.InstanceID)
	}
}

func TestInfoSessionModeReportsNotRunningBeforeFirstExecute(t *testing.T) {
	b := &Backend{cfg: sandbox.ContainerConfig{SessionMode: true}, image: "img"}
	info, err := b.Info(context.Background())
	if err != nil {
		t.Fatalf("Info() error = %v", err)
	}
	if info.Running {
		t.Errorf("Info().Running = true, want false before session container starts")
	}
}

func TestShutdownWithNoSessionIsNoop(t *testing.T) {
	b := &Backend{cfg: sandbox.ContainerConfig{SessionMode: true}}
	if err := b.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
}

func TestEnsureSessionRejectsMissingMountPath(t *testing.T) {
	b := &Backend{cfg: sandbox.ContainerConfig{SessionMode: true}, image: "img"}
	params := sandbox.RuntimeParams{Mounts: []sandbox.Mount{{HostPath: "/does/not/exist", GuestPath: "/g"}}}

	_, err := b.ensureSession(context.Background(), params)
	if err == nil {
		t.Fatal("ensureSession() error = nil, want mount-path-not-found error")
	}
	sbErr, ok := err.(*sandbox.Error)
	if !ok || sbErr.Kind != sandbox.KindMountPathNotFound {
		t.Errorf("err = %v, want KindMountPathNotFound", err)
	}
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
