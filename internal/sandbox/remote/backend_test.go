package remote

import (
	"testing"

	"github.com/seantiz/bashlet/internal/sandbox"
)

func TestBuildRemoteCommandJoinsExportCdAndCommand(t *testing.T) {
	params := sandbox.RuntimeParams{
		Env:     []sandbox.EnvVar{{Key: "FOO", Value: "it's fine"}},
		Workdir: "/work",
	}
	got := buildRemoteCommand("echo hi", params)
	want := `export FOO='it'"'"'s fine'; cd '/work' 2>/dev/null || true; echo hi`
	if got != want {
		t.Errorf("buildRemoteCommand() = %q, want %q", got, want)
	}
}

func TestBuildRemoteCommandWithNoEnvOrWorkdirIsJustTheCommand(t *testing.T) {
	got := buildRemoteCommand("echo hi", sandbox.RuntimeParams{})
	if got != "echo hi" {
		t.Errorf("buildRemoteCommand() = %q, want %q", got, "echo hi")
	}
}

func TestDestinationFormatsUserAtHost(t *testing.T) {
	b := &Backend{cfg: sandbox.RemoteConfig{User: "alice", Host: "example.com"}}
	if got := b.destination(); got != "alice@example.com" {
		t.Errorf("destination() = %q", got)
	}
}

func TestControlSocketPathIncludesUserHostAndPID(t *testing.T) {
	b := &Backend{cfg: sandbox.RemoteConfig{User: "alice", Host: "example.com"}}
	path := b.controlSocketPath()
	if path == "" {
		t.Fatal("controlSocketPath() returned empty string")
	}
}

func TestConnectionArgsIncludesIdentityFileWhenSet(t *testing.T) {
	b := &Backend{cfg: sandbox.RemoteConfig{Port: 2222, ConnectTimeoutSec: 5, IdentityFile: "/key"}}
	args := b.connectionArgs()
	if !contains(args, "-i") || !contains(args, "/key") {
		t.Errorf("connectionArgs() = %v, want identity file flag", args)
	}
	if !contains(args, "2222") {
		t.Errorf("connectionArgs() = %v, want port", args)
	}
}

func TestCapabilitiesAssumeLinuxNetworkedPersistent(t *testing.T) {
	b := &Backend{}
	caps := b.Capabilities()
	if !caps.NativeLinux || !caps.Networking || !caps.PersistentFS {
		t.Errorf("Capabilities() = %+v, want all true", caps)
	}
}

func TestShutdownWithoutControlMuxIsNoop(t *testing.T) {
	b := &Backend{cfg: sandbox.RemoteConfig{ControlMux: false}}
	if err := b.Shutdown(nil); err != nil { //nolint:staticcheck // ctx unused on the no-op path
		t.Fatalf("Shutdown() error = %v", err)
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
