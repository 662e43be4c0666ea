package microvm

import (
	"os"
	"runtime"
)

// Prober reports whether this host can run a Firecracker microVM: Linux
// with /dev/kvm accessible.
type Prober struct{}

// Available checks GOOS and /dev/kvm per original_source's
// resolve_backend_type/is_available gating.
func (Prober) Available() (bool, string) {
	if runtime.GOOS != "linux" {
		return false, "microVM backend is only available on Linux"
	}
	if _, err := os.Stat("/dev/kvm"); err != nil {
		return false, "requires Linux with KVM support (/dev/kvm)"
	}
	return true, ""
}

// Description is a short, static summary for diagnostic listings.
func (Prober) Description() string { return "MicroVM sandbox (Linux with KVM only)" }
