package microvm

import (
	"runtime"
	"testing"
)

func TestProberRejectsNonLinux(t *testing.T) {
	if runtime.GOOS == "linux" {
		t.Skip("only meaningful on a non-Linux GOOS")
	}
	available, reason := (Prober{}).Available()
	if available || reason == "" {
		t.Errorf("Available() = (%v, %q), want (false, non-empty)", available, reason)
	}
}
