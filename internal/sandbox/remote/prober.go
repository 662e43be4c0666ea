package remote

import (
	"context"
	"time"
)

// Prober reports whether an ssh client binary is present. Unlike the other
// backends, remote is never part of auto-selection (connecting to an
// unconfigured host makes no sense); this only backs explicit-kind checks
// and the diagnostic listing.
type Prober struct{}

// Available runs `ssh -V` with a short timeout.
func (Prober) Available() (bool, string) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if !sshAvailable(ctx) {
		return false, "ssh client not found on PATH"
	}
	return true, ""
}

// Description is a short, static summary for diagnostic listings.
func (Prober) Description() string { return "Remote shell sandbox over SSH" }
