package container

import (
	"context"
	"time"
)

// Prober reports whether the Docker CLI is installed and the daemon is
// reachable, without starting a container.
type Prober struct{}

// Available runs `docker info` with a short timeout.
func (Prober) Available() (bool, string) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if !dockerAvailable(ctx) {
		return false, "docker daemon not accessible"
	}
	return true, ""
}

// Description is a short, static summary for diagnostic listings.
func (Prober) Description() string { return "Docker container sandbox" }
