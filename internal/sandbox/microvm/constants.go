package microvm

import "time"

const (
	// Name is the backend identifier registered with the factory.
	Name = "microvm"

	// guestVsockPort is the well-known port the guest agent listens on.
	guestVsockPort = 5000

	// guestCID is the conventional guest context ID. Firecracker bridges
	// vsock through a per-instance UDS, so every VM can safely reuse it.
	guestCID = 3

	rootfsDriveID = "rootfs"
	netIfaceID    = "eth0"

	apiSocketPollInterval = 100 * time.Millisecond
	apiSocketPollAttempts = 50

	vsockSocketPollInterval = 100 * time.Millisecond
	vsockSocketPollAttempts = 100

	shutdownSettleDelay = 500 * time.Millisecond

	defaultBootArgs = "console=ttyS0 reboot=k panic=1 pci=off"

	defaultVCPUCount  = 1
	defaultMemSizeMib = 512
)
