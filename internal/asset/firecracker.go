package asset

import (
	"context"
	"runtime"

	"github.com/seantiz/bashlet/internal/sandbox"
)

const (
	firecrackerVersion = "v1.10.1"

	defaultKernelURL = "https://s3.amazonaws.com/spec.ccfc.min/img/quickstart_guide/x86_64/kernels/vmlinux.bin"
	defaultRootfsURL = "https://s3.amazonaws.com/spec.ccfc.min/img/quickstart_guide/x86_64/rootfs/bionic.rootfs.ext4"
)

// GetKernel returns the Linux kernel image path, downloading the AWS
// quickstart kernel on a cache miss unless customPath is set.
func (m *Manager) GetKernel(ctx context.Context, customPath string) (string, error) {
	return m.GetFile(ctx, "microvm", "vmlinux.bin", defaultKernelURL, customPath)
}

// GetRootfs returns the base rootfs image path, downloading the AWS
// quickstart rootfs on a cache miss unless customPath is set.
func (m *Manager) GetRootfs(ctx context.Context, customPath string) (string, error) {
	return m.GetFile(ctx, "microvm", "rootfs.ext4", defaultRootfsURL, customPath)
}

// GetFirecrackerBinary resolves the firecracker hypervisor binary: PATH,
// then cache, then a GitHub release download matching the host architecture.
func (m *Manager) GetFirecrackerBinary(ctx context.Context, customPath string) (string, error) {
	url, err := firecrackerReleaseURL()
	if err != nil {
		return "", err
	}
	return m.GetRawBinary(ctx, "microvm", "firecracker", "--version", url, customPath)
}

func firecrackerReleaseURL() (string, error) {
	var arch string
	switch runtime.GOARCH {
	case "amd64":
		arch = "x86_64"
	case "arm64":
		arch = "aarch64"
	default:
		return "", sandbox.NewBackendNotAvailable("microvm", "unsupported architecture: "+runtime.GOARCH)
	}
	return "https://github.com/firecracker-microvm/firecracker/releases/download/" +
		firecrackerVersion + "/firecracker-" + firecrackerVersion + "-" + arch, nil
}
