package asset

import (
	"context"
	"runtime"

	"github.com/seantiz/bashlet/internal/sandbox"
)

const wasmerVersion = "v6.0.0"

// defaultWebcURL is the Wasmer registry's prebuilt bash WEBC package, used
// when no custom WasmConfig.PackagePath is configured.
const defaultWebcURL = "https://cdn.wasmer.io/webcimages/6616eee914dd95cb9751a0ef1d17a908055176781bc0b6090e33da5bbc325417.webc"

// GetWasmerBinary resolves the wasmer runtime binary: PATH, then cache,
// then a GitHub release tarball matching the host OS/architecture.
func (m *Manager) GetWasmerBinary(ctx context.Context, customPath string) (string, error) {
	url, err := wasmerReleaseURL()
	if err != nil {
		return "", err
	}
	return m.GetArchivedBinary(ctx, "wasm", "wasmer", "--version", url, "bin/wasmer", customPath)
}

// GetDefaultWebcPackage downloads (or reuses the cached copy of) the
// default bash WEBC package, used when WasmConfig.PackagePath is unset.
func (m *Manager) GetDefaultWebcPackage(ctx context.Context) (string, error) {
	return m.GetFile(ctx, "wasm", "bash.webc", defaultWebcURL, "")
}

func wasmerReleaseURL() (string, error) {
	var osStr string
	switch runtime.GOOS {
	case "linux":
		osStr = "linux"
	case "darwin":
		osStr = "darwin"
	default:
		return "", sandbox.NewBackendNotAvailable("wasm", "unsupported OS: "+runtime.GOOS)
	}

	var archStr string
	switch runtime.GOARCH {
	case "amd64":
		archStr = "amd64"
	case "arm64":
		archStr = "aarch64"
	default:
		return "", sandbox.NewBackendNotAvailable("wasm", "unsupported architecture: "+runtime.GOARCH)
	}

	return "https://github.com/wasmerio/wasmer/releases/download/" + wasmerVersion +
		"/wasmer-" + wasmerVersion + "-" + osStr + "-" + archStr + ".tar.gz", nil
}
