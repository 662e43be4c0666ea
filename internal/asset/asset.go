// Package asset resolves and caches the binary artifacts a sandbox backend
// needs at runtime: hypervisor binaries, kernel images, rootfs images, and
// WASM runtime binaries. An explicitly configured path wins; otherwise
// runtime binaries are looked up in system PATH, and every artifact is then
// looked up in an on-disk cache and downloaded on a cache miss. Kernel,
// rootfs and package files are not searched for in PATH.
package asset

import (
	"archive/tar"
	"context"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	gzip "github.com/klauspost/compress/gzip"
	"github.com/schollz/progressbar/v3"

	"github.com/seantiz/bashlet/internal/sandbox"
)

// Manager locates and caches downloadable sandbox artifacts under a single
// cache root, one subdirectory per backend.
type Manager struct {
	cacheDir   string
	httpClient *http.Client
}

// NewManager creates a Manager rooted at cacheDir (e.g. config.Config.CacheDir).
func NewManager(cacheDir string) *Manager {
	return &Manager{cacheDir: cacheDir, httpClient: &http.Client{}}
}

func (m *Manager) backendDir(backend string) string {
	return filepath.Join(m.cacheDir, backend)
}

// GetFile returns customPath if set and it exists, a cached copy at
// cachedName if present, or downloads from url into the cache.
func (m *Manager) GetFile(ctx context.Context, backend, cachedName, url, customPath string) (string, error) {
	if customPath != "" {
		if _, err := os.Stat(customPath); err == nil {
			return customPath, nil
		}
		return "", sandbox.NewAssetDownload(customPath, os.ErrNotExist)
	}

	dir := m.backendDir(backend)
	cached := filepath.Join(dir, cachedName)
	if _, err := os.Stat(cached); err == nil {
		return cached, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", sandbox.NewIO("create cache dir", err)
	}
	if err := m.download(ctx, url, cached); err != nil {
		return "", err
	}
	return cached, nil
}

// GetArchivedBinary resolves an executable: first in $PATH (verified by
// running versionArg), then in the cache, then downloaded as a tar.gz
// archive and extracted, with extractedRelPath locating the binary inside
// the archive.
func (m *Manager) GetArchivedBinary(ctx context.Context, backend, name, versionArg, url, extractedRelPath, customPath string) (string, error) {
	return m.getBinary(ctx, backend, name, versionArg, customPath, func(dir string) (string, error) {
		archivePath := filepath.Join(dir, name+".tar.gz")
		if err := m.download(ctx, url, archivePath); err != nil {
			return "", err
		}
		defer os.Remove(archivePath)

		extractDir := filepath.Join(dir, "extract-"+name)
		defer os.RemoveAll(extractDir)
		if err := extractTarGz(archivePath, extractDir); err != nil {
			return "", err
		}
		return filepath.Join(extractDir, extractedRelPath), nil
	})
}

// GetRawBinary resolves an executable the same way as GetArchivedBinary, but
// for releases published as a single unwrapped binary rather than an archive.
func (m *Manager) GetRawBinary(ctx context.Context, backend, name, versionArg, url, customPath string) (string, error) {
	return m.getBinary(ctx, backend, name, versionArg, customPath, func(dir string) (string, error) {
		downloaded := filepath.Join(dir, name+".download")
		if err := m.download(ctx, url, downloaded); err != nil {
			return "", err
		}
		return downloaded, nil
	})
}

// fetch downloads (by whatever means) and returns the path to the binary
// before it has been moved into its final cached location.
func (m *Manager) getBinary(ctx context.Context, backend, name, versionArg, customPath string, fetch func(dir string) (string, error)) (string, error) {
	if customPath != "" {
		if _, err := os.Stat(customPath); err == nil {
			return customPath, nil
		}
		return "", sandbox.NewAssetDownload(customPath, os.ErrNotExist)
	}

	if path, err := exec.LookPath(name); err == nil {
		if runBinaryCheck(path, versionArg) {
			return path, nil
		}
	}

	dir := m.backendDir(backend)
	cached := filepath.Join(dir, name)
	if _, err := os.Stat(cached); err == nil && runBinaryCheck(cached, versionArg) {
		return cached, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", sandbox.NewIO("create cache dir", err)
	}

	fetched, err := fetch(dir)
	if err != nil {
		return "", err
	}
	if err := os.Rename(fetched, cached); err != nil {
		return "", sandbox.NewIO("move downloaded binary", err)
	}
	if err := os.Chmod(cached, 0o755); err != nil {
		return "", sandbox.NewIO("chmod binary", err)
	}
	if !runBinaryCheck(cached, versionArg) {
		return "", sandbox.NewAssetDownload(cached, nil)
	}

	return cached, nil
}

// CreateRootfsCopy produces a per-instance writable copy of source, using
// `cp --reflink=auto` for copy-on-write where the filesystem supports it and
// falling back to a full copy otherwise.
func (m *Manager) CreateRootfsCopy(backend, instanceID, source string) (string, error) {
	instancesDir := filepath.Join(m.backendDir(backend), "instances")
	if err := os.MkdirAll(instancesDir, 0o755); err != nil {
		return "", sandbox.NewIO("create instances dir", err)
	}
	dest := filepath.Join(instancesDir, instanceID+".rootfs.ext4")

	if runtime.GOOS == "linux" {
		cmd := exec.Command("cp", "--reflink=auto", source, dest)
		if err := cmd.Run(); err == nil {
			return dest, nil
		}
	}

	if err := copyFile(source, dest); err != nil {
		return "", sandbox.NewIO("copy rootfs", err)
	}
	return dest, nil
}

func runBinaryCheck(path, versionArg string) bool {
	cmd := exec.Command(path, versionArg)
	return cmd.Run() == nil
}

func (m *Manager) download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return sandbox.NewAssetDownload(url, err)
	}
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return sandbox.NewAssetDownload(url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return sandbox.NewAssetDownload(url, nil)
	}

	out, err := os.Create(dest)
	if err != nil {
		return sandbox.NewIO("create asset file", err)
	}
	defer out.Close()

	bar := progressbar.DefaultBytes(resp.ContentLength, "downloading "+filepath.Base(dest))
	if _, err := io.Copy(io.MultiWriter(out, bar), resp.Body); err != nil {
		return sandbox.NewAssetDownload(url, err)
	}
	return nil
}

func extractTarGz(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return sandbox.NewIO("open archive", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return sandbox.NewIO("open gzip stream", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return sandbox.NewIO("read tar entry", err)
		}

		cleanName := filepath.Clean(hdr.Name)
		if strings.HasPrefix(cleanName, "..") {
			continue
		}
		target := filepath.Join(destDir, cleanName)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return sandbox.NewIO("mkdir "+cleanName, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return sandbox.NewIO("mkdir "+cleanName, err)
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode))
			if err != nil {
				return sandbox.NewIO("create "+cleanName, err)
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return sandbox.NewIO("write "+cleanName, err)
			}
			out.Close()
		}
	}
	return nil
}

func copyFile(source, dest string) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
