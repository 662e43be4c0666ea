package guestexec

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestExecuteReturnsStdoutAndZeroExit(t *testing.T) {
	var h Handler
	exitCode, stdout, _, err := h.Execute("echo hello", "")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if exitCode != 0 {
		t.Errorf("exitCode = %d, want 0", exitCode)
	}
	if stdout != "hello\n" {
		t.Errorf("stdout = %q, want %q", stdout, "hello\n")
	}
}

func TestExecuteCapturesNonZeroExit(t *testing.T) {
	var h Handler
	exitCode, _, _, err := h.Execute("exit 7", "")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if exitCode != 7 {
		t.Errorf("exitCode = %d, want 7", exitCode)
	}
}

func TestExecuteRunsInWorkdir(t *testing.T) {
	var h Handler
	dir := t.TempDir()
	_, stdout, _, err := h.Execute("pwd", dir)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	got, err2 := filepath.EvalSymlinks(strings.TrimSpace(stdout))
	want, err3 := filepath.EvalSymlinks(dir)
	if err2 == nil && err3 == nil && got != want {
		t.Errorf("pwd = %q, want %q", got, want)
	}
}

func TestExecuteDefaultsEmptyWorkdirToRoot(t *testing.T) {
	var h Handler
	_, stdout, _, err := h.Execute("pwd", "")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got := strings.TrimSpace(stdout); got != "/" {
		t.Errorf("pwd = %q, want %q", got, "/")
	}
}

func TestWriteFileThenReadFileRoundTrips(t *testing.T) {
	var h Handler
	path := filepath.Join(t.TempDir(), "test.txt")

	if err := h.WriteFile(path, "hello world"); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	got, err := h.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if got != "hello world" {
		t.Errorf("ReadFile() = %q, want %q", got, "hello world")
	}
}

func TestReadFileMissingReturnsError(t *testing.T) {
	var h Handler
	if _, err := h.ReadFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatal("ReadFile() error = nil, want not-exist error")
	}
}
