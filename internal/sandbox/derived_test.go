package sandbox_test

import (
	"context"
	"strings"
	"testing"

	"github.com/seantiz/bashlet/internal/sandbox"
)

// recordingExecutor captures the last command it was asked to execute and
// returns a canned result.
type recordingExecutor struct {
	lastCmd string
	result  sandbox.CommandResult
	err     error
}

func (r *recordingExecutor) Execute(_ context.Context, cmd string, _ sandbox.RuntimeParams) (sandbox.CommandResult, error) {
	r.lastCmd = cmd
	return r.result, r.err
}

func TestDeriveWriteFileBuildsPrintfCommand(t *testing.T) {
	exec := &recordingExecutor{result: sandbox.CommandResult{ExitCode: 0}}
	if err := sandbox.DeriveWriteFile(context.Background(), exec, "/tmp/f", "hello"); err != nil {
		t.Fatalf("DeriveWriteFile() error = %v", err)
	}
	if !strings.HasPrefix(exec.lastCmd, "printf '%s'") {
		t.Errorf("command = %q, want printf prefix", exec.lastCmd)
	}
}

func TestDeriveReadFileReturnsStdout(t *testing.T) {
	exec := &recordingExecutor{result: sandbox.CommandResult{ExitCode: 0, Stdout: "contents"}}
	got, err := sandbox.DeriveReadFile(context.Background(), exec, "/tmp/f")
	if err != nil {
		t.Fatalf("DeriveReadFile() error = %v", err)
	}
	if got != "contents" {
		t.Errorf("DeriveReadFile() = %q, want %q", got, "contents")
	}
	if exec.lastCmd != "cat '/tmp/f'" {
		t.Errorf("command = %q, want %q", exec.lastCmd, "cat '/tmp/f'")
	}
}

func TestDeriveListDirNonZeroExitIsError(t *testing.T) {
	exec := &recordingExecutor{result: sandbox.CommandResult{ExitCode: 2, Stderr: "no such file"}}
	_, err := sandbox.DeriveListDir(context.Background(), exec, "/missing")
	if err == nil {
		t.Fatal("DeriveListDir() error = nil, want non-nil on non-zero exit")
	}
}
