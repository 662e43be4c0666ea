package sandbox

import "context"

// Executor is the minimal capability derived file operations need. Backends
// without a native RPC for file access embed this pattern by calling the
// Derive* helpers from their own WriteFile/ReadFile/ListDir methods.
type Executor interface {
	Execute(ctx context.Context, cmd string, params RuntimeParams) (CommandResult, error)
}

// DeriveWriteFile implements write_file in terms of Execute, per the backend
// abstraction's default: printf '%s' '<escaped>' > '<path>'.
func DeriveWriteFile(ctx context.Context, e Executor, path, content string) error {
	res, err := e.Execute(ctx, WriteFileCommand(path, content), RuntimeParams{})
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return NewSandboxExecution("write_file failed: "+res.Stderr, nil)
	}
	return nil
}

// DeriveReadFile implements read_file in terms of Execute: cat '<path>'.
func DeriveReadFile(ctx context.Context, e Executor, path string) (string, error) {
	res, err := e.Execute(ctx, ReadFileCommand(path), RuntimeParams{})
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", NewSandboxExecution("read_file failed: "+res.Stderr, nil)
	}
	return res.Stdout, nil
}

// DeriveListDir implements list_dir in terms of Execute: ls -la '<path>'.
func DeriveListDir(ctx context.Context, e Executor, path string) (string, error) {
	res, err := e.Execute(ctx, ListDirCommand(path), RuntimeParams{})
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", NewSandboxExecution("list_dir failed: "+res.Stderr, nil)
	}
	return res.Stdout, nil
}
