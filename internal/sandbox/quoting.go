package sandbox

import "strings"

// ShellQuoteSingle renders s as a single-quoted shell argument, escaping
// backslashes and embedded single quotes. A literal `\` is escaped first
// (doubled), then each `'` is closed out of the quoted string, emitted as
// an escaped literal quote, and the quoting reopened — the only correct way
// to embed a single quote inside a single-quoted argument.
func ShellQuoteSingle(s string) string {
	escaped := strings.ReplaceAll(s, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `'`, `'"'"'`)
	return "'" + escaped + "'"
}

// WriteFileCommand builds the shell command the derived WriteFile operation
// sends to a backend's Execute.
func WriteFileCommand(path, content string) string {
	return "printf '%s' " + ShellQuoteSingle(content) + " > " + ShellQuoteSingle(path)
}

// ReadFileCommand builds the shell command the derived ReadFile operation
// sends to a backend's Execute.
func ReadFileCommand(path string) string {
	return "cat " + ShellQuoteSingle(path)
}

// ListDirCommand builds the shell command the derived ListDir operation
// sends to a backend's Execute.
func ListDirCommand(path string) string {
	return "ls -la " + ShellQuoteSingle(path)
}
