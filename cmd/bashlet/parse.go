package main

import (
	"fmt"
	"strings"

	"github.com/seantiz/bashlet/internal/sandbox"
)

// parseMounts parses "host:guest" or "host:guest:ro"/"host:guest:rw"
// entries into sandbox.Mount values. Mode defaults to rw when omitted.
func parseMounts(specs []string) ([]sandbox.Mount, error) {
	mounts := make([]sandbox.Mount, 0, len(specs))
	for _, spec := range specs {
		parts := strings.Split(spec, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("invalid --mount %q: expected host:guest or host:guest:ro|rw", spec)
		}
		readOnly := false
		if len(parts) == 3 {
			switch parts[2] {
			case "ro":
				readOnly = true
			case "rw":
				readOnly = false
			default:
				return nil, fmt.Errorf("invalid --mount %q: mode must be ro or rw", spec)
			}
		}
		mounts = append(mounts, sandbox.Mount{
			HostPath:  parts[0],
			GuestPath: parts[1],
			ReadOnly:  readOnly,
		})
	}
	return mounts, nil
}

// parseEnv parses "KEY=VALUE" entries into sandbox.EnvVar values, preserving
// the order given on the command line.
func parseEnv(specs []string) ([]sandbox.EnvVar, error) {
	env := make([]sandbox.EnvVar, 0, len(specs))
	for _, spec := range specs {
		key, value, ok := strings.Cut(spec, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --env %q: expected KEY=VALUE", spec)
		}
		env = append(env, sandbox.EnvVar{Key: key, Value: value})
	}
	return env, nil
}
