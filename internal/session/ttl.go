package session

import (
	"strconv"
	"strings"

	"github.com/seantiz/bashlet/internal/sandbox"
)

// ParseTTL parses a TTL string of the form <N>[s|m|h|d] (default unit:
// seconds). Empty or unparseable input returns a Config error.
func ParseTTL(s string) (int64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, sandbox.NewConfig("empty TTL value")
	}

	numStr := s
	var multiplier int64 = 1
	switch {
	case strings.HasSuffix(s, "s"):
		numStr, multiplier = s[:len(s)-1], 1
	case strings.HasSuffix(s, "m"):
		numStr, multiplier = s[:len(s)-1], 60
	case strings.HasSuffix(s, "h"):
		numStr, multiplier = s[:len(s)-1], 3600
	case strings.HasSuffix(s, "d"):
		numStr, multiplier = s[:len(s)-1], 86400
	}

	num, err := strconv.ParseInt(numStr, 10, 64)
	if err != nil {
		return 0, sandbox.NewConfig("invalid TTL value: " + s)
	}

	return num * multiplier, nil
}
