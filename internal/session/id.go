package session

import (
	"sync/atomic"
	"time"
)

const base36Chars = "0123456789abcdefghijklmnopqrstuvwxyz"

// counter is a process-wide tie-breaker for IDs minted within the same
// millisecond.
var counter uint32

// NewID returns a short, monotonic, collision-free-within-process session
// ID: base36 of (timestamp_ms low 24 bits << 8 | counter low 8 bits).
func NewID() string {
	return newIDAt(time.Now())
}

func newIDAt(t time.Time) string {
	c := atomic.AddUint32(&counter, 1) - 1
	combined := (uint64(t.UnixMilli())&0xFFFFFF)<<8 | uint64(c)&0xFF
	return formatBase36(combined)
}

// formatBase36 renders n in base36 using digits 0-9 then a-z.
func formatBase36(n uint64) string {
	if n == 0 {
		return "0"
	}

	var buf [32]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = base36Chars[n%36]
		n /= 36
	}
	return string(buf[i:])
}
