package session

import (
	"time"

	"github.com/seantiz/bashlet/internal/sandbox"
)

// Record is a named, TTL-bounded handle binding a configuration to a
// potentially long-lived backend instance.
type Record struct {
	ID                 string           `json:"id"`
	Name               string           `json:"name,omitempty"`
	Mounts             []sandbox.Mount  `json:"mounts"`
	Env                []sandbox.EnvVar `json:"env"`
	Workdir            string           `json:"workdir"`
	WasmBinary         string           `json:"wasm_binary,omitempty"`
	CreatedAtEpochS    int64            `json:"created_at_epoch_s"`
	LastActivityEpochS int64            `json:"last_activity_epoch_s"`
	TTLSeconds         *int64           `json:"ttl_s,omitempty"`
}

// NewRecord creates a Record with a fresh ID and both timestamps set to now.
func NewRecord(name, workdir string, mounts []sandbox.Mount, env []sandbox.EnvVar, wasmBinary string, ttlSeconds *int64) *Record {
	now := time.Now().Unix()
	return &Record{
		ID:                 NewID(),
		Name:               name,
		Mounts:             mounts,
		Env:                env,
		Workdir:            workdir,
		WasmBinary:         wasmBinary,
		CreatedAtEpochS:    now,
		LastActivityEpochS: now,
		TTLSeconds:         ttlSeconds,
	}
}

// IsExpired reports whether the session's TTL, if set, has elapsed:
// ttl_s.is_some() && now > last_activity + ttl_s.
func (r *Record) IsExpired() bool {
	if r.TTLSeconds == nil {
		return false
	}
	return time.Now().Unix() > r.LastActivityEpochS+*r.TTLSeconds
}

// Touch updates LastActivityEpochS to now.
func (r *Record) Touch() {
	r.LastActivityEpochS = time.Now().Unix()
}

// DisplayID returns the session's name if set, else its ID.
func (r *Record) DisplayID() string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID
}
