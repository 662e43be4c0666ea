// Package session implements the durable, named, TTL-bounded session store:
// one pretty-printed JSON record per file under <data_dir>/sessions/.
package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/seantiz/bashlet/internal/sandbox"
)

// Store persists Records as one JSON file per session under dataDir/sessions.
type Store struct {
	sessionsDir string
}

// NewStore creates a Store rooted at dataDir.
func NewStore(dataDir string) *Store {
	return &Store{sessionsDir: filepath.Join(dataDir, "sessions")}
}

func (s *Store) path(id string) string {
	return filepath.Join(s.sessionsDir, id+".json")
}

func (s *Store) ensureDir() error {
	if err := os.MkdirAll(s.sessionsDir, 0o755); err != nil {
		return sandbox.NewIO("create sessions dir", err)
	}
	return nil
}

// Save writes r to disk, atomically via write-to-temp-then-rename. A new
// record whose Name collides with another non-expired record's Name fails
// with SessionNameExists; a name held only by an expired record is free to
// reuse.
func (s *Store) Save(r *Record) error {
	if err := s.ensureDir(); err != nil {
		return err
	}

	if r.Name != "" {
		if existing, err := s.findActiveByName(r.Name); err == nil && existing.ID != r.ID {
			return sandbox.NewSessionNameExists(r.Name)
		}
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return sandbox.NewJSON("marshal session", err)
	}

	final := s.path(r.ID)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return sandbox.NewIO("write session file", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		return sandbox.NewIO("rename session file", err)
	}
	return nil
}

// Get looks up a session by ID first, then by name. Expired records found
// on either path are deleted and SessionExpired is returned.
func (s *Store) Get(idOrName string) (*Record, error) {
	if err := s.ensureDir(); err != nil {
		return nil, err
	}

	if r, err := s.readFile(s.path(idOrName)); err == nil {
		if r.IsExpired() {
			_ = s.Delete(r.ID)
			return nil, sandbox.NewSessionExpired(idOrName)
		}
		return r, nil
	}

	r, err := s.findByName(idOrName)
	if err != nil {
		return nil, sandbox.NewSessionNotFound(idOrName)
	}
	if r.IsExpired() {
		_ = s.Delete(r.ID)
		return nil, sandbox.NewSessionExpired(idOrName)
	}
	return r, nil
}

// Delete removes a session by ID first, then by name.
func (s *Store) Delete(idOrName string) error {
	path := s.path(idOrName)
	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(path); err != nil {
			return sandbox.NewIO("delete session file", err)
		}
		return nil
	}

	r, err := s.findByName(idOrName)
	if err != nil {
		return sandbox.NewSessionNotFound(idOrName)
	}
	if err := os.Remove(s.path(r.ID)); err != nil {
		return sandbox.NewIO("delete session file", err)
	}
	return nil
}

// List reads every session file, skips unparseable ones, and returns them
// sorted by CreatedAtEpochS descending (newest first).
func (s *Store) List() ([]*Record, error) {
	if err := s.ensureDir(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.sessionsDir)
	if err != nil {
		return nil, sandbox.NewIO("read sessions dir", err)
	}

	records := make([]*Record, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		r, err := s.readFile(filepath.Join(s.sessionsDir, entry.Name()))
		if err != nil {
			continue
		}
		records = append(records, r)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAtEpochS > records[j].CreatedAtEpochS
	})
	return records, nil
}

// CleanupExpired deletes every expired session and returns the count removed.
func (s *Store) CleanupExpired() (int, error) {
	records, err := s.List()
	if err != nil {
		return 0, err
	}

	cleaned := 0
	for _, r := range records {
		if r.IsExpired() {
			if err := s.Delete(r.ID); err == nil {
				cleaned++
			}
		}
	}
	return cleaned, nil
}

// Touch loads a session, updates its last-activity timestamp, and saves it.
func (s *Store) Touch(idOrName string) error {
	r, err := s.Get(idOrName)
	if err != nil {
		return err
	}
	r.Touch()
	return s.Save(r)
}

func (s *Store) findByName(name string) (*Record, error) {
	records, err := s.List()
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if r.Name == name {
			return r, nil
		}
	}
	return nil, sandbox.NewSessionNotFound(name)
}

// findActiveByName is like findByName but ignores expired records, so a
// name held only by an expired session is free to reuse (spec invariant 2
// scopes name uniqueness to non-expired sessions).
func (s *Store) findActiveByName(name string) (*Record, error) {
	records, err := s.List()
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if r.Name == name && !r.IsExpired() {
			return r, nil
		}
	}
	return nil, sandbox.NewSessionNotFound(name)
}

func (s *Store) readFile(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
