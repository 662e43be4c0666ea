package session

import (
	"testing"
	"time"

	"github.com/seantiz/bashlet/internal/sandbox"
)

func ttl(seconds int64) *int64 {
	return &seconds
}

func TestStoreSaveGetRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())
	r := NewRecord("", "/work", nil, nil, "", nil)

	if err := store.Save(r); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Get(r.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != r.ID || got.Workdir != r.Workdir {
		t.Errorf("Get() = %+v, want %+v", got, r)
	}
}

func TestStoreGetByName(t *testing.T) {
	store := NewStore(t.TempDir())
	r := NewRecord("env1", "/work", nil, nil, "", ttl(30))
	if err := store.Save(r); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Get("env1")
	if err != nil {
		t.Fatalf("Get(name) error = %v", err)
	}
	if got.ID != r.ID {
		t.Errorf("Get(name).ID = %q, want %q", got.ID, r.ID)
	}
	if got.TTLSeconds == nil || *got.TTLSeconds != 30 {
		t.Errorf("Get(name).TTLSeconds = %v, want 30", got.TTLSeconds)
	}
}

func TestStoreListSortedNewestFirst(t *testing.T) {
	store := NewStore(t.TempDir())
	older := NewRecord("older", "/work", nil, nil, "", nil)
	older.CreatedAtEpochS = 100
	newer := NewRecord("newer", "/work", nil, nil, "", nil)
	newer.CreatedAtEpochS = 200

	if err := store.Save(older); err != nil {
		t.Fatalf("Save(older) error = %v", err)
	}
	if err := store.Save(newer); err != nil {
		t.Fatalf("Save(newer) error = %v", err)
	}

	records, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("List() returned %d records, want 2", len(records))
	}
	if records[0].Name != "newer" || records[1].Name != "older" {
		t.Errorf("List() order = [%s, %s], want [newer, older]", records[0].Name, records[1].Name)
	}
}

func TestStoreGetExpiredDeletesAndReturnsExpiredError(t *testing.T) {
	store := NewStore(t.TempDir())
	r := NewRecord("tmp", "/work", nil, nil, "", ttl(1))
	r.LastActivityEpochS = time.Now().Unix() - 10
	if err := store.Save(r); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	_, err := store.Get("tmp")
	if err == nil {
		t.Fatal("Get() error = nil, want SessionExpired")
	}
	sbErr, ok := err.(*sandbox.Error)
	if !ok || sbErr.Kind != sandbox.KindSessionExpired {
		t.Fatalf("Get() error = %v, want SessionExpired", err)
	}

	if _, err := store.Get("tmp"); err == nil {
		t.Fatal("Get() after expiry cleanup error = nil, want SessionNotFound")
	}
}

func TestStoreSaveDuplicateNameRejected(t *testing.T) {
	store := NewStore(t.TempDir())
	first := NewRecord("dup", "/work", nil, nil, "", nil)
	second := NewRecord("dup", "/work", nil, nil, "", nil)

	if err := store.Save(first); err != nil {
		t.Fatalf("Save(first) error = %v", err)
	}
	err := store.Save(second)
	if err == nil {
		t.Fatal("Save(second) error = nil, want SessionNameExists")
	}
	sbErr, ok := err.(*sandbox.Error)
	if !ok || sbErr.Kind != sandbox.KindSessionNameExists {
		t.Fatalf("Save(second) error = %v, want SessionNameExists", err)
	}
}

func TestStoreSaveReusesExpiredName(t *testing.T) {
	store := NewStore(t.TempDir())
	expired := NewRecord("env1", "/work", nil, nil, "", ttl(1))
	expired.CreatedAtEpochS = 100
	expired.LastActivityEpochS = time.Now().Unix() - 10
	if err := store.Save(expired); err != nil {
		t.Fatalf("Save(expired) error = %v", err)
	}

	fresh := NewRecord("env1", "/work", nil, nil, "", nil)
	fresh.CreatedAtEpochS = 200
	if err := store.Save(fresh); err != nil {
		t.Fatalf("Save(fresh) error = %v, want success reusing an expired name", err)
	}

	got, err := store.Get("env1")
	if err != nil {
		t.Fatalf("Get(env1) error = %v", err)
	}
	if got.ID != fresh.ID {
		t.Errorf("Get(env1).ID = %q, want %q (the fresh record)", got.ID, fresh.ID)
	}
}

func TestStoreDeleteByNameAndID(t *testing.T) {
	store := NewStore(t.TempDir())
	byName := NewRecord("byname", "/work", nil, nil, "", nil)
	byID := NewRecord("", "/work", nil, nil, "", nil)
	if err := store.Save(byName); err != nil {
		t.Fatalf("Save(byName) error = %v", err)
	}
	if err := store.Save(byID); err != nil {
		t.Fatalf("Save(byID) error = %v", err)
	}

	if err := store.Delete("byname"); err != nil {
		t.Fatalf("Delete(name) error = %v", err)
	}
	if err := store.Delete(byID.ID); err != nil {
		t.Fatalf("Delete(id) error = %v", err)
	}

	records, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("List() after deletes = %d records, want 0", len(records))
	}
}

func TestStoreCleanupExpired(t *testing.T) {
	store := NewStore(t.TempDir())
	expired := NewRecord("gone", "/work", nil, nil, "", ttl(1))
	expired.LastActivityEpochS = time.Now().Unix() - 10
	alive := NewRecord("stays", "/work", nil, nil, "", nil)

	if err := store.Save(expired); err != nil {
		t.Fatalf("Save(expired) error = %v", err)
	}
	if err := store.Save(alive); err != nil {
		t.Fatalf("Save(alive) error = %v", err)
	}

	n, err := store.CleanupExpired()
	if err != nil {
		t.Fatalf("CleanupExpired() error = %v", err)
	}
	if n != 1 {
		t.Errorf("CleanupExpired() = %d, want 1", n)
	}

	records, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 1 || records[0].Name != "stays" {
		t.Errorf("List() after cleanup = %+v, want only 'stays'", records)
	}
}

func TestStoreTouchUpdatesLastActivity(t *testing.T) {
	store := NewStore(t.TempDir())
	r := NewRecord("touchme", "/work", nil, nil, "", nil)
	r.LastActivityEpochS = 1
	if err := store.Save(r); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := store.Touch("touchme"); err != nil {
		t.Fatalf("Touch() error = %v", err)
	}

	got, err := store.Get("touchme")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.LastActivityEpochS <= 1 {
		t.Errorf("LastActivityEpochS = %d, want > 1", got.LastActivityEpochS)
	}
}
