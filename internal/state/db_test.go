package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ShayCichocki/cadre/pkg/models"
)

// tempDBPath returns a path to a temp database file.
func tempDBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.db")
}

// setupTestDB creates a new temporary database for testing.
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(tempDBPath(t))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.Migrate(); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

// withClock pins the database clock for deterministic timestamps.
func withClock(db *DB, start time.Time) func(time.Duration) {
	now := start
	db.now = func() time.Time { return now }
	return func(d time.Duration) { now = now.Add(d) }
}

func TestOpen(t *testing.T) {
	path := tempDBPath(t)
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	if db.Path() != path {
		t.Errorf("Path() = %q, want %q", db.Path(), path)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("database file does not exist at %s", path)
	}
}

func TestOpen_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "c", "test.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Errorf("parent directory not created: %v", err)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db := setupTestDB(t)

	if err := db.Migrate(); err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}

	var version int
	if err := db.conn.Get(&version, "SELECT MAX(version) FROM schema_version"); err != nil {
		t.Fatal(err)
	}
	if version != 3 {
		t.Errorf("schema version = %d, want 3", version)
	}

	for _, table := range []string{"sessions", "delegations", "snapshots"} {
		var name string
		if err := db.conn.Get(&name, "SELECT name FROM sqlite_master WHERE type='table' AND name=?", table); err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestPurgeOldSessions(t *testing.T) {
	db := setupTestDB(t)
	advance := withClock(db, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	if _, err := db.EnsureSession("old"); err != nil {
		t.Fatal(err)
	}
	if err := db.RecordDelegation("old", models.DelegationResult{Team: []string{"a"}, Rationale: "r"}); err != nil {
		t.Fatal(err)
	}
	advance(48 * time.Hour)
	if _, err := db.EnsureSession("new"); err != nil {
		t.Fatal(err)
	}

	n, err := db.PurgeOldSessions(24 * time.Hour)
	if err != nil {
		t.Fatalf("PurgeOldSessions failed: %v", err)
	}
	if n != 1 {
		t.Errorf("purged %d sessions, want 1", n)
	}
	if s, _ := db.GetSession("old"); s != nil {
		t.Error("old session should be purged")
	}
	if s, _ := db.GetSession("new"); s == nil {
		t.Error("new session should survive")
	}

	rows, err := db.ListDelegations("old", 0)
	if err != nil {
		t.Fatalf("ListDelegations failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("got %d delegations for purged session, want 0", len(rows))
	}
}
