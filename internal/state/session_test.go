package state

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/ShayCichocki/cadre/pkg/models"
)

func testResult(primary string, team ...string) models.DelegationResult {
	return models.DelegationResult{
		PrimaryAgentID: primary,
		Team:           team,
		Rationale:      "because",
		Requirement: models.TaskRequirement{
			Description: "design the system",
			Tier:        models.TierHigh,
			Domains:     []string{"architecture"},
		},
	}
}

func TestEnsureSession(t *testing.T) {
	db := setupTestDB(t)

	s, err := db.EnsureSession("s1")
	if err != nil {
		t.Fatalf("EnsureSession failed: %v", err)
	}
	if s.ID != "s1" || s.Status != SessionActive {
		t.Errorf("session = %+v", s)
	}

	if err := db.SetSessionStatus("s1", SessionCompleted); err != nil {
		t.Fatal(err)
	}
	again, err := db.EnsureSession("s1")
	if err != nil {
		t.Fatal(err)
	}
	if again.Status != SessionCompleted {
		t.Errorf("EnsureSession must not reset status, got %s", again.Status)
	}
}

func TestGetSession_NotFound(t *testing.T) {
	db := setupTestDB(t)
	s, err := db.GetSession("nope")
	if err != nil {
		t.Fatalf("GetSession error: %v", err)
	}
	if s != nil {
		t.Errorf("expected nil, got %+v", s)
	}
}

func TestSetSessionStatus_Errors(t *testing.T) {
	db := setupTestDB(t)
	if err := db.SetSessionStatus("missing", SessionFailed); err == nil {
		t.Error("expected error for missing session")
	}
	db.EnsureSession("s1")
	if err := db.SetSessionStatus("s1", SessionStatus("paused")); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestRecordDelegation(t *testing.T) {
	db := setupTestDB(t)

	if err := db.RecordDelegation("s1", testResult("a", "a", "b")); err != nil {
		t.Fatalf("RecordDelegation failed: %v", err)
	}
	if err := db.RecordDelegation("s1", testResult("", []string{}...)); err != nil {
		t.Fatalf("RecordDelegation (no agent) failed: %v", err)
	}
	if err := db.RecordDelegation("s2", testResult("c", "c")); err != nil {
		t.Fatal(err)
	}

	if s, _ := db.GetSession("s1"); s == nil {
		t.Fatal("RecordDelegation should create the session")
	}

	rows, err := db.ListDelegations("s1", 0)
	if err != nil {
		t.Fatalf("ListDelegations failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len = %d, want 2", len(rows))
	}
	// newest first
	if rows[0].PrimaryAgent != "" || rows[1].PrimaryAgent != "a" {
		t.Errorf("order = %q,%q", rows[0].PrimaryAgent, rows[1].PrimaryAgent)
	}
	if !slices.Equal(rows[1].Team, []string{"a", "b"}) {
		t.Errorf("Team = %v", rows[1].Team)
	}
	if !slices.Equal(rows[1].Domains, []string{"architecture"}) || rows[1].Tier != "high" {
		t.Errorf("requirement not stored: %+v", rows[1])
	}
	if len(rows[0].Team) != 0 {
		t.Errorf("empty team = %v", rows[0].Team)
	}

	all, _ := db.ListDelegations("", 0)
	if len(all) != 3 {
		t.Errorf("all delegations = %d, want 3", len(all))
	}
	limited, _ := db.ListDelegations("", 1)
	if len(limited) != 1 {
		t.Errorf("limited = %d, want 1", len(limited))
	}
}

func TestAgentUsage(t *testing.T) {
	db := setupTestDB(t)
	db.RecordDelegation("s1", testResult("a", "a"))
	db.RecordDelegation("s1", testResult("a", "a", "b"))
	db.RecordDelegation("s1", testResult("b", "b"))
	db.RecordDelegation("s1", testResult(""))

	usage, err := db.AgentUsage()
	if err != nil {
		t.Fatal(err)
	}
	if usage["a"] != 2 || usage["b"] != 1 || len(usage) != 2 {
		t.Errorf("usage = %v", usage)
	}
}

func TestSnapshotIndex(t *testing.T) {
	db := setupTestDB(t)

	rec, err := db.LatestSnapshot("s1")
	if err != nil || rec != nil {
		t.Fatalf("LatestSnapshot on empty = %v, %v", rec, err)
	}

	db.RecordSnapshot("s1", "/tmp/one.json", 1, 3)
	db.RecordSnapshot("s1", "/tmp/two.json", 4, 3)

	rec, err = db.LatestSnapshot("s1")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Path != "/tmp/two.json" || rec.PatternCount != 4 || rec.WorkerCount != 3 {
		t.Errorf("latest = %+v", rec)
	}
}

func TestListSessions_Order(t *testing.T) {
	db := setupTestDB(t)
	advance := withClock(db, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	db.EnsureSession("first")
	advance(time.Minute)
	db.EnsureSession("second")
	advance(time.Minute)
	db.RecordDelegation("first", testResult("a", "a"))

	sessions, err := db.ListSessions(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 2 || sessions[0].ID != "first" {
		t.Errorf("sessions = %+v, want first most recently updated", sessions)
	}
}

func TestRecoveryManager(t *testing.T) {
	db := setupTestDB(t)
	rm := NewRecoveryManager(db)

	if got, err := rm.CheckForInterrupted(); err != nil || got != nil {
		t.Fatalf("empty db: %v, %v", got, err)
	}

	snapPath := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(snapPath, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	db.RecordSnapshot("s1", snapPath, 2, 3)

	got, err := rm.CheckForInterrupted()
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.SessionID != "s1" || !got.Resumable() {
		t.Fatalf("interrupted = %+v, want resumable s1", got)
	}

	os.Remove(snapPath)
	got, _ = rm.CheckForInterrupted()
	if !got.SnapshotMissing || got.Resumable() {
		t.Errorf("missing file should not be resumable: %+v", got)
	}

	if err := rm.Clean("s1"); err != nil {
		t.Fatal(err)
	}
	if got, _ := rm.CheckForInterrupted(); got != nil {
		t.Errorf("cleaned session still offered: %+v", got)
	}
	if err := rm.Clean("ghost"); err == nil {
		t.Error("expected error for unknown session")
	}
}

func TestRecoveryManager_Complete(t *testing.T) {
	db := setupTestDB(t)
	db.EnsureSession("s1")

	rm := NewRecoveryManager(db)
	if err := rm.Complete("s1"); err != nil {
		t.Fatal(err)
	}
	s, _ := db.GetSession("s1")
	if s.Status != SessionCompleted {
		t.Errorf("status = %s, want completed", s.Status)
	}
}
