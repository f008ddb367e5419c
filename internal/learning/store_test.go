package learning

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ShayCichocki/cadre/pkg/models"
)

// newTestStore creates a migrated PatternStore in a temp dir.
func newTestStore(t *testing.T) *PatternStore {
	t.Helper()

	store, err := NewPatternStore(filepath.Join(t.TempDir(), "nested", "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if err := store.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return store
}

func testPattern(id string, kind models.PatternKind, contexts ...string) models.LearningPattern {
	return models.LearningPattern{
		ID:                        id,
		Kind:                      kind,
		Input:                     payload("a", "b"),
		Output:                    payload("c"),
		Confidence:                0.5,
		Contexts:                  contexts,
		LearningDepth:             1,
		RecursiveImprovementCount: 2,
		CreatedAt:                 time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC),
	}
}

func TestPatternStore_MigrateTwice(t *testing.T) {
	store := newTestStore(t)
	if err := store.Migrate(); err != nil {
		t.Errorf("second Migrate() error = %v", err)
	}
}

func TestPatternStore_AppendAndList(t *testing.T) {
	store := newTestStore(t)

	first := testPattern("lp-1", models.KindTransformation, "authentic-collaboration")
	second := testPattern("lp-2", models.KindSynthesis)
	for _, p := range []models.LearningPattern{first, second} {
		if err := store.Append("s1", p); err != nil {
			t.Fatalf("Append(%s) error = %v", p.ID, err)
		}
	}

	got, err := store.ListBySession("s1")
	if err != nil {
		t.Fatalf("ListBySession() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != "lp-1" || got[1].ID != "lp-2" {
		t.Errorf("order = %s,%s, want lp-1,lp-2", got[0].ID, got[1].ID)
	}

	p := got[0]
	if p.Kind != models.KindTransformation || p.Confidence != 0.5 {
		t.Errorf("kind/confidence = %s/%v", p.Kind, p.Confidence)
	}
	if p.Input.Data["a"] != "v-a" || p.Output.Version != models.PayloadVersion {
		t.Errorf("payload not round-tripped: %+v", p.Input)
	}
	if p.LearningDepth != 1 || p.RecursiveImprovementCount != 2 {
		t.Errorf("depth/ric = %d/%d", p.LearningDepth, p.RecursiveImprovementCount)
	}
	if !p.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", p.CreatedAt, first.CreatedAt)
	}
	if len(p.Contexts) != 1 || p.Contexts[0] != "authentic-collaboration" {
		t.Errorf("Contexts = %v", p.Contexts)
	}
	if len(got[1].Contexts) != 0 {
		t.Errorf("second Contexts = %v, want empty", got[1].Contexts)
	}
}

func TestPatternStore_AppendIdempotent(t *testing.T) {
	store := newTestStore(t)
	p := testPattern("lp-1", models.KindPrerequisite, "x")

	for i := 0; i < 2; i++ {
		if err := store.Append("s1", p); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
	got, _ := store.ListBySession("s1")
	if len(got) != 1 {
		t.Errorf("len = %d, want 1", len(got))
	}
}

func TestPatternStore_SessionsAreIsolated(t *testing.T) {
	store := newTestStore(t)
	store.Append("s1", testPattern("lp-1", models.KindPrerequisite))
	store.Append("s2", testPattern("lp-1", models.KindPrerequisite))

	for _, sid := range []string{"s1", "s2"} {
		got, err := store.ListBySession(sid)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 {
			t.Errorf("%s: len = %d, want 1", sid, len(got))
		}
	}

	if err := store.DeleteSession("s1"); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}
	got, _ := store.ListBySession("s1")
	if len(got) != 0 {
		t.Errorf("after delete len = %d, want 0", len(got))
	}
}

func TestPatternStore_ListByContext(t *testing.T) {
	store := newTestStore(t)
	store.Append("s1", testPattern("lp-1", models.KindTransformation, "authentic-collaboration"))
	store.Append("s1", testPattern("lp-2", models.KindTransformation, "other"))
	store.Append("s2", testPattern("lp-3", models.KindSynthesis, "authentic-collaboration"))

	got, err := store.ListByContext("authentic-collaboration")
	if err != nil {
		t.Fatalf("ListByContext() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	for _, p := range got {
		if !p.HasContext("authentic-collaboration") {
			t.Errorf("%s missing context: %v", p.ID, p.Contexts)
		}
	}
}

func TestPatternStore_CountByKind(t *testing.T) {
	store := newTestStore(t)
	store.Append("s1", testPattern("lp-1", models.KindTransformation))
	store.Append("s1", testPattern("lp-2", models.KindTransformation))
	store.Append("s1", testPattern("lp-3", models.KindMetaLearning))

	counts, err := store.CountByKind()
	if err != nil {
		t.Fatalf("CountByKind() error = %v", err)
	}
	if counts[models.KindTransformation] != 2 || counts[models.KindMetaLearning] != 1 {
		t.Errorf("counts = %v", counts)
	}
	if counts[models.KindSynthesis] != 0 {
		t.Errorf("synthesis count = %d, want 0", counts[models.KindSynthesis])
	}
}

func TestPatternStore_ListRecentAndSearch(t *testing.T) {
	store := newTestStore(t)
	older := testPattern("lp-1", models.KindTransformation, "caching")
	newer := testPattern("lp-2", models.KindSynthesis, "rendering")
	newer.CreatedAt = older.CreatedAt.Add(time.Hour)
	store.Append("s1", older)
	store.Append("s2", newer)

	recent, err := store.ListRecent(1)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(recent) != 1 || recent[0].ID != "lp-2" {
		t.Errorf("ListRecent(1) = %+v, want lp-2", recent)
	}

	all, err := store.ListRecent(0)
	if err != nil {
		t.Fatalf("ListRecent(0) error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("ListRecent(0) returned %d, want 2", len(all))
	}

	hits, err := store.Search("caching", 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 1 || hits[0].Pattern.ID != "lp-1" {
		t.Errorf("Search(caching) = %+v, want lp-1", hits)
	}
}

func TestPatternStore_MalformedCreatedAt(t *testing.T) {
	store := newTestStore(t)
	if err := store.Append("s1", testPattern("lp-1", models.KindSynthesis)); err != nil {
		t.Fatal(err)
	}
	if _, err := store.db.Exec("UPDATE patterns SET created_at = ? WHERE id = ?", "yesterday", "lp-1"); err != nil {
		t.Fatal(err)
	}

	got, err := store.ListBySession("s1")
	if err == nil {
		t.Fatalf("ListBySession() = %+v, want error for malformed created_at", got)
	}
	if !strings.Contains(err.Error(), "created_at of lp-1") {
		t.Errorf("error = %v, want it to name the pattern", err)
	}
}
