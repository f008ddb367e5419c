package learning

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/ShayCichocki/cadre/pkg/models"
)

var searchNow = time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)

func searchPattern(id string, kind models.PatternKind, confidence float64, age time.Duration, in, out map[string]string, contexts ...string) models.LearningPattern {
	return models.LearningPattern{
		ID:         id,
		Kind:       kind,
		Input:      models.NewPayload(in),
		Output:     models.NewPayload(out),
		Confidence: confidence,
		Contexts:   contexts,
		CreatedAt:  searchNow.Add(-age),
	}
}

func TestRetriever_Search(t *testing.T) {
	patterns := []models.LearningPattern{
		searchPattern("lp-draft", models.KindTransformation, 0.8, time.Hour,
			map[string]string{"draft": "outline"}, map[string]string{"draft": "essay"}, "writing"),
		searchPattern("lp-cache", models.KindPrerequisite, 0.8, time.Hour,
			map[string]string{"cache": "cold"}, map[string]string{"cache": "warm"}, "performance"),
		searchPattern("lp-review", models.KindSynthesis, 0.8, time.Hour,
			map[string]string{"review": "pending"}, map[string]string{"review": "approved", "draft": "final"}),
	}
	r := NewRetriever(func() time.Time { return searchNow })

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"single match", "warm the cache", []string{"lp-cache"}},
		{"context tag", "performance", []string{"lp-cache"}},
		{"term frequency wins", "draft", []string{"lp-draft", "lp-review"}},
		{"kind is searchable", "synthesis", []string{"lp-review"}},
		{"no match", "database", nil},
		{"stop words only", "the and of", nil},
		{"empty query", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := r.Search(patterns, tt.query, 0)
			if hits == nil {
				t.Fatal("Search() returned nil, want empty slice")
			}
			if len(hits) != len(tt.want) {
				t.Fatalf("Search(%q) returned %d hits, want %v", tt.query, len(hits), tt.want)
			}
			for i, id := range tt.want {
				if hits[i].Pattern.ID != id {
					t.Errorf("hit %d = %s, want %s", i, hits[i].Pattern.ID, id)
				}
				if hits[i].Score <= 0 {
					t.Errorf("hit %d score = %v, want > 0", i, hits[i].Score)
				}
			}
		})
	}
}

func TestRetriever_ConfidenceAndRecency(t *testing.T) {
	in := map[string]string{"topic": "delegation"}
	out := map[string]string{"topic": "delegation"}
	r := NewRetriever(func() time.Time { return searchNow })

	t.Run("higher confidence ranks first", func(t *testing.T) {
		hits := r.Search([]models.LearningPattern{
			searchPattern("lp-low", models.KindSynthesis, 0.2, time.Hour, in, out),
			searchPattern("lp-high", models.KindSynthesis, 0.9, time.Hour, in, out),
		}, "delegation", 0)
		if len(hits) != 2 || hits[0].Pattern.ID != "lp-high" {
			t.Errorf("hits = %+v, want lp-high first", hits)
		}
	})

	t.Run("newer ranks first", func(t *testing.T) {
		hits := r.Search([]models.LearningPattern{
			searchPattern("lp-old", models.KindSynthesis, 0.5, 30*24*time.Hour, in, out),
			searchPattern("lp-new", models.KindSynthesis, 0.5, time.Hour, in, out),
		}, "delegation", 0)
		if len(hits) != 2 || hits[0].Pattern.ID != "lp-new" {
			t.Errorf("hits = %+v, want lp-new first", hits)
		}
	})

	t.Run("zero confidence still matches", func(t *testing.T) {
		hits := r.Search([]models.LearningPattern{
			searchPattern("lp-zero", models.KindSynthesis, 0, time.Hour, in, out),
		}, "delegation", 0)
		if len(hits) != 1 {
			t.Errorf("got %d hits, want 1", len(hits))
		}
	})
}

func TestRecencyFactor(t *testing.T) {
	day := 24 * time.Hour
	tests := []struct {
		name string
		age  time.Duration
		want float64
	}{
		{"fresh", 0, 1},
		{"one half-life", 7 * day, 0.5},
		{"two half-lives", 14 * day, 0.25},
		{"four half-lives", 28 * day, 0.0625},
		{"future timestamp", -day, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := recencyFactor(searchNow.Add(-tt.age), searchNow)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("recencyFactor(%v) = %v, want %v", tt.age, got, tt.want)
			}
		})
	}

	if got := recencyFactor(time.Time{}, searchNow); got != 1 {
		t.Errorf("undated pattern factor = %v, want 1", got)
	}
}

func TestRetriever_ConcurrentSearch(t *testing.T) {
	patterns := []models.LearningPattern{
		searchPattern("lp-cache", models.KindPrerequisite, 0.8, time.Hour,
			map[string]string{"cache": "cold"}, map[string]string{"cache": "warm"}),
		searchPattern("lp-draft", models.KindTransformation, 0.8, time.Hour,
			map[string]string{"draft": "outline"}, map[string]string{"draft": "essay"}),
	}
	r := NewRetriever(func() time.Time { return searchNow })

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		query, want := "cache", "lp-cache"
		if i%2 == 1 {
			query, want = "draft", "lp-draft"
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				hits := r.Search(patterns, query, 0)
				if len(hits) != 1 || hits[0].Pattern.ID != want {
					t.Errorf("Search(%q) = %+v, want %s", query, hits, want)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestRetriever_Limit(t *testing.T) {
	var patterns []models.LearningPattern
	for i := 0; i < DefaultSearchLimit+5; i++ {
		patterns = append(patterns, searchPattern("lp-x", models.KindSynthesis, 0.5, time.Hour,
			map[string]string{"shared": "term"}, nil))
	}
	r := NewRetriever(func() time.Time { return searchNow })

	if got := len(r.Search(patterns, "shared", 0)); got != DefaultSearchLimit {
		t.Errorf("default limit returned %d, want %d", got, DefaultSearchLimit)
	}
	if got := len(r.Search(patterns, "shared", 3)); got != 3 {
		t.Errorf("limit 3 returned %d", got)
	}
}

func TestExtractKeywords(t *testing.T) {
	got := extractKeywords("Design THE design of a Neural-Network")
	want := []string{"design", "neural", "network"}
	if len(got) != len(want) {
		t.Fatalf("extractKeywords() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("keyword %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestBM25Score_Bounds(t *testing.T) {
	p := searchPattern("lp-a", models.KindSynthesis, 0.5, 0, map[string]string{"alpha": "beta"}, nil)

	if s := bm25Score(p, nil, 1, map[string]int{}, 1); s != 0 {
		t.Errorf("no query terms: score = %v, want 0", s)
	}
	if s := bm25Score(p, []string{"alpha"}, 1, map[string]int{}, 0); s != 0 {
		t.Errorf("empty corpus: score = %v, want 0", s)
	}
	avg, freqs := computeCorpusStats([]models.LearningPattern{p})
	if s := bm25Score(p, []string{"alpha"}, avg, freqs, 1); s <= 0 {
		t.Errorf("matching term: score = %v, want > 0", s)
	}
}
