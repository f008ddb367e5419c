package learning

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/ShayCichocki/cadre/pkg/models"
)

func payload(keys ...string) models.Payload {
	data := make(map[string]string, len(keys))
	for _, k := range keys {
		data[k] = "v-" + k
	}
	return models.NewPayload(data)
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func fixedClock() func() time.Time {
	t := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		name   string
		input  models.Payload
		output models.Payload
		want   float64
	}{
		{"both empty", payload(), payload(), 0},
		{"empty input", payload(), payload("a"), 1},
		{"half survives", payload("a", "b"), payload("a"), 0.5},
		{"same size", payload("a", "b"), payload("c", "d"), 1},
		{"larger output clamps", payload("a"), payload("a", "b", "c"), 1},
		{"empty output", payload("a", "b"), payload(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Confidence(tt.input, tt.output)
			if !almostEqual(got, tt.want) {
				t.Errorf("Confidence() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLog_Record(t *testing.T) {
	l := NewLog("session-1", nil)
	l.SetClock(fixedClock())

	p, err := l.Record(models.KindTransformation, payload("a", "b"), payload("x"), []string{"authentic-collaboration", " ", "authentic-collaboration"})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	if p.ID == "" || p.ID[:3] != "lp-" {
		t.Errorf("ID = %q, want lp- prefix", p.ID)
	}
	if !almostEqual(p.Confidence, 0.5) {
		t.Errorf("Confidence = %v, want 0.5", p.Confidence)
	}
	if len(p.Contexts) != 1 || p.Contexts[0] != "authentic-collaboration" {
		t.Errorf("Contexts = %v, want deduplicated single context", p.Contexts)
	}
	if p.LearningDepth != 0 || p.RecursiveImprovementCount != 0 {
		t.Errorf("first pattern depth=%d ric=%d, want 0,0", p.LearningDepth, p.RecursiveImprovementCount)
	}
	if !p.CreatedAt.Equal(fixedClock()()) {
		t.Errorf("CreatedAt = %v, want clock time", p.CreatedAt)
	}

	m := l.Metrics()
	if !almostEqual(m.LearningVelocity, 0.05) {
		t.Errorf("LearningVelocity = %v, want 0.05", m.LearningVelocity)
	}
	if !almostEqual(m.TransformationEffectiveness, 0.05) {
		t.Errorf("TransformationEffectiveness = %v, want 0.05", m.TransformationEffectiveness)
	}
	if m.EmergenceQuotient != 0 {
		t.Errorf("EmergenceQuotient = %v, want 0", m.EmergenceQuotient)
	}
}

func TestLog_Record_DepthAndRecursion(t *testing.T) {
	l := NewLog("s", nil)

	first, _ := l.Record(models.KindTransformation, payload("a"), payload("b"), nil)
	second, _ := l.Record(models.KindTransformation, payload("b"), payload("c"), nil)
	third, _ := l.Record(models.KindSynthesis, payload("b", "c"), payload("d"), nil)

	if first.LearningDepth != 0 || second.LearningDepth != 1 || third.LearningDepth != 0 {
		t.Errorf("depths = %d,%d,%d, want 0,1,0", first.LearningDepth, second.LearningDepth, third.LearningDepth)
	}
	if second.RecursiveImprovementCount != 1 {
		t.Errorf("second RIC = %d, want 1", second.RecursiveImprovementCount)
	}
	if third.RecursiveImprovementCount != 2 {
		t.Errorf("third RIC = %d, want 2", third.RecursiveImprovementCount)
	}
}

func TestLog_Record_InvalidKind(t *testing.T) {
	l := NewLog("s", nil)
	_, err := l.Record(models.PatternKind("guess"), payload("a"), payload("b"), nil)
	if !errors.Is(err, ErrInvalidPattern) {
		t.Fatalf("Record() error = %v, want ErrInvalidPattern", err)
	}
	if l.Len() != 0 {
		t.Errorf("Len() = %d, want 0", l.Len())
	}
}

func TestLog_Record_DoesNotAliasCallerPayload(t *testing.T) {
	l := NewLog("s", nil)
	in := payload("a")
	p, _ := l.Record(models.KindPrerequisite, in, payload("b"), nil)

	in.Data["a"] = "mutated"
	stored, ok := l.Pattern(p.ID)
	if !ok {
		t.Fatalf("Pattern(%s) not found", p.ID)
	}
	if stored.Input.Data["a"] != "v-a" {
		t.Errorf("stored input mutated through caller map: %q", stored.Input.Data["a"])
	}
}

func TestLog_MetricsClamp(t *testing.T) {
	l := NewLog("s", nil)
	for i := 0; i < 30; i++ {
		if _, err := l.Record(models.KindSynthesis, payload("a"), payload("a"), nil); err != nil {
			t.Fatal(err)
		}
	}
	m := l.Metrics()
	if m.LearningVelocity != 1 {
		t.Errorf("LearningVelocity = %v, want clamped 1", m.LearningVelocity)
	}
	if m.EmergenceQuotient != 1 {
		t.Errorf("EmergenceQuotient = %v, want clamped 1", m.EmergenceQuotient)
	}
}

func TestLog_Patterns_InsertionOrder(t *testing.T) {
	l := NewLog("s", nil)
	var ids []string
	for i := 0; i < 5; i++ {
		p, _ := l.Record(models.KindPrerequisite, payload("a"), payload("b"), nil)
		ids = append(ids, p.ID)
	}
	got := l.Patterns()
	if len(got) != len(ids) {
		t.Fatalf("len = %d, want %d", len(got), len(ids))
	}
	for i := range ids {
		if got[i].ID != ids[i] {
			t.Errorf("Patterns()[%d] = %s, want %s", i, got[i].ID, ids[i])
		}
	}
}

func TestLog_WorkerTransitions(t *testing.T) {
	l := NewLog("s", DefaultRoster())
	l.SetClock(fixedClock())

	w, err := l.SetWorkerState("w-meta", models.WorkerActive)
	if err != nil {
		t.Fatalf("SetWorkerState() error = %v", err)
	}
	if w.State != models.WorkerActive || !w.LastActivation.Equal(fixedClock()()) {
		t.Errorf("worker = %+v, want active with stamped activation", w)
	}

	w, err = l.SetWorkerState("w-meta", models.WorkerArchived)
	if err != nil {
		t.Fatalf("SetWorkerState() error = %v", err)
	}
	if w.LastActivation.IsZero() {
		t.Error("archiving should keep the last activation time")
	}

	if _, err := l.SetWorkerState("nope", models.WorkerActive); !errors.Is(err, ErrUnknownWorker) {
		t.Errorf("unknown worker error = %v, want ErrUnknownWorker", err)
	}
	if _, err := l.SetWorkerState("w-meta", models.ActiveState("sleeping")); err == nil {
		t.Error("expected error for invalid state")
	}
}

func TestLog_SetWorkerScore(t *testing.T) {
	l := NewLog("s", DefaultRoster())

	w, err := l.SetWorkerScore("w-synthesis", 0.25)
	if err != nil {
		t.Fatalf("SetWorkerScore() error = %v", err)
	}
	if w.CapabilityScore != 0.25 {
		t.Errorf("CapabilityScore = %v, want 0.25", w.CapabilityScore)
	}
	for _, bad := range []float64{-0.1, 1.1} {
		if _, err := l.SetWorkerScore("w-synthesis", bad); err == nil {
			t.Errorf("SetWorkerScore(%v) expected error", bad)
		}
	}
	if _, err := l.SetWorkerScore("ghost", 0.5); !errors.Is(err, ErrUnknownWorker) {
		t.Errorf("error = %v, want ErrUnknownWorker", err)
	}
}

func TestLog_ViewIsCopy(t *testing.T) {
	l := NewLog("s", DefaultRoster())
	l.Record(models.KindTransformation, payload("a"), payload("b"), []string{"x"})

	v := l.View()
	v.Patterns[0].Contexts[0] = "changed"
	v.Workers[0].Name = "changed"

	if l.Patterns()[0].Contexts[0] != "x" {
		t.Error("View patterns alias the log")
	}
	if l.Workers()[0].Name == "changed" {
		t.Error("View workers alias the log")
	}
}

func TestLog_Replace(t *testing.T) {
	src := NewLog("origin", DefaultRoster())
	src.Record(models.KindTransformation, payload("a"), payload("b"), nil)
	src.Record(models.KindSynthesis, payload("b"), payload("c"), nil)

	dst := NewLog("fresh", nil)
	dst.Replace(src.View())

	if dst.SessionID() != "origin" {
		t.Errorf("SessionID = %q, want origin", dst.SessionID())
	}
	if dst.Len() != 2 {
		t.Errorf("Len = %d, want 2", dst.Len())
	}
	if len(dst.Workers()) != len(DefaultRoster()) {
		t.Errorf("Workers = %d, want %d", len(dst.Workers()), len(DefaultRoster()))
	}
	if _, err := dst.SetWorkerState("w-meta", models.WorkerActive); err != nil {
		t.Errorf("replaced roster not indexed: %v", err)
	}
}

func TestLog_ConcurrentRecordAndView(t *testing.T) {
	l := NewLog("s", nil)
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				l.Record(models.KindPrerequisite, payload("a"), payload("b"), nil)
			}
		}()
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				v := l.View()
				want := math.Min(1, float64(len(v.Patterns))*velocityPerPattern)
				if !almostEqual(v.Metrics.LearningVelocity, want) {
					t.Errorf("torn view: %d patterns with velocity %v", len(v.Patterns), v.Metrics.LearningVelocity)
					return
				}
			}
		}()
	}
	wg.Wait()

	if l.Len() != 200 {
		t.Errorf("Len() = %d, want 200", l.Len())
	}
}
