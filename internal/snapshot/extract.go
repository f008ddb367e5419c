package snapshot

import (
	"fmt"
	"time"

	"github.com/ShayCichocki/cadre/internal/learning"
	"github.com/ShayCichocki/cadre/pkg/models"
)

// Derivation constants.
const (
	amplificationFactor     = 3.0
	renaissanceThreshold    = 0.8
	mysticalEffectiveness   = 0.6
	mysticalEmergence       = 0.4
	springboardPathIDPrefix = "sp-"
)

// Extract builds a snapshot from a point-in-time view of the learning log.
// Springboard paths are tagged authentic when their source pattern carries
// authenticContext. Extract never fails.
func Extract(view learning.View, authenticContext string, now time.Time) SessionSnapshot {
	patterns := view.Patterns
	if patterns == nil {
		patterns = []models.LearningPattern{}
	}
	workers := view.Workers
	if workers == nil {
		workers = []models.WorkerState{}
	}

	snap := SessionSnapshot{
		SchemaVersion:    SchemaVersion,
		SessionID:        view.SessionID,
		CreatedAt:        now.UTC(),
		Patterns:         patterns,
		WorkerStates:     workers,
		SpringboardPaths: SpringboardPaths(patterns, authenticContext),
		OptimizerState:   DeriveOptimizerState(patterns, view.Metrics),
	}
	snap.ContinuationBaseline = continuationBaseline(len(patterns), len(workers), view.Metrics)
	return snap
}

// SpringboardPaths derives one path per transformation pattern with at
// least one recursive improvement, in pattern order.
func SpringboardPaths(patterns []models.LearningPattern, authenticContext string) []SpringboardPath {
	paths := []SpringboardPath{}
	for _, p := range patterns {
		if p.Kind != models.KindTransformation || p.RecursiveImprovementCount <= 0 {
			continue
		}
		paths = append(paths, SpringboardPath{
			ID:                   springboardPathIDPrefix + p.ID,
			SourcePatternID:      p.ID,
			TargetAmplification:  p.Confidence * amplificationFactor,
			MultiplicativeEffect: p.RecursiveImprovementCount,
			IsAuthentic:          authenticContext != "" && p.HasContext(authenticContext),
		})
	}
	return paths
}

// DeriveOptimizerState grades the log. Token awareness is the mean pattern
// confidence, zero for an empty log.
func DeriveOptimizerState(patterns []models.LearningPattern, m learning.Metrics) OptimizerState {
	state := OptimizerState{
		Level:                          LevelEnhanced,
		MathematicalMysticalActivation: m.TransformationEffectiveness > mysticalEffectiveness && m.EmergenceQuotient > mysticalEmergence,
	}
	if m.TransformationEffectiveness > renaissanceThreshold {
		state.Level = LevelRenaissance
	}

	var total float64
	for _, p := range patterns {
		total += p.Confidence
		if p.Kind == models.KindTransformation {
			state.ConstraintLiberationActive = true
		}
	}
	if len(patterns) > 0 {
		state.TokenAwareness = learning.Clamp01(total / float64(len(patterns)))
	}
	return state
}

func continuationBaseline(patterns, workers int, m learning.Metrics) string {
	return fmt.Sprintf("%d patterns, %d workers, velocity %.2f, effectiveness %.2f, emergence %.2f",
		patterns, workers, m.LearningVelocity, m.TransformationEffectiveness, m.EmergenceQuotient)
}
