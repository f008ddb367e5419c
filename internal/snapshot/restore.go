package snapshot

import (
	"slices"
	"time"

	"github.com/ShayCichocki/cadre/internal/learning"
	"github.com/ShayCichocki/cadre/pkg/models"
)

// Restore weights.
const (
	activeWorkerVelocity     = 0.1
	springboardEffectiveness = 0.1
	mysticalEmergenceBonus   = 0.2
)

// Restore rebuilds a learning log view from a snapshot. Patterns and the
// session id load verbatim. Active workers are reactivated at now, and the
// aggregate metrics are recomputed from zero.
func Restore(snap SessionSnapshot, now time.Time) learning.View {
	patterns := make([]models.LearningPattern, 0, len(snap.Patterns))
	for _, p := range snap.Patterns {
		patterns = append(patterns, p.Clone())
	}

	workers := slices.Clone(snap.WorkerStates)
	var delta learning.Metrics
	for i := range workers {
		if workers[i].State != models.WorkerActive {
			continue
		}
		workers[i].LastActivation = now.UTC()
		delta.LearningVelocity += workers[i].CapabilityScore * activeWorkerVelocity
	}

	for _, sp := range snap.SpringboardPaths {
		if sp.IsAuthentic {
			delta.TransformationEffectiveness += float64(sp.MultiplicativeEffect) * springboardEffectiveness
		}
	}

	if snap.OptimizerState.MathematicalMysticalActivation {
		delta.EmergenceQuotient += mysticalEmergenceBonus
	}

	return learning.View{
		SessionID: snap.SessionID,
		Patterns:  patterns,
		Workers:   workers,
		Metrics:   learning.Metrics{}.Add(delta),
	}
}
