package learning

import "github.com/ShayCichocki/cadre/pkg/models"

// PatternRecorder appends patterns to a learning log.
type PatternRecorder interface {
	Record(kind models.PatternKind, input, output models.Payload, contexts []string) (models.LearningPattern, error)
}

// RosterManager mutates worker roster entries.
type RosterManager interface {
	Workers() []models.WorkerState
	SetWorkerState(id string, state models.ActiveState) (models.WorkerState, error)
	SetWorkerScore(id string, score float64) (models.WorkerState, error)
}

// Verify Log implements both interfaces at compile time.
var (
	_ PatternRecorder = (*Log)(nil)
	_ RosterManager   = (*Log)(nil)
)
