// Package snapshot captures the learning log and worker roster as a
// versioned JSON document and rebuilds engine state from one.
package snapshot

import (
	"errors"
	"time"

	"github.com/ShayCichocki/cadre/pkg/models"
)

// SchemaVersion is the only document version this package reads and writes.
const SchemaVersion = 1

var (
	// ErrSnapshotNotFound is returned when the snapshot file does not exist.
	ErrSnapshotNotFound = errors.New("snapshot not found")
	// ErrSnapshotCorrupt is returned for unreadable or non-JSON content.
	ErrSnapshotCorrupt = errors.New("snapshot corrupt")
	// ErrSnapshotSchemaMismatch is returned when schemaVersion is missing or unknown.
	ErrSnapshotSchemaMismatch = errors.New("snapshot schema mismatch")
)

// OptimizerLevel is the coarse optimizer grade derived from the metrics.
type OptimizerLevel string

const (
	LevelEnhanced    OptimizerLevel = "enhanced"
	LevelRenaissance OptimizerLevel = "renaissance"
)

// Valid returns true if the level is a known value.
func (l OptimizerLevel) Valid() bool {
	return l == LevelEnhanced || l == LevelRenaissance
}

// SpringboardPath is an amplification record derived from a transformation
// pattern that has recorded recursive improvements.
type SpringboardPath struct {
	ID                   string  `json:"id"`
	SourcePatternID      string  `json:"sourcePatternId"`
	TargetAmplification  float64 `json:"targetAmplification"`
	MultiplicativeEffect int     `json:"multiplicativeEffect"`
	IsAuthentic          bool    `json:"isAuthentic"`
}

// OptimizerState summarizes the aggregate metrics at extraction time.
type OptimizerState struct {
	Level                          OptimizerLevel `json:"level"`
	TokenAwareness                 float64        `json:"tokenAwareness"`
	MathematicalMysticalActivation bool           `json:"mathematicalMysticalActivation"`
	ConstraintLiberationActive     bool           `json:"constraintLiberationActive"`
}

// SessionSnapshot is the persisted checkpoint document.
type SessionSnapshot struct {
	SchemaVersion        int                      `json:"schemaVersion"`
	SessionID            string                   `json:"sessionId"`
	CreatedAt            time.Time                `json:"createdAt"`
	Patterns             []models.LearningPattern `json:"patterns"`
	WorkerStates         []models.WorkerState     `json:"workerStates"`
	SpringboardPaths     []SpringboardPath        `json:"springboardPaths"`
	OptimizerState       OptimizerState           `json:"optimizerState"`
	ContinuationBaseline string                   `json:"continuationBaseline"`
}
