package state

import (
	"io"

	"github.com/ShayCichocki/cadre/pkg/models"
)

// SessionStore handles session-related persistence operations.
type SessionStore interface {
	EnsureSession(id string) (*Session, error)
	GetSession(id string) (*Session, error)
	SetSessionStatus(id string, status SessionStatus) error
	ListSessions(limit int) ([]Session, error)
}

// DelegationStore handles delegation history.
type DelegationStore interface {
	RecordDelegation(sessionID string, result models.DelegationResult) error
	ListDelegations(sessionID string, limit int) ([]Delegation, error)
	AgentUsage() (map[string]int, error)
}

// SnapshotIndex tracks where session snapshots were saved.
type SnapshotIndex interface {
	RecordSnapshot(sessionID, path string, patterns, workers int) error
	LatestSnapshot(sessionID string) (*SnapshotRecord, error)
}

// Migrator handles database schema migrations.
type Migrator interface {
	Migrate() error
}

// StateStore composes the focused store interfaces.
type StateStore interface {
	io.Closer
	Migrator
	SessionStore
	DelegationStore
	SnapshotIndex
}

// Compile-time verification that DB implements all interfaces.
var (
	_ StateStore      = (*DB)(nil)
	_ SessionStore    = (*DB)(nil)
	_ DelegationStore = (*DB)(nil)
	_ SnapshotIndex   = (*DB)(nil)
	_ Migrator        = (*DB)(nil)
)
