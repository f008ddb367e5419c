package state

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// InterruptedSession describes an active session found on startup together
// with the snapshot it can be resumed from.
type InterruptedSession struct {
	SessionID    string
	StartedAt    string
	LastActivity string
	// Snapshot is the latest indexed snapshot, nil if none was saved.
	Snapshot *SnapshotRecord
	// SnapshotMissing is set when the indexed file no longer exists on disk.
	SnapshotMissing bool
}

// Resumable reports whether the session has a snapshot file to restore.
func (s *InterruptedSession) Resumable() bool {
	return s != nil && s.Snapshot != nil && !s.SnapshotMissing
}

// RecoveryManager handles detection and cleanup of interrupted sessions.
type RecoveryManager struct {
	db *DB
}

// NewRecoveryManager creates a new RecoveryManager with the given database.
func NewRecoveryManager(db *DB) *RecoveryManager {
	return &RecoveryManager{db: db}
}

// CheckForInterrupted returns the most recently updated active session, or
// nil if every session is completed or failed.
func (rm *RecoveryManager) CheckForInterrupted() (*InterruptedSession, error) {
	sessions, err := rm.db.ListSessions(0)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	for _, s := range sessions {
		if s.Status != SessionActive {
			continue
		}

		rec, err := rm.db.LatestSnapshot(s.ID)
		if err != nil {
			return nil, fmt.Errorf("latest snapshot: %w", err)
		}

		info := &InterruptedSession{
			SessionID:    s.ID,
			StartedAt:    s.StartedAt,
			LastActivity: s.UpdatedAt,
			Snapshot:     rec,
		}
		if rec != nil {
			if _, err := os.Stat(rec.Path); errors.Is(err, fs.ErrNotExist) {
				info.SnapshotMissing = true
			}
		}
		return info, nil
	}

	return nil, nil
}

// Complete marks a session as finished cleanly.
func (rm *RecoveryManager) Complete(sessionID string) error {
	return rm.db.SetSessionStatus(sessionID, SessionCompleted)
}

// Clean marks an interrupted session as failed so it is no longer offered
// for resumption.
func (rm *RecoveryManager) Clean(sessionID string) error {
	session, err := rm.db.GetSession(sessionID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return fmt.Errorf("session %s not found", sessionID)
	}
	return rm.db.SetSessionStatus(sessionID, SessionFailed)
}
