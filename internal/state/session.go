package state

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ShayCichocki/cadre/pkg/models"
)

// SessionStatus represents the status of a session.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionFailed    SessionStatus = "failed"
)

// Valid returns true if the status is a known value.
func (s SessionStatus) Valid() bool {
	switch s {
	case SessionActive, SessionCompleted, SessionFailed:
		return true
	default:
		return false
	}
}

// Session is one engine session as recorded in the state database.
type Session struct {
	ID        string        `db:"id" json:"id"`
	StartedAt string        `db:"started_at" json:"started_at"`
	UpdatedAt string        `db:"updated_at" json:"updated_at"`
	Status    SessionStatus `db:"status" json:"status"`
}

// Delegation is one recorded delegation outcome.
type Delegation struct {
	ID           int64  `db:"id" json:"id"`
	SessionID    string `db:"session_id" json:"session_id"`
	Description  string `db:"description" json:"description"`
	Tier         string `db:"tier" json:"tier"`
	DomainsJSON  string `db:"domains" json:"-"`
	PrimaryAgent string `db:"primary_agent" json:"primary_agent"`
	TeamJSON     string `db:"team" json:"-"`
	Rationale    string `db:"rationale" json:"rationale"`
	CreatedAt    string `db:"created_at" json:"created_at"`

	Domains []string `db:"-" json:"domains"`
	Team    []string `db:"-" json:"team"`
}

// SnapshotRecord is an index entry for a saved snapshot file.
type SnapshotRecord struct {
	ID           int64  `db:"id" json:"id"`
	SessionID    string `db:"session_id" json:"session_id"`
	Path         string `db:"path" json:"path"`
	PatternCount int    `db:"pattern_count" json:"pattern_count"`
	WorkerCount  int    `db:"worker_count" json:"worker_count"`
	CreatedAt    string `db:"created_at" json:"created_at"`
}

// EnsureSession returns the session with id, creating it as active if it
// does not exist yet.
func (db *DB) EnsureSession(id string) (*Session, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	now := formatTime(db.now())
	if _, err := db.conn.Exec(`
		INSERT INTO sessions (id, started_at, updated_at, status)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, now, now, SessionActive); err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return db.getSessionLocked(id)
}

// GetSession retrieves a session by its ID. Returns nil if not found.
func (db *DB) GetSession(id string) (*Session, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.getSessionLocked(id)
}

func (db *DB) getSessionLocked(id string) (*Session, error) {
	var s Session
	err := db.conn.Get(&s, "SELECT id, started_at, updated_at, status FROM sessions WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	return &s, nil
}

// SetSessionStatus updates a session's status.
func (db *DB) SetSessionStatus(id string, status SessionStatus) error {
	if !status.Valid() {
		return fmt.Errorf("unknown session status %q", status)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	result, err := db.conn.Exec(
		"UPDATE sessions SET status = ?, updated_at = ? WHERE id = ?",
		status, formatTime(db.now()), id,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("session not found: %s", id)
	}
	return nil
}

// ListSessions returns the most recently updated sessions first.
func (db *DB) ListSessions(limit int) ([]Session, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var sessions []Session
	err := db.conn.Select(&sessions, `
		SELECT id, started_at, updated_at, status FROM sessions
		ORDER BY updated_at DESC, id LIMIT ?
	`, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// RecordDelegation appends a delegation outcome, creating the session if needed.
func (db *DB) RecordDelegation(sessionID string, result models.DelegationResult) error {
	domains, err := json.Marshal(nonNil(result.Requirement.Domains))
	if err != nil {
		return fmt.Errorf("encode domains: %w", err)
	}
	team, err := json.Marshal(nonNil(result.Team))
	if err != nil {
		return fmt.Errorf("encode team: %w", err)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	now := formatTime(db.now())
	tx, err := db.conn.Beginx()
	if err != nil {
		return fmt.Errorf("begin delegation: %w", err)
	}
	defer tx.Rollback()

	if err := touchSession(tx, sessionID, now); err != nil {
		return err
	}
	if _, err := tx.Exec(`
		INSERT INTO delegations (
			session_id, description, tier, domains, primary_agent, team, rationale, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		sessionID,
		result.Requirement.Description,
		string(result.Requirement.Tier),
		string(domains),
		result.PrimaryAgentID,
		string(team),
		result.Rationale,
		now,
	); err != nil {
		return fmt.Errorf("insert delegation: %w", err)
	}
	return tx.Commit()
}

// ListDelegations returns a session's delegations, newest first.
// An empty sessionID lists across all sessions.
func (db *DB) ListDelegations(sessionID string, limit int) ([]Delegation, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	query := `SELECT * FROM delegations`
	args := []interface{}{}
	if sessionID != "" {
		query += ` WHERE session_id = ?`
		args = append(args, sessionID)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, normalizeLimit(limit))

	var rows []Delegation
	if err := db.conn.Select(&rows, query, args...); err != nil {
		return nil, fmt.Errorf("list delegations: %w", err)
	}
	for i := range rows {
		if err := json.Unmarshal([]byte(rows[i].DomainsJSON), &rows[i].Domains); err != nil {
			return nil, fmt.Errorf("decode domains of delegation %d: %w", rows[i].ID, err)
		}
		if err := json.Unmarshal([]byte(rows[i].TeamJSON), &rows[i].Team); err != nil {
			return nil, fmt.Errorf("decode team of delegation %d: %w", rows[i].ID, err)
		}
	}
	return rows, nil
}

// AgentUsage counts how many recorded delegations each agent led.
func (db *DB) AgentUsage() (map[string]int, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var rows []struct {
		Agent string `db:"primary_agent"`
		Count int    `db:"n"`
	}
	if err := db.conn.Select(&rows, `
		SELECT primary_agent, COUNT(*) AS n FROM delegations
		WHERE primary_agent != '' GROUP BY primary_agent
	`); err != nil {
		return nil, fmt.Errorf("agent usage: %w", err)
	}

	usage := make(map[string]int, len(rows))
	for _, r := range rows {
		usage[r.Agent] = r.Count
	}
	return usage, nil
}

// RecordSnapshot indexes a saved snapshot file.
func (db *DB) RecordSnapshot(sessionID, path string, patterns, workers int) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	now := formatTime(db.now())
	tx, err := db.conn.Beginx()
	if err != nil {
		return fmt.Errorf("begin snapshot record: %w", err)
	}
	defer tx.Rollback()

	if err := touchSession(tx, sessionID, now); err != nil {
		return err
	}
	if _, err := tx.Exec(`
		INSERT INTO snapshots (session_id, path, pattern_count, worker_count, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, sessionID, path, patterns, workers, now); err != nil {
		return fmt.Errorf("insert snapshot record: %w", err)
	}
	return tx.Commit()
}

// LatestSnapshot returns the most recent snapshot record of a session,
// or nil if none was saved.
func (db *DB) LatestSnapshot(sessionID string) (*SnapshotRecord, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var rec SnapshotRecord
	err := db.conn.Get(&rec, `
		SELECT * FROM snapshots WHERE session_id = ?
		ORDER BY id DESC LIMIT 1
	`, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}
	return &rec, nil
}

type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

// touchSession creates the session if missing and bumps its update time.
func touchSession(tx execer, id, now string) error {
	if _, err := tx.Exec(`
		INSERT INTO sessions (id, started_at, updated_at, status)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at
	`, id, now, now, SessionActive); err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
