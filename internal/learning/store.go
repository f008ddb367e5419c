package learning

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// PatternStore is a SQLite-backed archive of recorded patterns. The live
// log stays in memory; the archive keeps every pattern across sessions so
// they can be listed and counted after the process exits.
type PatternStore struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// NewPatternStore opens the archive at dbPath, creating parent directories
// if they don't exist. Call Migrate before use.
func NewPatternStore(dbPath string) (*PatternStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for concurrent reads
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return &PatternStore{db: conn, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *PatternStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Path returns the path to the database file.
func (s *PatternStore) Path() string {
	return s.dbPath
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
