package learning

// Migrate creates the archive tables and indexes if they don't exist.
func (s *PatternStore) Migrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS pattern_schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return err
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM pattern_schema_version")
	if err := row.Scan(&currentVersion); err != nil {
		return err
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migrationV1Patterns},
		{2, migrationV2Contexts},
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := s.db.Begin()
		if err != nil {
			return err
		}

		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return err
		}

		if _, err := tx.Exec("INSERT INTO pattern_schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return err
		}

		if err := tx.Commit(); err != nil {
			return err
		}
	}

	return nil
}

const migrationV1Patterns = `
CREATE TABLE IF NOT EXISTS patterns (
    session_id TEXT NOT NULL,
    id TEXT NOT NULL,
    seq INTEGER NOT NULL,
    kind TEXT NOT NULL,
    input_json TEXT NOT NULL,
    output_json TEXT NOT NULL,
    confidence REAL NOT NULL,
    learning_depth INTEGER NOT NULL DEFAULT 0,
    recursive_improvement_count INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    PRIMARY KEY (session_id, id)
);

CREATE INDEX IF NOT EXISTS idx_patterns_kind ON patterns(kind);
CREATE INDEX IF NOT EXISTS idx_patterns_session_seq ON patterns(session_id, seq);
`

const migrationV2Contexts = `
CREATE TABLE IF NOT EXISTS pattern_contexts (
    session_id TEXT NOT NULL,
    pattern_id TEXT NOT NULL,
    context TEXT NOT NULL,
    PRIMARY KEY (session_id, pattern_id, context),
    FOREIGN KEY (session_id, pattern_id) REFERENCES patterns(session_id, id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_pattern_contexts_context ON pattern_contexts(context);
`
