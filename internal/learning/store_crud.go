package learning

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ShayCichocki/cadre/pkg/models"
)

// Append archives a pattern under the given session. Appending the same
// pattern twice is a no-op.
func (s *PatternStore) Append(sessionID string, p models.LearningPattern) error {
	input, err := json.Marshal(p.Input)
	if err != nil {
		return fmt.Errorf("encode input payload: %w", err)
	}
	output, err := json.Marshal(p.Output)
	if err != nil {
		return fmt.Errorf("encode output payload: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	var seq int
	if err := tx.QueryRow(
		"SELECT COALESCE(MAX(seq), 0) + 1 FROM patterns WHERE session_id = ?", sessionID,
	).Scan(&seq); err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	res, err := tx.Exec(`
		INSERT OR IGNORE INTO patterns (
			session_id, id, seq, kind, input_json, output_json, confidence,
			learning_depth, recursive_improvement_count, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		sessionID,
		p.ID,
		seq,
		string(p.Kind),
		string(input),
		string(output),
		p.Confidence,
		p.LearningDepth,
		p.RecursiveImprovementCount,
		formatTime(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert pattern: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}

	for _, c := range p.Contexts {
		if _, err := tx.Exec(
			"INSERT OR IGNORE INTO pattern_contexts (session_id, pattern_id, context) VALUES (?, ?, ?)",
			sessionID, p.ID, c,
		); err != nil {
			return fmt.Errorf("insert pattern context: %w", err)
		}
	}

	return tx.Commit()
}

// ListBySession returns the archived patterns of a session in the order
// they were appended.
func (s *PatternStore) ListBySession(sessionID string) ([]models.LearningPattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT p.id, p.kind, p.input_json, p.output_json, p.confidence,
			   p.learning_depth, p.recursive_improvement_count, p.created_at,
			   COALESCE((SELECT GROUP_CONCAT(c.context, char(31)) FROM pattern_contexts c
			             WHERE c.session_id = p.session_id AND c.pattern_id = p.id), '')
		FROM patterns p
		WHERE p.session_id = ?
		ORDER BY p.seq
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list patterns: %w", err)
	}
	defer rows.Close()

	return scanPatterns(rows)
}

// ListByContext returns archived patterns recorded under context, across
// all sessions, oldest first.
func (s *PatternStore) ListByContext(context string) ([]models.LearningPattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT p.id, p.kind, p.input_json, p.output_json, p.confidence,
			   p.learning_depth, p.recursive_improvement_count, p.created_at,
			   COALESCE((SELECT GROUP_CONCAT(c2.context, char(31)) FROM pattern_contexts c2
			             WHERE c2.session_id = p.session_id AND c2.pattern_id = p.id), '')
		FROM patterns p
		JOIN pattern_contexts c ON c.session_id = p.session_id AND c.pattern_id = p.id
		WHERE c.context = ?
		ORDER BY p.created_at, p.seq
	`, context)
	if err != nil {
		return nil, fmt.Errorf("list patterns by context: %w", err)
	}
	defer rows.Close()

	return scanPatterns(rows)
}

// ListRecent returns up to limit archived patterns from all sessions,
// newest first. limit <= 0 returns every pattern.
func (s *PatternStore) ListRecent(limit int) ([]models.LearningPattern, error) {
	if limit <= 0 {
		limit = -1
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT p.id, p.kind, p.input_json, p.output_json, p.confidence,
			   p.learning_depth, p.recursive_improvement_count, p.created_at,
			   COALESCE((SELECT GROUP_CONCAT(c.context, char(31)) FROM pattern_contexts c
			             WHERE c.session_id = p.session_id AND c.pattern_id = p.id), '')
		FROM patterns p
		ORDER BY p.created_at DESC, p.seq DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent patterns: %w", err)
	}
	defer rows.Close()

	return scanPatterns(rows)
}

// Search ranks every archived pattern against query.
func (s *PatternStore) Search(query string, limit int) ([]ScoredPattern, error) {
	patterns, err := s.ListRecent(0)
	if err != nil {
		return nil, err
	}
	return NewRetriever(nil).Search(patterns, query, limit), nil
}

// CountByKind returns the number of archived patterns per kind.
func (s *PatternStore) CountByKind() (map[models.PatternKind]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT kind, COUNT(*) FROM patterns GROUP BY kind")
	if err != nil {
		return nil, fmt.Errorf("count patterns: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.PatternKind]int)
	for rows.Next() {
		var (
			kind  string
			count int
		)
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[models.PatternKind(kind)] = count
	}
	return counts, rows.Err()
}

// DeleteSession removes every archived pattern of a session.
func (s *PatternStore) DeleteSession(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM patterns WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("delete session patterns: %w", err)
	}
	return nil
}

func scanPatterns(rows *sql.Rows) ([]models.LearningPattern, error) {
	var patterns []models.LearningPattern
	for rows.Next() {
		var (
			p         models.LearningPattern
			kind      string
			input     string
			output    string
			createdAt string
			contexts  string
		)
		if err := rows.Scan(
			&p.ID,
			&kind,
			&input,
			&output,
			&p.Confidence,
			&p.LearningDepth,
			&p.RecursiveImprovementCount,
			&createdAt,
			&contexts,
		); err != nil {
			return nil, fmt.Errorf("scan pattern: %w", err)
		}

		p.Kind = models.PatternKind(kind)
		if err := json.Unmarshal([]byte(input), &p.Input); err != nil {
			return nil, fmt.Errorf("decode input payload of %s: %w", p.ID, err)
		}
		if err := json.Unmarshal([]byte(output), &p.Output); err != nil {
			return nil, fmt.Errorf("decode output payload of %s: %w", p.ID, err)
		}
		created, err := parseTime(createdAt)
		if err != nil {
			return nil, fmt.Errorf("decode created_at of %s: %w", p.ID, err)
		}
		p.CreatedAt = created
		p.Contexts = []string{}
		if contexts != "" {
			p.Contexts = strings.Split(contexts, "\x1f")
		}
		patterns = append(patterns, p)
	}
	return patterns, rows.Err()
}
