// Package archive keeps an optional local copy of published envelopes in a
// SQLite database, mainly for offline debugging when the Redis feed is not
// being watched.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/krsfer/claude-hooks-sub000/internal/envelope"
	"github.com/krsfer/claude-hooks-sub000/internal/logutil"
)

// Entry is one archived envelope row.
type Entry struct {
	ID         string    `json:"id"`
	EventKind  string    `json:"eventKind"`
	SessionKey string    `json:"sessionKey"`
	Sequence   int64     `json:"sequence"`
	ToolName   string    `json:"toolName,omitempty"`
	Envelope   string    `json:"envelope"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Store wraps the SQLite database used for the archive.
type Store struct {
	db *sql.DB
}

// Open initializes the archive at the supplied file path.
func Open(dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("archive path is required")
	}
	if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	conn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", dsn)
	db, err := sql.Open("sqlite", conn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite archive: %w", err)
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			event_kind TEXT NOT NULL,
			session_key TEXT NOT NULL,
			sequence INTEGER NOT NULL,
			tool_name TEXT,
			envelope TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_session ON events(session_key, sequence);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("schema apply failed: %w", err)
		}
	}
	return nil
}

// Close shuts down the archive.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Append stores one envelope.
func (s *Store) Append(env envelope.Envelope, encoded []byte) error {
	if env.ID == "" {
		return errors.New("envelope id required")
	}
	_, err := s.db.Exec(`INSERT OR IGNORE INTO events (id, event_kind, session_key, sequence, tool_name, envelope, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		env.ID, env.EventKind, env.SessionKey, env.Sequence, env.ToolName, string(encoded), time.Now().UTC(),
	)
	return err
}

// ListSession returns the newest entries for a session.
func (s *Store) ListSession(sessionKey string, limit int) ([]Entry, error) {
	query := `SELECT id, event_kind, session_key, sequence, tool_name, envelope, created_at
		FROM events WHERE session_key = ? ORDER BY sequence DESC`
	if limit > 0 {
		query = fmt.Sprintf("%s LIMIT %d", query, limit)
	}
	rows, err := s.db.Query(query, sessionKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var e Entry
		var toolName sql.NullString
		if err := rows.Scan(&e.ID, &e.EventKind, &e.SessionKey, &e.Sequence, &toolName, &e.Envelope, &e.CreatedAt); err != nil {
			return nil, err
		}
		if toolName.Valid {
			e.ToolName = toolName.String
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Record implements the pipeline's Recorder: archive failures are logged,
// never escalated.
func (s *Store) Record(ctx context.Context, env envelope.Envelope, encoded []byte) {
	if s == nil || s.db == nil {
		return
	}
	if err := s.Append(env, encoded); err != nil {
		logutil.Debug("archive write failed", map[string]interface{}{
			"id":    env.ID,
			"error": err.Error(),
		})
	}
}
