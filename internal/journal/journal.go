// Package journal persists one record per tool invocation in a local
// SQLite database.
//
// The journal is a diagnostics and recovery surface, not a source of
// truth: the backend owns all entities. Its value is in partial
// completions: when a multi-step operation stops halfway, the journal
// keeps the identifiers of what was persisted so a later session can
// finish or undo the work. Journal writes are best-effort and never
// fail a tool call. Credentials are never written here.
package journal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

const schema = `
CREATE TABLE IF NOT EXISTS operations (
	id          TEXT PRIMARY KEY,
	tool        TEXT NOT NULL,
	status      TEXT NOT NULL,
	entity_ids  TEXT NOT NULL DEFAULT '[]',
	summary     TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_operations_created_at ON operations(created_at);
`

// Entry is one journaled tool invocation.
type Entry struct {
	ID        string   `json:"id"`
	Tool      string   `json:"tool"`
	Status    string   `json:"status"`
	EntityIDs []string `json:"entity_ids"`
	Summary   string   `json:"summary"`
	CreatedAt string   `json:"created_at"`
}

// Store is the journal database. A nil *Store is valid: Record becomes
// a no-op, so callers never need nil checks on the write path.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the journal location under the user's home
// directory.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".sprintline", "journal.db"), nil
}

// Open creates or opens the journal at path, creating parent
// directories as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}
	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening journal database: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configuring journal database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating journal schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle. Safe on a nil store.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts one entry, assigning an id and timestamp when absent.
// No-op on a nil store.
func (s *Store) Record(e *Entry) error {
	if s == nil || s.db == nil {
		return nil
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt == "" {
		e.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	ids, err := json.Marshal(e.EntityIDs)
	if err != nil {
		return fmt.Errorf("encoding entity ids: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO operations (id, tool, status, entity_ids, summary, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Tool, e.Status, string(ids), e.Summary, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("recording operation: %w", err)
	}
	return nil
}

// Recent returns the newest entries, most recent first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(
		`SELECT id, tool, status, entity_ids, summary, created_at
		 FROM operations ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying operations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ids string
		if err := rows.Scan(&e.ID, &e.Tool, &e.Status, &ids, &e.Summary, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning operation row: %w", err)
		}
		if err := json.Unmarshal([]byte(ids), &e.EntityIDs); err != nil {
			// A corrupt row should not hide the rest of the journal.
			e.EntityIDs = nil
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
