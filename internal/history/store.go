// Package history keeps a provenance trail of update attempts in a SQLite
// database next to the state file (wow.db).
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// FileName is the history database name inside the workspace.
const FileName = "wow.db"

const schema = `
CREATE TABLE IF NOT EXISTS updates (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at TIMESTAMP NOT NULL,
    session TEXT,
    source INTEGER NOT NULL,
    source_url TEXT NOT NULL,
    image_url TEXT,
    image_path TEXT,
    bytes INTEGER NOT NULL DEFAULT 0,
    outcome TEXT NOT NULL,
    error TEXT,
    duration_ms INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_updates_started ON updates(started_at);
`

// Entry is one recorded update attempt.
type Entry struct {
	ID        int64
	StartedAt time.Time
	Session   string
	Source    int
	SourceURL string
	ImageURL  string
	ImagePath string
	Bytes     int
	Outcome   string
	Error     string
	Duration  time.Duration
}

// Store provides SQLite operations for the update history.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at dbPath and ensures
// the schema exists. Use ":memory:" in tests.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record appends an update attempt.
func (s *Store) Record(ctx context.Context, e Entry) error {
	query := `
		INSERT INTO updates
		(started_at, session, source, source_url, image_url, image_path, bytes, outcome, error, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		e.StartedAt.UTC().Format(time.RFC3339Nano),
		e.Session,
		e.Source,
		e.SourceURL,
		e.ImageURL,
		e.ImagePath,
		e.Bytes,
		e.Outcome,
		e.Error,
		e.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to record update: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, nil
	}
	query := `
		SELECT id, started_at, session, source, source_url, image_url, image_path, bytes, outcome, error, duration_ms
		FROM updates
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			startedAt  string
			session    sql.NullString
			imageURL   sql.NullString
			imagePath  sql.NullString
			errText    sql.NullString
			durationMS int64
		)
		if err := rows.Scan(&e.ID, &startedAt, &session, &e.Source, &e.SourceURL, &imageURL, &imagePath, &e.Bytes, &e.Outcome, &errText, &durationMS); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		e.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse started_at for entry %d: %w", e.ID, err)
		}
		e.Session = session.String
		e.ImageURL = imageURL.String
		e.ImagePath = imagePath.String
		e.Error = errText.String
		e.Duration = time.Duration(durationMS) * time.Millisecond
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}
	return entries, nil
}

// Prune deletes all but the newest keep entries and returns how many were removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM updates
		WHERE id NOT IN (SELECT id FROM updates ORDER BY id DESC LIMIT ?)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned rows: %w", err)
	}
	return n, nil
}
