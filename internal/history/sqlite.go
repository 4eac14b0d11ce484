package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// timeLayout is fixed-width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Store using SQLite via modernc.org/sqlite (pure Go).
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the journal at dbPath. Use ":memory:"
// for testing.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}
	// every connection to ":memory:" is a separate database
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: ping database: %w", err)
	}

	createTableSQL := `
		CREATE TABLE IF NOT EXISTS exchanges (
			id          TEXT PRIMARY KEY,
			call_id     TEXT NOT NULL DEFAULT '',
			method      TEXT NOT NULL,
			uri         TEXT NOT NULL,
			status      INTEGER NOT NULL DEFAULT 0,
			error       TEXT NOT NULL DEFAULT '',
			elapsed_ns  INTEGER NOT NULL DEFAULT 0,
			body_size   INTEGER NOT NULL DEFAULT 0,
			created_at  TEXT NOT NULL
		);
	`
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create table: %w", err)
	}

	createIndexSQL := `
		CREATE INDEX IF NOT EXISTS idx_exchanges_created_at ON exchanges(created_at);
	`
	if _, err := db.Exec(createIndexSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Append stores entry. An empty ID is replaced by a new UUID and a zero
// CreatedAt by the current time.
func (s *SQLiteStore) Append(ctx context.Context, entry *Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO exchanges (id, call_id, method, uri, status, error, elapsed_ns, body_size, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		entry.CallID,
		entry.Method,
		entry.URI,
		entry.Status,
		entry.Error,
		int64(entry.Elapsed),
		entry.BodySize,
		entry.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("history: append entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. limit <= 0 means all.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	query := `
		SELECT id, call_id, method, uri, status, error, elapsed_ns, body_size, created_at
		FROM exchanges
		ORDER BY created_at DESC, rowid DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("history: list entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var (
			e         Entry
			elapsed   int64
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.CallID, &e.Method, &e.URI, &e.Status, &e.Error, &elapsed, &e.BodySize, &createdAt); err != nil {
			return nil, fmt.Errorf("history: scan row: %w", err)
		}
		e.Elapsed = time.Duration(elapsed)
		if e.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("history: parse created_at %q: %w", createdAt, err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate rows: %w", err)
	}

	return entries, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
