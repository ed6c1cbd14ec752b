package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore journals queued requests in a SQLite database. It is
// suitable for single-instance deployments where queued requests must
// survive restarts.
type SQLiteStore[T any] struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the journal database at path.
func NewSQLiteStore[T any](path string) (*SQLiteStore[T], error) {
	if path == "" {
		return nil, fmt.Errorf("journal path cannot be empty")
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	schema := `
		CREATE TABLE IF NOT EXISTS queued_requests (
			id          TEXT PRIMARY KEY,
			payload     TEXT NOT NULL,
			enqueued_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_queued_requests_enqueued_at
			ON queued_requests(enqueued_at);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize journal schema: %w", err)
	}

	return &SQLiteStore[T]{db: db}, nil
}

// Append implements Store.
func (s *SQLiteStore[T]) Append(rec Record[T]) error {
	payload, err := json.Marshal(rec.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO queued_requests (id, payload, enqueued_at) VALUES (?, ?, ?)`,
		rec.ID, string(payload), rec.EnqueuedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to journal request %s: %w", rec.ID, err)
	}
	return nil
}

// Remove implements Store.
func (s *SQLiteStore[T]) Remove(id string) error {
	if _, err := s.db.Exec(`DELETE FROM queued_requests WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to remove journal entry %s: %w", id, err)
	}
	return nil
}

// LoadPending implements Store. Records are returned in enqueue order.
func (s *SQLiteStore[T]) LoadPending(ctx context.Context) ([]Record[T], error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, payload, enqueued_at FROM queued_requests ORDER BY enqueued_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load journal: %w", err)
	}
	defer rows.Close()

	var records []Record[T]
	for rows.Next() {
		var (
			id         string
			payload    string
			enqueuedAt int64
		)
		if err := rows.Scan(&id, &payload, &enqueuedAt); err != nil {
			return nil, fmt.Errorf("failed to scan journal row: %w", err)
		}

		var value T
		if err := json.Unmarshal([]byte(payload), &value); err != nil {
			return nil, fmt.Errorf("failed to unmarshal journal payload %s: %w", id, err)
		}

		records = append(records, Record[T]{
			ID:         id,
			Payload:    value,
			EnqueuedAt: time.UnixMilli(enqueuedAt),
		})
	}
	return records, rows.Err()
}

// Close implements Store.
func (s *SQLiteStore[T]) Close() error {
	return s.db.Close()
}
