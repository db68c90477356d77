// Package history persists a local record of CLI runs — one row per
// invocation — to a small SQLite database, backing the CLI's --history
// flag. It has no bearing on interpretation semantics.
package history

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Entry is one recorded CLI invocation.
type Entry struct {
	ID        int64
	File      string
	Timestamp int64 // unix seconds, supplied by the caller
	ExitCode  int
	Errors    int
	Warnings  int
}

// Store wraps the history database.
type Store struct {
	db *sql.DB
}

// Open creates (if needed) and opens the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: ping %s: %w", path, err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	file      TEXT NOT NULL,
	timestamp INTEGER NOT NULL,
	exit_code INTEGER NOT NULL,
	errors    INTEGER NOT NULL,
	warnings  INTEGER NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Record inserts one invocation row.
func (s *Store) Record(e Entry) error {
	_, err := s.db.Exec(
		`INSERT INTO runs (file, timestamp, exit_code, errors, warnings) VALUES (?, ?, ?, ?, ?)`,
		e.File, e.Timestamp, e.ExitCode, e.Errors, e.Warnings,
	)
	if err != nil {
		return fmt.Errorf("history: record: %w", err)
	}
	return nil
}

// Recent returns the n most recent invocations, newest first.
func (s *Store) Recent(n int) ([]Entry, error) {
	rows, err := s.db.Query(
		`SELECT id, file, timestamp, exit_code, errors, warnings FROM runs ORDER BY id DESC LIMIT ?`, n,
	)
	if err != nil {
		return nil, fmt.Errorf("history: recent: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.File, &e.Timestamp, &e.ExitCode, &e.Errors, &e.Warnings); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
