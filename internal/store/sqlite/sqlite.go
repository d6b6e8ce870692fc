// Package sqlite is the reference Store implementation backed by SQLite.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps sql.DB for the reservation engine.
type DB struct {
	*sql.DB
}

// NewDB opens the database at path and runs migrations. WAL mode and a busy
// timeout keep concurrent readers and the single writer from tripping over
// each other.
func NewDB(path string) (*DB, error) {
	// _txlock=immediate makes transactions take the write lock up front so
	// the batch insert in SaveBookings cannot deadlock on a lock upgrade.
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate&_loc=UTC")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := createTables(db); err != nil {
		return nil, err
	}
	return &DB{db}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS resources (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			name TEXT NOT NULL,
			default_capacity INTEGER NOT NULL DEFAULT 1,
			metadata TEXT,
			booking_config TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS bookings (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			resource_id TEXT NOT NULL,
			start_time DATETIME NOT NULL,
			end_time DATETIME NOT NULL,
			quantity INTEGER NOT NULL,
			status TEXT NOT NULL DEFAULT 'active',
			metadata TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			FOREIGN KEY (resource_id) REFERENCES resources(id)
		)`,

		`CREATE TABLE IF NOT EXISTS journal_entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			at DATETIME NOT NULL,
			project_id TEXT NOT NULL,
			resource_id TEXT,
			booking_id TEXT,
			action TEXT NOT NULL,
			outcome TEXT NOT NULL,
			detail TEXT
		)`,

		`CREATE INDEX IF NOT EXISTS idx_resources_project ON resources(project_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_resource_times ON bookings(resource_id, start_time, end_time)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(status)`,
		`CREATE INDEX IF NOT EXISTS idx_journal_project ON journal_entries(project_id, at)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("exec migration %s: %w", trimSQL(q), err)
		}
	}
	return nil
}

func trimSQL(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}
