package runlog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS scheduler_runs (
	id                    TEXT PRIMARY KEY,
	scheduled_time        TEXT NOT NULL,
	actual_execution_time TEXT,
	reason                TEXT NOT NULL DEFAULT '',
	topic                 TEXT NOT NULL DEFAULT '',
	details               TEXT NOT NULL DEFAULT '',
	status                TEXT NOT NULL DEFAULT 'scheduled',
	error_message         TEXT,
	execution_duration_ms INTEGER,
	ai_response           TEXT,
	metadata              TEXT NOT NULL DEFAULT '{}',
	created_at            TEXT NOT NULL,
	updated_at            TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_updated_at ON scheduler_runs(updated_at);
CREATE INDEX IF NOT EXISTS idx_runs_status ON scheduler_runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON scheduler_runs(created_at);
CREATE INDEX IF NOT EXISTS idx_runs_status_updated ON scheduler_runs(status, updated_at);
`

// Store wraps the SQLite database holding scheduler run logs.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the run-log database in dataDir and applies the
// schema. Pass ":memory:" as dataDir for an in-memory database (used by tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "scheduler_runs.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Single connection avoids "database is locked" under concurrent writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
