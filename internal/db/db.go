package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory store.
const MemoryPath = ":memory:"

type options struct {
	busyTimeout time.Duration
	migrate     bool
}

// Option configures OpenDB.
type Option func(*options)

// WithBusyTimeout sets how long SQLite waits on a locked file before failing.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *options) { o.busyTimeout = d }
}

// WithoutMigrations skips EnsureSchema. Used by migration tests that need to
// drive the steps by hand.
func WithoutMigrations() Option {
	return func(o *options) { o.migrate = false }
}

// OpenDB opens a SQLite database at the given path.
// If path is ":memory:", uses an in-memory database.
// Sets WAL mode, enables foreign keys and brings the schema up to date.
//
// The pool is pinned to a single connection: the store has one writer, and an
// in-memory database only exists on the connection that created it.
func OpenDB(path string, opts ...Option) (*sql.DB, error) {
	o := options{busyTimeout: 5 * time.Second, migrate: true}
	for _, opt := range opts {
		opt(&o)
	}

	if path != MemoryPath {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w: %w", ErrIOFailure, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", ClassifyError(err))
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
		fmt.Sprintf("PRAGMA busy_timeout = %d", o.busyTimeout.Milliseconds()),
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %q: %w", p, ClassifyError(err))
		}
	}

	if o.migrate {
		if err := EnsureSchema(context.Background(), db); err != nil {
			db.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return db, nil
}
