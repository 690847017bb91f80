package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

// EnsureSchema brings the database up to the latest schema version.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	return NewMigrator(db).Up(ctx)
}

// Migrator applies the ordered, versioned schema steps. Each step is one
// NNNN_name.up.sql file and runs in its own transaction; the applied version
// lives in the schema_migrations table.
type Migrator struct {
	db  *sql.DB
	src fs.FS
	dir string
}

// MigratorOption configures a Migrator.
type MigratorOption func(*Migrator)

// WithSource replaces the embedded migration set.
func WithSource(fsys fs.FS, dir string) MigratorOption {
	return func(m *Migrator) {
		m.src = fsys
		m.dir = dir
	}
}

// NewMigrator creates a Migrator for db using the embedded steps.
func NewMigrator(db *sql.DB, opts ...MigratorOption) *Migrator {
	m := &Migrator{db: db, src: migrationsFS, dir: migrationsDir}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Up applies every pending step in ascending order. A failing step leaves the
// store at the last step that succeeded.
func (m *Migrator) Up(ctx context.Context) error {
	return m.run(ctx, func(mg *migrate.Migrate) error { return mg.Up() })
}

// Step applies the next n pending steps.
func (m *Migrator) Step(ctx context.Context, n int) error {
	if n <= 0 {
		return fmt.Errorf("step count must be positive, got %d", n)
	}
	return m.run(ctx, func(mg *migrate.Migrate) error { return mg.Steps(n) })
}

// Version returns the applied schema version; 0 means no step has run.
func (m *Migrator) Version() (uint, error) {
	mg, _, err := m.open()
	if err != nil {
		return 0, err
	}
	v, _, err := appliedVersion(mg)
	return v, err
}

// Latest returns the highest step version known to this build.
func (m *Migrator) Latest() (uint, error) {
	src, err := iofs.New(m.src, m.dir)
	if err != nil {
		return 0, fmt.Errorf("opening migration source: %w", err)
	}
	defer src.Close()
	return latestVersion(src)
}

func (m *Migrator) run(ctx context.Context, apply func(*migrate.Migrate) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	mg, src, err := m.open()
	if err != nil {
		return err
	}
	// mg.Close is deliberately not called: it would close the shared *sql.DB.
	defer src.Close()

	latest, err := latestVersion(src)
	if err != nil {
		return err
	}
	current, dirty, err := appliedVersion(mg)
	if err != nil {
		return err
	}
	if current > latest {
		return fmt.Errorf("%w: database is at version %d, this build knows up to %d",
			ErrUnsupportedSchema, current, latest)
	}
	if dirty {
		// A previous run died mid-step; the step's transaction was rolled back.
		if err := restore(mg, src, current); err != nil {
			return fmt.Errorf("%w: recovering dirty version %d: %w", ErrMigrationFailed, current, err)
		}
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			mg.GracefulStop <- true
		case <-done:
		}
	}()

	if err := apply(mg); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		if v, dirty, verr := appliedVersion(mg); verr == nil && dirty {
			if rerr := restore(mg, src, v); rerr != nil {
				return fmt.Errorf("%w: step %d: %w (restoring previous version: %v)", ErrMigrationFailed, v, err, rerr)
			}
			return fmt.Errorf("%w: step %d: %w", ErrMigrationFailed, v, err)
		}
		return fmt.Errorf("%w: %w", ErrMigrationFailed, err)
	}
	return nil
}

func (m *Migrator) open() (*migrate.Migrate, source.Driver, error) {
	src, err := iofs.New(m.src, m.dir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening migration source: %w", err)
	}
	driver, err := migratesqlite.WithInstance(m.db, &migratesqlite.Config{})
	if err != nil {
		src.Close()
		return nil, nil, fmt.Errorf("preparing migration driver: %w", ClassifyError(err))
	}
	mg, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		src.Close()
		return nil, nil, fmt.Errorf("creating migrator: %w", err)
	}
	return mg, src, nil
}

func appliedVersion(mg *migrate.Migrate) (uint, bool, error) {
	v, dirty, err := mg.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("reading schema version: %w", ClassifyError(err))
	}
	return v, dirty, nil
}

func latestVersion(src source.Driver) (uint, error) {
	v, err := src.First()
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading first migration: %w", err)
	}
	for {
		next, err := src.Next(v)
		if errors.Is(err, fs.ErrNotExist) {
			return v, nil
		}
		if err != nil {
			return 0, fmt.Errorf("reading migration after %d: %w", v, err)
		}
		v = next
	}
}

// restore forces the recorded version back to the step before failed.
func restore(mg *migrate.Migrate, src source.Driver, failed uint) error {
	prev, err := src.Prev(failed)
	if errors.Is(err, fs.ErrNotExist) {
		return mg.Force(database.NilVersion)
	}
	if err != nil {
		return err
	}
	return mg.Force(int(prev))
}
