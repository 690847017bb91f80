package db

import (
	"context"
	"database/sql"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func openBareDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(MemoryPath, WithoutMigrations())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	require.NoError(t, err)
	return n == 1
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, EnsureSchema(ctx, db))
	require.NoError(t, EnsureSchema(ctx, db))

	m := NewMigrator(db)
	v, err := m.Version()
	require.NoError(t, err)
	latest, err := m.Latest()
	require.NoError(t, err)
	assert.Equal(t, latest, v)
	assert.Equal(t, uint(3), latest)
}

func TestEnsureSchema_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	for _, table := range []string{"time_entries", "projects", "schema_migrations"} {
		assert.True(t, tableExists(t, db, table), "table %s should exist", table)
	}
}

func TestEnsureSchema_CreatesIndexes(t *testing.T) {
	db := openTestDB(t)

	expected := []string{
		"idx_time_entries_start",
		"idx_time_entries_project",
		"idx_time_entries_label",
	}
	for _, idx := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name=?`, idx).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
	}
}

func TestOpenDB_Pragmas(t *testing.T) {
	db := openTestDB(t)

	var fk int
	require.NoError(t, db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk, "foreign keys should be enabled")

	// In-memory databases report "memory"; WAL only applies to files.
	var mode string
	require.NoError(t, db.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "memory", mode)
}

func TestMigrator_StepsApplyInOrder(t *testing.T) {
	db := openBareDB(t)
	ctx := context.Background()
	m := NewMigrator(db)

	v, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(0), v)

	require.NoError(t, m.Step(ctx, 1))
	v, err = m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)
	assert.True(t, tableExists(t, db, "time_entries"))
	assert.False(t, tableExists(t, db, "projects"))

	require.NoError(t, m.Step(ctx, 1))
	v, err = m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(2), v)
	assert.True(t, tableExists(t, db, "projects"))

	require.NoError(t, m.Up(ctx))
	v, err = m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(3), v)
}

func TestMigrator_StepRejectsNonPositive(t *testing.T) {
	db := openBareDB(t)
	assert.Error(t, NewMigrator(db).Step(context.Background(), 0))
}

func TestMigrator_ProjectCatalogueBackfill(t *testing.T) {
	db := openBareDB(t)
	ctx := context.Background()
	m := NewMigrator(db)

	require.NoError(t, m.Step(ctx, 1))
	_, err := db.Exec(`INSERT INTO time_entries (id, project, start_at, end_at, created_at, updated_at)
		VALUES ('a', 'alpha', '2024-01-01T09:00:00.000000000Z', '2024-01-01T10:00:00.000000000Z', 'x', 'x'),
		       ('b', 'alpha', '2024-01-02T09:00:00.000000000Z', '2024-01-02T10:00:00.000000000Z', 'x', 'x'),
		       ('c', '',      '2024-01-03T09:00:00.000000000Z', '2024-01-03T10:00:00.000000000Z', 'x', 'x')`)
	require.NoError(t, err)

	require.NoError(t, m.Up(ctx))

	var names []string
	rows, err := db.Query(`SELECT name FROM projects ORDER BY name`)
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var n string
		require.NoError(t, rows.Scan(&n))
		names = append(names, n)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"alpha"}, names)
}

func TestMigrator_OpenMarkerAllowsOneRunningEntry(t *testing.T) {
	db := openTestDB(t)

	insert := `INSERT INTO time_entries (id, start_at, end_at, open_marker, created_at, updated_at)
		VALUES (?, '2024-01-01T09:00:00.000000000Z', NULL, 1, 'x', 'x')`
	_, err := db.Exec(insert, "first")
	require.NoError(t, err)

	_, err = db.Exec(insert, "second")
	require.Error(t, err)
	assert.ErrorIs(t, ClassifyError(err), ErrConstraintViolation)
}

func TestMigrator_EndBeforeStartRejected(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO time_entries (id, start_at, end_at, open_marker, created_at, updated_at)
		VALUES ('x', '2024-01-01T09:00:00.000000000Z', '2024-01-01T08:00:00.000000000Z', NULL, 'x', 'x')`)
	require.Error(t, err)
	assert.ErrorIs(t, ClassifyError(err), ErrConstraintViolation)
}

func failingSteps() fstest.MapFS {
	return fstest.MapFS{
		"steps/1_create_a.up.sql": {Data: []byte(`CREATE TABLE a (id INTEGER);`)},
		"steps/2_create_b.up.sql": {Data: []byte(`CREATE TABLE b (id INTEGER); INSERT INTO missing_table VALUES (1);`)},
		"steps/3_create_c.up.sql": {Data: []byte(`CREATE TABLE c (id INTEGER);`)},
	}
}

func TestMigrator_FailedStepKeepsPreviousVersion(t *testing.T) {
	db := openBareDB(t)
	ctx := context.Background()
	m := NewMigrator(db, WithSource(failingSteps(), "steps"))

	err := m.Up(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMigrationFailed)

	v, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), v, "store should stay at the last successful step")
	assert.True(t, tableExists(t, db, "a"))
	assert.False(t, tableExists(t, db, "b"), "failed step must be rolled back")
	assert.False(t, tableExists(t, db, "c"))

	fixed := failingSteps()
	fixed["steps/2_create_b.up.sql"] = &fstest.MapFile{Data: []byte(`CREATE TABLE b (id INTEGER);`)}
	require.NoError(t, NewMigrator(db, WithSource(fixed, "steps")).Up(ctx))
	assert.True(t, tableExists(t, db, "b"))
	assert.True(t, tableExists(t, db, "c"))
}

func TestMigrator_FirstStepFailureLeavesNoVersion(t *testing.T) {
	db := openBareDB(t)
	steps := fstest.MapFS{
		"steps/1_broken.up.sql": {Data: []byte(`CREATE TABLE;`)},
	}
	m := NewMigrator(db, WithSource(steps, "steps"))

	err := m.Up(context.Background())
	assert.ErrorIs(t, err, ErrMigrationFailed)

	v, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(0), v)
}

func TestMigrator_UnknownFutureVersion(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`UPDATE schema_migrations SET version = 99`)
	require.NoError(t, err)

	err = EnsureSchema(context.Background(), db)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedSchema)
}

func TestMigrator_RecoversDirtyVersion(t *testing.T) {
	db := openTestDB(t)

	// Simulate a crash while step 3 was running.
	_, err := db.Exec(`UPDATE schema_migrations SET dirty = 1`)
	require.NoError(t, err)

	require.NoError(t, EnsureSchema(context.Background(), db))

	m := NewMigrator(db)
	v, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(3), v)
}

func TestMigrator_CancelledContext(t *testing.T) {
	db := openBareDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewMigrator(db).Up(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
