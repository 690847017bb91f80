package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/alexanderramin/timekeeper/internal/db"
	"github.com/alexanderramin/timekeeper/internal/domain"
	"github.com/google/uuid"
)

const entryColumns = `id, project, label, note, start_at, end_at`

// SQLiteEntryRepo implements EntryRepo using a SQLite database.
type SQLiteEntryRepo struct {
	db  db.DBTX
	loc *time.Location
	now func() time.Time
}

// EntryRepoOption configures a SQLiteEntryRepo.
type EntryRepoOption func(*SQLiteEntryRepo)

// WithLocation sets the location timestamps are returned in. Defaults to time.Local.
func WithLocation(loc *time.Location) EntryRepoOption {
	return func(r *SQLiteEntryRepo) { r.loc = loc }
}

// NewSQLiteEntryRepo creates a new SQLiteEntryRepo.
func NewSQLiteEntryRepo(conn db.DBTX, opts ...EntryRepoOption) *SQLiteEntryRepo {
	r := &SQLiteEntryRepo{db: conn, loc: time.Local, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithTx returns a copy of the repo bound to tx.
func (r *SQLiteEntryRepo) WithTx(tx db.DBTX) EntryRepo {
	cp := *r
	cp.db = tx
	return &cp
}

// Insert assigns a fresh ID and stores e. The returned entry is read back
// from the insert itself, so it reflects exactly what was persisted.
func (r *SQLiteEntryRepo) Insert(ctx context.Context, e domain.TimeEntry) (*domain.TimeEntry, error) {
	now := formatTimestamp(r.now())
	query := `INSERT INTO time_entries (id, project, label, note, start_at, end_at, open_marker, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING ` + entryColumns
	row := r.db.QueryRowContext(ctx, query,
		uuid.New().String(),
		e.Project,
		e.Label,
		e.Note,
		formatTimestamp(e.Start),
		nullableTimestamp(e.End),
		openMarker(e.End),
		now,
		now,
	)
	stored, err := r.scanEntry(row)
	if err != nil {
		return nil, fmt.Errorf("inserting time entry: %w", err)
	}
	return stored, nil
}

// Update applies patch in a single statement. Columns are computed from the
// pre-update row, so open_marker follows the patch rather than the new end_at.
func (r *SQLiteEntryRepo) Update(ctx context.Context, id string, patch domain.EntryPatch) (*domain.TimeEntry, error) {
	query := `UPDATE time_entries SET
			project     = COALESCE(?1, project),
			label       = COALESCE(?2, label),
			note        = COALESCE(?3, note),
			start_at    = COALESCE(?4, start_at),
			end_at      = CASE WHEN ?6 THEN NULL ELSE COALESCE(?5, end_at) END,
			open_marker = CASE WHEN ?6 THEN 1 WHEN ?5 IS NOT NULL THEN NULL ELSE open_marker END,
			updated_at  = ?7
		WHERE id = ?8
		RETURNING ` + entryColumns
	row := r.db.QueryRowContext(ctx, query,
		nullableString(patch.Project),
		nullableString(patch.Label),
		nullableString(patch.Note),
		nullableTimestamp(patch.Start),
		nullableTimestamp(patch.End),
		boolToInt(patch.Reopen),
		formatTimestamp(r.now()),
		id,
	)
	updated, err := r.scanEntry(row)
	if err != nil {
		return nil, fmt.Errorf("updating time entry %s: %w", id, err)
	}
	return updated, nil
}

func (r *SQLiteEntryRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM time_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting time entry %s: %w", id, db.ClassifyError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting time entry %s: %w", id, db.ClassifyError(err))
	}
	if n == 0 {
		return fmt.Errorf("time entry %s: %w", id, ErrNotFound)
	}
	return nil
}

// Get returns the entry with the given ID, or nil when there is none.
func (r *SQLiteEntryRepo) Get(ctx context.Context, id string) (*domain.TimeEntry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM time_entries WHERE id = ?`, id)
	return r.optional(r.scanEntry(row))
}

// Open returns the running entry, or nil when nothing is running.
func (r *SQLiteEntryRepo) Open(ctx context.Context) (*domain.TimeEntry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM time_entries WHERE open_marker = 1`)
	return r.optional(r.scanEntry(row))
}

// Query streams the entries matching f, ordered by start. Each iteration
// re-runs the query against the current state. The cursor holds the
// connection until iteration ends, so callers must not issue other store
// calls from inside the loop.
func (r *SQLiteEntryRepo) Query(ctx context.Context, f domain.EntryFilter) iter.Seq2[domain.TimeEntry, error] {
	return func(yield func(domain.TimeEntry, error) bool) {
		query, args := buildEntryQuery(f)
		rows, err := r.db.QueryContext(ctx, query, args...)
		if err != nil {
			yield(domain.TimeEntry{}, fmt.Errorf("querying time entries: %w", db.ClassifyError(err)))
			return
		}
		defer rows.Close()

		for rows.Next() {
			e, err := r.scanEntry(rows)
			if err != nil {
				yield(domain.TimeEntry{}, err)
				return
			}
			if !yield(*e, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(domain.TimeEntry{}, fmt.Errorf("iterating time entries: %w", db.ClassifyError(err)))
		}
	}
}

func buildEntryQuery(f domain.EntryFilter) (string, []any) {
	var where []string
	var args []any
	if f.Range != nil {
		if !f.Range.From.IsZero() {
			where = append(where, "start_at >= ?")
			args = append(args, formatTimestamp(f.Range.From))
		}
		if !f.Range.To.IsZero() {
			where = append(where, "start_at < ?")
			args = append(args, formatTimestamp(f.Range.To))
		}
	}
	if f.Project != nil {
		where = append(where, "project = ?")
		args = append(args, *f.Project)
	}
	if f.Label != nil {
		where = append(where, "label = ?")
		args = append(args, *f.Label)
	}

	query := `SELECT ` + entryColumns + ` FROM time_entries`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	return query + ` ORDER BY start_at, id`, args
}

func (r *SQLiteEntryRepo) optional(e *domain.TimeEntry, err error) (*domain.TimeEntry, error) {
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// scanEntry scans a single entry. A missing row maps to ErrNotFound.
func (r *SQLiteEntryRepo) scanEntry(row rowScanner) (*domain.TimeEntry, error) {
	var e domain.TimeEntry
	var startStr string
	var endStr sql.NullString

	if err := row.Scan(&e.ID, &e.Project, &e.Label, &e.Note, &startStr, &endStr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("time entry: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning time entry: %w", db.ClassifyError(err))
	}

	var err error
	if e.Start, err = parseTimestamp(startStr, r.loc); err != nil {
		return nil, fmt.Errorf("parsing start_at: %w", err)
	}
	if e.End, err = parseNullableTimestamp(endStr, r.loc); err != nil {
		return nil, fmt.Errorf("parsing end_at: %w", err)
	}
	return &e, nil
}
