package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/timekeeper/internal/db"
	"github.com/alexanderramin/timekeeper/internal/domain"
	"github.com/google/uuid"
)

// SQLiteProjectRepo implements ProjectRepo using a SQLite database.
type SQLiteProjectRepo struct {
	db db.DBTX
}

// NewSQLiteProjectRepo creates a new SQLiteProjectRepo.
func NewSQLiteProjectRepo(conn db.DBTX) *SQLiteProjectRepo {
	return &SQLiteProjectRepo{db: conn}
}

func (r *SQLiteProjectRepo) WithTx(tx db.DBTX) ProjectRepo {
	return &SQLiteProjectRepo{db: tx}
}

// Create stores p. An empty ID is replaced by a fresh one; a duplicate name
// fails with ErrConstraintViolation.
func (r *SQLiteProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (id, name, protected, created_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.Name, boolToInt(p.Protected), formatTimestamp(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting project %q: %w", p.Name, db.ClassifyError(err))
	}
	return nil
}

// Ensure adds name to the catalogue if it is not there yet.
func (r *SQLiteProjectRepo) Ensure(ctx context.Context, name string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (id, name, protected, created_at) VALUES (?, ?, 0, ?)
		ON CONFLICT(name) DO NOTHING`,
		uuid.New().String(), name, formatTimestamp(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("ensuring project %q: %w", name, db.ClassifyError(err))
	}
	return nil
}

// GetByName returns the named project, or nil when it is not catalogued.
func (r *SQLiteProjectRepo) GetByName(ctx context.Context, name string) (*domain.Project, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, protected, created_at FROM projects WHERE name = ?`, name)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting project %q: %w", name, err)
	}
	return p, nil
}

func (r *SQLiteProjectRepo) List(ctx context.Context) ([]*domain.Project, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, protected, created_at FROM projects ORDER BY name COLLATE NOCASE, name`)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", db.ClassifyError(err))
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("listing projects: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing projects: %w", db.ClassifyError(err))
	}
	return projects, nil
}

func (r *SQLiteProjectRepo) SetProtected(ctx context.Context, name string, protected bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE projects SET protected = ? WHERE name = ?`, boolToInt(protected), name)
	if err != nil {
		return fmt.Errorf("updating project %q: %w", name, db.ClassifyError(err))
	}
	return requireAffected(res, fmt.Sprintf("project %q", name))
}

// Delete removes name from the catalogue. Protected projects cannot be
// removed. Entries referencing the name are left untouched.
func (r *SQLiteProjectRepo) Delete(ctx context.Context, name string) error {
	p, err := r.GetByName(ctx, name)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("project %q: %w", name, ErrNotFound)
	}
	if p.Protected {
		return fmt.Errorf("project %q is protected: %w", name, ErrConstraintViolation)
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE name = ? AND protected = 0`, name)
	if err != nil {
		return fmt.Errorf("deleting project %q: %w", name, db.ClassifyError(err))
	}
	return requireAffected(res, fmt.Sprintf("project %q", name))
}

func requireAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", what, db.ClassifyError(err))
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}

// scanProject returns sql.ErrNoRows unwrapped so callers can map absence.
func scanProject(row rowScanner) (*domain.Project, error) {
	var p domain.Project
	var protected int
	var createdStr string
	if err := row.Scan(&p.ID, &p.Name, &protected, &createdStr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning project: %w", db.ClassifyError(err))
	}
	p.Protected = intToBool(protected)

	created, err := parseTimestamp(createdStr, time.Local)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	p.CreatedAt = created
	return &p, nil
}
