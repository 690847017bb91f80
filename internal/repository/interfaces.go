package repository

import (
	"context"
	"iter"

	"github.com/alexanderramin/timekeeper/internal/db"
	"github.com/alexanderramin/timekeeper/internal/domain"
)

// EntryRepo is transactional CRUD over time entries. It applies no domain
// policy; the database constraints are its only guard.
type EntryRepo interface {
	Insert(ctx context.Context, e domain.TimeEntry) (*domain.TimeEntry, error)
	Update(ctx context.Context, id string, patch domain.EntryPatch) (*domain.TimeEntry, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*domain.TimeEntry, error)
	Open(ctx context.Context) (*domain.TimeEntry, error)
	Query(ctx context.Context, f domain.EntryFilter) iter.Seq2[domain.TimeEntry, error]
	WithTx(tx db.DBTX) EntryRepo
}

// ProjectRepo manages the project name catalogue.
type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	Ensure(ctx context.Context, name string) error
	GetByName(ctx context.Context, name string) (*domain.Project, error)
	List(ctx context.Context) ([]*domain.Project, error)
	SetProtected(ctx context.Context, name string, protected bool) error
	Delete(ctx context.Context, name string) error
	WithTx(tx db.DBTX) ProjectRepo
}
