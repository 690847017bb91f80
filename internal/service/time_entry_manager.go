package service

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"
	"time"

	"github.com/alexanderramin/timekeeper/internal/db"
	"github.com/alexanderramin/timekeeper/internal/domain"
	"github.com/alexanderramin/timekeeper/internal/repository"
)

type timeEntryManager struct {
	// mu serializes every check-then-act sequence in this process. The
	// open_marker column guards the same invariant inside the store.
	mu       sync.Mutex
	entries  repository.EntryRepo
	projects repository.ProjectRepo
	uow      db.UnitOfWork
	opts     options
}

func NewTimeEntryManager(
	entries repository.EntryRepo,
	projects repository.ProjectRepo,
	uow db.UnitOfWork,
	opts ...Option,
) TimeEntryManager {
	return &timeEntryManager{
		entries:  entries,
		projects: projects,
		uow:      uow,
		opts:     buildOptions(opts),
	}
}

func (m *timeEntryManager) now(at time.Time) time.Time {
	if at.IsZero() {
		return m.opts.clock()
	}
	return at
}

func (m *timeEntryManager) StartSession(ctx context.Context, project, label string, at time.Time) (entry *domain.TimeEntry, err error) {
	startedAt := time.Now()
	project = domain.NormalizeProjectName(project)
	at = m.now(at)
	fields := map[string]any{"project": project, "policy": string(m.opts.policy)}
	defer func() {
		observe(ctx, m.opts.observer, "start-session", startedAt, fields, err)
	}()

	m.mu.Lock()
	defer m.mu.Unlock()

	err = m.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		entries := m.entries.WithTx(tx)

		open, err := entries.Open(ctx)
		if err != nil {
			return err
		}
		if open != nil {
			if m.opts.policy != domain.PolicyAutoClose {
				return fmt.Errorf("session %s running since %s: %w",
					open.DisplayID(), open.Start.Format(time.DateTime), domain.ErrSessionAlreadyOpen)
			}
			if at.Before(open.Start) {
				return fmt.Errorf("closing session %s at %s: %w",
					open.DisplayID(), at.Format(time.DateTime), domain.ErrInvalidTimeRange)
			}
			if _, err := entries.Update(ctx, open.ID, domain.EntryPatch{End: &at}); err != nil {
				return err
			}
			fields["auto_closed"] = open.ID
		}

		created, err := entries.Insert(ctx, domain.TimeEntry{Project: project, Label: label, Start: at})
		if err != nil {
			if errors.Is(err, db.ErrConstraintViolation) {
				return fmt.Errorf("%w: %w", domain.ErrSessionAlreadyOpen, err)
			}
			return err
		}
		if project != "" {
			if err := m.projects.WithTx(tx).Ensure(ctx, project); err != nil {
				return err
			}
		}
		entry = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	fields["entry_id"] = entry.ID
	return entry, nil
}

func (m *timeEntryManager) StopSession(ctx context.Context, at time.Time) (entry *domain.TimeEntry, err error) {
	startedAt := time.Now()
	at = m.now(at)
	fields := map[string]any{}
	defer func() {
		observe(ctx, m.opts.observer, "stop-session", startedAt, fields, err)
	}()

	m.mu.Lock()
	defer m.mu.Unlock()

	err = m.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		entries := m.entries.WithTx(tx)

		open, err := entries.Open(ctx)
		if err != nil {
			return err
		}
		if open == nil {
			return domain.ErrNoOpenSession
		}
		fields["entry_id"] = open.ID
		if at.Before(open.Start) {
			return fmt.Errorf("stopping session %s at %s before its start %s: %w",
				open.DisplayID(), at.Format(time.DateTime), open.Start.Format(time.DateTime), domain.ErrInvalidTimeRange)
		}

		entry, err = entries.Update(ctx, open.ID, domain.EntryPatch{End: &at})
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (m *timeEntryManager) EditSession(ctx context.Context, id string, edit domain.SessionEdit) (entry *domain.TimeEntry, err error) {
	startedAt := time.Now()
	fields := map[string]any{"entry_id": id, "reopen": edit.End == nil}
	defer func() {
		observe(ctx, m.opts.observer, "edit-session", startedAt, fields, err)
	}()

	if !domain.ValidRange(edit.Start, edit.End) {
		return nil, fmt.Errorf("editing session %s: %w", id, domain.ErrInvalidTimeRange)
	}
	if edit.Project != nil {
		p := domain.NormalizeProjectName(*edit.Project)
		edit.Project = &p
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	err = m.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		entries := m.entries.WithTx(tx)

		existing, err := entries.Get(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
		}

		if edit.End == nil {
			open, err := entries.Open(ctx)
			if err != nil {
				return err
			}
			if open != nil && open.ID != id {
				return fmt.Errorf("re-opening session %s while %s is running: %w",
					existing.DisplayID(), open.DisplayID(), domain.ErrSessionAlreadyOpen)
			}
		}

		updated, err := entries.Update(ctx, id, edit.Patch())
		switch {
		case errors.Is(err, db.ErrNotFound):
			return fmt.Errorf("%w: %w", domain.ErrNotFound, err)
		case errors.Is(err, db.ErrConstraintViolation) && edit.End == nil:
			return fmt.Errorf("%w: %w", domain.ErrSessionAlreadyOpen, err)
		case errors.Is(err, db.ErrConstraintViolation):
			return fmt.Errorf("%w: %w", domain.ErrInvalidTimeRange, err)
		case err != nil:
			return err
		}

		if edit.Project != nil && *edit.Project != "" {
			if err := m.projects.WithTx(tx).Ensure(ctx, *edit.Project); err != nil {
				return err
			}
		}
		entry = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (m *timeEntryManager) DeleteSession(ctx context.Context, id string) (err error) {
	startedAt := time.Now()
	defer func() {
		observe(ctx, m.opts.observer, "delete-session", startedAt, map[string]any{"entry_id": id}, err)
	}()

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.entries.Delete(ctx, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: %w", domain.ErrNotFound, err)
		}
		return err
	}
	return nil
}

// CurrentOpenSession reads the running session from the store on every call.
func (m *timeEntryManager) CurrentOpenSession(ctx context.Context) (*domain.TimeEntry, error) {
	return m.entries.Open(ctx)
}

func (m *timeEntryManager) Get(ctx context.Context, id string) (*domain.TimeEntry, error) {
	return m.entries.Get(ctx, id)
}

func (m *timeEntryManager) Query(ctx context.Context, f domain.EntryFilter) iter.Seq2[domain.TimeEntry, error] {
	return m.entries.Query(ctx, f)
}

func (m *timeEntryManager) DurationOf(e domain.TimeEntry, now time.Time) time.Duration {
	return e.Duration(now)
}
