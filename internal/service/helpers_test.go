package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/timekeeper/internal/db"
	"github.com/alexanderramin/timekeeper/internal/repository"
	"github.com/alexanderramin/timekeeper/internal/testutil"
)

type testRepos struct {
	db       *sql.DB
	entries  repository.EntryRepo
	projects repository.ProjectRepo
	uow      db.UnitOfWork
}

func setupRepos(t *testing.T) testRepos {
	t.Helper()
	return reposFor(testutil.NewTestDB(t))
}

func reposFor(database *sql.DB) testRepos {
	return testRepos{
		db:       database,
		entries:  repository.NewSQLiteEntryRepo(database, repository.WithLocation(time.UTC)),
		projects: repository.NewSQLiteProjectRepo(database),
		uow:      testutil.NewTestUoW(database),
	}
}

func (r testRepos) manager(opts ...Option) TimeEntryManager {
	return NewTimeEntryManager(r.entries, r.projects, r.uow, opts...)
}

// recordingObserver keeps every use-case event for assertions.
type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, event UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
}

func (o *recordingObserver) names() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	names := make([]string, len(o.events))
	for i, e := range o.events {
		names[i] = e.Name
	}
	return names
}
