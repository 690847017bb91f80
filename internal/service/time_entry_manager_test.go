package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alexanderramin/timekeeper/internal/db"
	"github.com/alexanderramin/timekeeper/internal/domain"
	"github.com/alexanderramin/timekeeper/internal/repository"
	"github.com/alexanderramin/timekeeper/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartSession_SecondStartRejectedThenStop(t *testing.T) {
	repos := setupRepos(t)
	mgr := repos.manager()
	ctx := context.Background()

	nine := testutil.At(2024, 1, 1, 9, 0)
	nineOhFive := testutil.At(2024, 1, 1, 9, 5)

	started, err := mgr.StartSession(ctx, "Writing", "draft", nine)
	require.NoError(t, err)
	assert.True(t, started.IsOpen())
	assert.True(t, started.Start.Equal(nine))

	_, err = mgr.StartSession(ctx, "Writing", "draft", nineOhFive)
	assert.ErrorIs(t, err, domain.ErrSessionAlreadyOpen)

	stopped, err := mgr.StopSession(ctx, nineOhFive)
	require.NoError(t, err)
	assert.Equal(t, started.ID, stopped.ID)
	require.NotNil(t, stopped.End)
	assert.True(t, stopped.End.Equal(nineOhFive))
	assert.Equal(t, 5*time.Minute, mgr.DurationOf(*stopped, time.Time{}))

	open, err := mgr.CurrentOpenSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, open)
}

func TestStartSession_RegistersProject(t *testing.T) {
	repos := setupRepos(t)
	mgr := repos.manager()
	ctx := context.Background()

	_, err := mgr.StartSession(ctx, "  Reading  ", "", testutil.At(2024, 1, 1, 9, 0))
	require.NoError(t, err)

	p, err := repos.projects.GetByName(ctx, "Reading")
	require.NoError(t, err)
	require.NotNil(t, p, "project name is trimmed and catalogued")
}

func TestStartSession_EmptyProjectNotCatalogued(t *testing.T) {
	repos := setupRepos(t)
	mgr := repos.manager()
	ctx := context.Background()

	_, err := mgr.StartSession(ctx, "", "", testutil.At(2024, 1, 1, 9, 0))
	require.NoError(t, err)

	list, err := repos.projects.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStartSession_ZeroTimeUsesClock(t *testing.T) {
	repos := setupRepos(t)
	now := testutil.At(2024, 2, 1, 8, 30)
	mgr := repos.manager(WithClock(func() time.Time { return now }))

	started, err := mgr.StartSession(context.Background(), "Ops", "", time.Time{})
	require.NoError(t, err)
	assert.True(t, started.Start.Equal(now))
}

func TestStartSession_AutoClosePolicy(t *testing.T) {
	repos := setupRepos(t)
	mgr := repos.manager(WithOpenSessionPolicy(domain.PolicyAutoClose))
	ctx := context.Background()

	first, err := mgr.StartSession(ctx, "A", "", testutil.At(2024, 1, 1, 9, 0))
	require.NoError(t, err)

	ten := testutil.At(2024, 1, 1, 10, 0)
	second, err := mgr.StartSession(ctx, "B", "", ten)
	require.NoError(t, err)

	closed, err := mgr.Get(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, closed.End)
	assert.True(t, closed.End.Equal(ten), "previous session closed at the new start")

	open, err := mgr.CurrentOpenSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, second.ID, open.ID)
}

func TestStartSession_AutoCloseBeforeOpenStartRejected(t *testing.T) {
	repos := setupRepos(t)
	mgr := repos.manager(WithOpenSessionPolicy(domain.PolicyAutoClose))
	ctx := context.Background()

	first, err := mgr.StartSession(ctx, "A", "", testutil.At(2024, 1, 1, 9, 0))
	require.NoError(t, err)

	_, err = mgr.StartSession(ctx, "B", "", testutil.At(2024, 1, 1, 8, 0))
	assert.ErrorIs(t, err, domain.ErrInvalidTimeRange)

	open, err := mgr.CurrentOpenSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, first.ID, open.ID, "nothing changed")

	entries, err := repository.Collect(mgr.Query(ctx, domain.EntryFilter{}))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStartSession_ConcurrentExactlyOneSucceeds(t *testing.T) {
	database, _ := testutil.NewFileTestDB(t)
	repos := reposFor(database)
	mgr := repos.manager()
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	var succeeded, rejected atomic.Int32
	at := testutil.At(2024, 1, 1, 9, 0)

	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := mgr.StartSession(ctx, "Race", "", at.Add(time.Duration(i)*time.Second))
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, domain.ErrSessionAlreadyOpen):
				rejected.Add(1)
			default:
				t.Errorf("worker %d: unexpected error: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, int32(workers-1), rejected.Load())

	entries, err := repository.Collect(mgr.Query(ctx, domain.EntryFilter{}))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStartSession_ManagersSharingStoreStillExclusive(t *testing.T) {
	database, _ := testutil.NewFileTestDB(t)
	repos := reposFor(database)
	ctx := context.Background()

	// Two managers have separate mutexes; the store still enforces one open entry.
	a := repos.manager()
	b := repos.manager()

	_, err := a.StartSession(ctx, "", "", testutil.At(2024, 1, 1, 9, 0))
	require.NoError(t, err)
	_, err = b.StartSession(ctx, "", "", testutil.At(2024, 1, 1, 9, 1))
	assert.ErrorIs(t, err, domain.ErrSessionAlreadyOpen)
}

func TestStartSession_ConstraintViolationMapsToAlreadyOpen(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()

	// An open entry the manager's pre-check cannot see: it is inserted by a
	// repo that bypasses the manager, then hidden behind a stub Open.
	_, err := repos.entries.Insert(ctx, testutil.NewTestEntry(testutil.At(2024, 1, 1, 8, 0), testutil.Open()))
	require.NoError(t, err)

	mgr := NewTimeEntryManager(blindEntryRepo{repos.entries}, repos.projects, repos.uow)
	_, err = mgr.StartSession(ctx, "", "", testutil.At(2024, 1, 1, 9, 0))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSessionAlreadyOpen)
	assert.ErrorIs(t, err, repository.ErrConstraintViolation, "storage cause is preserved")
}

// blindEntryRepo reports no open entry, simulating a racing writer.
type blindEntryRepo struct {
	repository.EntryRepo
}

func (r blindEntryRepo) Open(context.Context) (*domain.TimeEntry, error) { return nil, nil }

func (r blindEntryRepo) WithTx(tx db.DBTX) repository.EntryRepo {
	return blindEntryRepo{r.EntryRepo.WithTx(tx)}
}

func TestStartSession_CatalogueFailureRollsBackEntry(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()
	boom := errors.New("disk on fire")

	uow := &testutil.FailOnNthExecUoW{DB: repos.db, FailOn: 1, Err: boom}
	mgr := NewTimeEntryManager(repos.entries, repos.projects, uow)

	_, err := mgr.StartSession(ctx, "Writing", "", testutil.At(2024, 1, 1, 9, 0))
	assert.ErrorIs(t, err, boom)

	open, err := mgr.CurrentOpenSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, open, "insert rolled back with the failed catalogue write")
}

func TestStopSession_NoOpenSession(t *testing.T) {
	mgr := setupRepos(t).manager()

	_, err := mgr.StopSession(context.Background(), testutil.At(2024, 1, 1, 9, 0))
	assert.ErrorIs(t, err, domain.ErrNoOpenSession)
}

func TestStopSession_BeforeStartRejected(t *testing.T) {
	mgr := setupRepos(t).manager()
	ctx := context.Background()

	started, err := mgr.StartSession(ctx, "", "", testutil.At(2024, 1, 1, 9, 0))
	require.NoError(t, err)

	_, err = mgr.StopSession(ctx, testutil.At(2024, 1, 1, 8, 59))
	assert.ErrorIs(t, err, domain.ErrInvalidTimeRange)

	open, err := mgr.CurrentOpenSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, started.ID, open.ID)
}

func TestStopSession_AtStartGivesZeroDuration(t *testing.T) {
	mgr := setupRepos(t).manager()
	ctx := context.Background()

	at := testutil.At(2024, 1, 1, 9, 0)
	_, err := mgr.StartSession(ctx, "", "", at)
	require.NoError(t, err)

	stopped, err := mgr.StopSession(ctx, at)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), mgr.DurationOf(*stopped, at))
}

func TestEditSession_EndBeforeStartLeavesRowUnchanged(t *testing.T) {
	repos := setupRepos(t)
	mgr := repos.manager()
	ctx := context.Background()

	orig, err := repos.entries.Insert(ctx, testutil.NewTestEntry(testutil.At(2024, 1, 1, 9, 0), testutil.WithNote("keep")))
	require.NoError(t, err)

	end := testutil.At(2024, 1, 1, 8, 0)
	note := "changed"
	_, err = mgr.EditSession(ctx, orig.ID, domain.SessionEdit{
		Start: testutil.At(2024, 1, 1, 9, 0),
		End:   &end,
		Note:  &note,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTimeRange)

	fetched, err := mgr.Get(ctx, orig.ID)
	require.NoError(t, err)
	assert.Equal(t, orig, fetched)
}

func TestEditSession_UpdatesFields(t *testing.T) {
	repos := setupRepos(t)
	mgr := repos.manager()
	ctx := context.Background()

	orig, err := repos.entries.Insert(ctx, testutil.NewTestEntry(testutil.At(2024, 1, 1, 9, 0)))
	require.NoError(t, err)

	start := testutil.At(2024, 1, 1, 8, 30)
	end := testutil.At(2024, 1, 1, 11, 0)
	edited, err := mgr.EditSession(ctx, orig.ID, domain.SessionEdit{
		Start:   start,
		End:     &end,
		Project: testutil.Ptr("Planning"),
		Label:   testutil.Ptr("review"),
		Note:    testutil.Ptr("moved"),
	})
	require.NoError(t, err)
	assert.Equal(t, orig.ID, edited.ID)
	assert.True(t, edited.Start.Equal(start))
	assert.True(t, edited.End.Equal(end))
	assert.Equal(t, "Planning", edited.Project)
	assert.Equal(t, "review", edited.Label)
	assert.Equal(t, "moved", edited.Note)

	p, err := repos.projects.GetByName(ctx, "Planning")
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestEditSession_NotFound(t *testing.T) {
	mgr := setupRepos(t).manager()

	end := testutil.At(2024, 1, 1, 10, 0)
	_, err := mgr.EditSession(context.Background(), "missing", domain.SessionEdit{
		Start: testutil.At(2024, 1, 1, 9, 0),
		End:   &end,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEditSession_ReopenWhileAnotherOpenRejected(t *testing.T) {
	repos := setupRepos(t)
	mgr := repos.manager()
	ctx := context.Background()

	closed, err := repos.entries.Insert(ctx, testutil.NewTestEntry(testutil.At(2024, 1, 1, 9, 0)))
	require.NoError(t, err)
	_, err = mgr.StartSession(ctx, "", "", testutil.At(2024, 1, 1, 11, 0))
	require.NoError(t, err)

	_, err = mgr.EditSession(ctx, closed.ID, domain.SessionEdit{Start: closed.Start})
	assert.ErrorIs(t, err, domain.ErrSessionAlreadyOpen)

	fetched, err := mgr.Get(ctx, closed.ID)
	require.NoError(t, err)
	assert.False(t, fetched.IsOpen())
}

func TestEditSession_ReopenWhenNothingRunning(t *testing.T) {
	repos := setupRepos(t)
	mgr := repos.manager()
	ctx := context.Background()

	closed, err := repos.entries.Insert(ctx, testutil.NewTestEntry(testutil.At(2024, 1, 1, 9, 0)))
	require.NoError(t, err)

	reopened, err := mgr.EditSession(ctx, closed.ID, domain.SessionEdit{Start: closed.Start})
	require.NoError(t, err)
	assert.True(t, reopened.IsOpen())

	open, err := mgr.CurrentOpenSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, closed.ID, open.ID)
}

func TestEditSession_OpenEntryKeepsRunning(t *testing.T) {
	mgr := setupRepos(t).manager()
	ctx := context.Background()

	started, err := mgr.StartSession(ctx, "", "", testutil.At(2024, 1, 1, 9, 0))
	require.NoError(t, err)

	earlier := testutil.At(2024, 1, 1, 8, 45)
	edited, err := mgr.EditSession(ctx, started.ID, domain.SessionEdit{Start: earlier})
	require.NoError(t, err)
	assert.True(t, edited.IsOpen())
	assert.True(t, edited.Start.Equal(earlier))
}

func TestDeleteSession(t *testing.T) {
	repos := setupRepos(t)
	mgr := repos.manager()
	ctx := context.Background()

	err := mgr.DeleteSession(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	e, err := repos.entries.Insert(ctx, testutil.NewTestEntry(testutil.At(2024, 1, 1, 9, 0)))
	require.NoError(t, err)
	require.NoError(t, mgr.DeleteSession(ctx, e.ID))

	fetched, err := mgr.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Nil(t, fetched)
}

func TestCurrentOpenSession_ReflectsStoreChanges(t *testing.T) {
	repos := setupRepos(t)
	mgr := repos.manager()
	ctx := context.Background()

	started, err := mgr.StartSession(ctx, "", "", testutil.At(2024, 1, 1, 9, 0))
	require.NoError(t, err)

	// Stopped behind the manager's back.
	end := testutil.At(2024, 1, 1, 10, 0)
	_, err = repos.entries.Update(ctx, started.ID, domain.EntryPatch{End: &end})
	require.NoError(t, err)

	open, err := mgr.CurrentOpenSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, open)
}

func TestDurationOf_NeverNegative(t *testing.T) {
	mgr := setupRepos(t).manager()

	start := testutil.At(2024, 1, 1, 9, 0)
	open := testutil.NewTestEntry(start, testutil.Open())
	assert.Equal(t, time.Duration(0), mgr.DurationOf(open, start.Add(-time.Hour)), "clock behind start")
	assert.Equal(t, 30*time.Minute, mgr.DurationOf(open, start.Add(30*time.Minute)))
}

func TestManager_EmitsUseCaseEvents(t *testing.T) {
	repos := setupRepos(t)
	obs := &recordingObserver{}
	mgr := repos.manager(WithObserver(obs))
	ctx := context.Background()

	_, err := mgr.StartSession(ctx, "", "", testutil.At(2024, 1, 1, 9, 0))
	require.NoError(t, err)
	_, err = mgr.StartSession(ctx, "", "", testutil.At(2024, 1, 1, 9, 1))
	require.Error(t, err)
	_, err = mgr.StopSession(ctx, testutil.At(2024, 1, 1, 10, 0))
	require.NoError(t, err)

	assert.Equal(t, []string{"start-session", "start-session", "stop-session"}, obs.names())
	assert.True(t, obs.events[0].Success)
	assert.False(t, obs.events[1].Success)
	assert.ErrorIs(t, obs.events[1].Err, domain.ErrSessionAlreadyOpen)
}
