package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alexanderramin/timekeeper/internal/db"
	"github.com/alexanderramin/timekeeper/internal/domain"
	"github.com/alexanderramin/timekeeper/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrentAccess_SingleOpenEntry races goroutines inserting an open
// entry. The open_marker constraint must let exactly one through.
func TestConcurrentAccess_SingleOpenEntry(t *testing.T) {
	database, _ := testutil.NewFileTestDB(t)
	repo := NewSQLiteEntryRepo(database, WithLocation(time.UTC))
	ctx := context.Background()

	const workers = 10
	var wg sync.WaitGroup
	var succeeded, rejected atomic.Int32
	start := testutil.At(2024, 1, 1, 9, 0)

	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e := testutil.NewTestEntry(start.Add(time.Duration(i)*time.Minute),
				testutil.WithLabel(fmt.Sprintf("worker-%d", i)),
				testutil.Open(),
			)
			_, err := repo.Insert(ctx, e)
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, ErrConstraintViolation):
				rejected.Add(1)
			default:
				t.Errorf("worker %d: unexpected error: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, int32(workers-1), rejected.Load())

	open, err := repo.Open(ctx)
	require.NoError(t, err)
	require.NotNil(t, open)
}

// TestConcurrentAccess_ReadDuringWrite verifies readers see consistent rows
// while a writer appends closed entries.
func TestConcurrentAccess_ReadDuringWrite(t *testing.T) {
	database, _ := testutil.NewFileTestDB(t)
	repo := NewSQLiteEntryRepo(database, WithLocation(time.UTC))
	ctx := context.Background()

	var wg sync.WaitGroup
	start := testutil.At(2024, 1, 1, 0, 0)

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := range 20 {
			e := testutil.NewTestEntry(start.Add(time.Duration(i)*time.Hour), testutil.WithDuration(30*time.Minute))
			if _, err := repo.Insert(ctx, e); err != nil {
				t.Errorf("writer: insert %d: %v", i, err)
				return
			}
		}
	}()

	for r := range 5 {
		wg.Add(1)
		go func(reader int) {
			defer wg.Done()
			for range 10 {
				entries, err := Collect(repo.Query(ctx, domain.EntryFilter{}))
				if err != nil {
					t.Errorf("reader %d: query: %v", reader, err)
					return
				}
				for _, e := range entries {
					if e.ID == "" || e.End == nil {
						t.Errorf("reader %d: saw partial row %+v", reader, e)
						return
					}
				}
			}
		}(r)
	}
	wg.Wait()

	entries, err := Collect(repo.Query(ctx, domain.EntryFilter{}))
	require.NoError(t, err)
	assert.Len(t, entries, 20)
}

// TestConcurrentAccess_ReopenSeesCommittedData checks that entries survive
// closing and reopening the database file.
func TestConcurrentAccess_ReopenSeesCommittedData(t *testing.T) {
	database, path := testutil.NewFileTestDB(t)
	ctx := context.Background()

	_, err := NewSQLiteEntryRepo(database).Insert(ctx, testutil.NewTestEntry(testutil.At(2024, 1, 1, 9, 0)))
	require.NoError(t, err)
	require.NoError(t, database.Close())

	reopened, err := db.OpenDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })

	entries, err := Collect(NewSQLiteEntryRepo(reopened).Query(ctx, domain.EntryFilter{}))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
