package testutil

import (
	"time"

	"github.com/alexanderramin/timekeeper/internal/domain"
)

// Entry options
type EntryOption func(*domain.TimeEntry)

func WithProject(p string) EntryOption {
	return func(e *domain.TimeEntry) {
		e.Project = p
	}
}

func WithLabel(l string) EntryOption {
	return func(e *domain.TimeEntry) {
		e.Label = l
	}
}

func WithNote(n string) EntryOption {
	return func(e *domain.TimeEntry) {
		e.Note = n
	}
}

// WithDuration closes the entry d after its start.
func WithDuration(d time.Duration) EntryOption {
	return func(e *domain.TimeEntry) {
		end := e.Start.Add(d)
		e.End = &end
	}
}

// Open leaves the entry running.
func Open() EntryOption {
	return func(e *domain.TimeEntry) {
		e.End = nil
	}
}

// NewTestEntry builds a closed one-hour entry starting at start. Options are
// applied in order, so WithDuration sees the final start.
func NewTestEntry(start time.Time, opts ...EntryOption) domain.TimeEntry {
	end := start.Add(time.Hour)
	e := domain.TimeEntry{
		Project: "test",
		Start:   start,
		End:     &end,
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// At returns the given wall-clock time on a date in UTC.
func At(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
