package service

import (
	"context"
	"iter"
	"time"

	"github.com/alexanderramin/timekeeper/internal/aggregate"
	"github.com/alexanderramin/timekeeper/internal/domain"
)

// TimeEntryManager owns every decision about the open session. It keeps no
// entry state between calls; the store is the only source of truth.
type TimeEntryManager interface {
	StartSession(ctx context.Context, project, label string, at time.Time) (*domain.TimeEntry, error)
	StopSession(ctx context.Context, at time.Time) (*domain.TimeEntry, error)
	EditSession(ctx context.Context, id string, edit domain.SessionEdit) (*domain.TimeEntry, error)
	DeleteSession(ctx context.Context, id string) error
	CurrentOpenSession(ctx context.Context) (*domain.TimeEntry, error)
	Get(ctx context.Context, id string) (*domain.TimeEntry, error)
	Query(ctx context.Context, f domain.EntryFilter) iter.Seq2[domain.TimeEntry, error]
	DurationOf(e domain.TimeEntry, now time.Time) time.Duration
}

type ReportService interface {
	TotalsByDay(ctx context.Context, r domain.TimeRange) (map[domain.Date]time.Duration, error)
	TotalsByProject(ctx context.Context, r domain.TimeRange) (map[string]time.Duration, error)
	TotalsByWeek(ctx context.Context, r domain.TimeRange) (map[domain.Date]time.Duration, error)
	Day(ctx context.Context, day time.Time) (*aggregate.DaySummary, error)
	Week(ctx context.Context, anchor time.Time) (*aggregate.WeekSummary, error)
	Goals(ctx context.Context, now time.Time) (*GoalReport, error)
	Dashboard(ctx context.Context, now time.Time) (*Dashboard, error)
}

type ProjectService interface {
	List(ctx context.Context) ([]*domain.Project, error)
	Add(ctx context.Context, name string, protected bool) (*domain.Project, error)
	Remove(ctx context.Context, name string) error
}

// GoalReport is progress toward the configured daily and weekly goals.
type GoalReport struct {
	Daily  domain.GoalState
	Weekly domain.GoalState
	Today  time.Duration
	Week   time.Duration
}

// Dashboard is the snapshot shown by the live view.
type Dashboard struct {
	Open  *domain.TimeEntry
	Today aggregate.DaySummary
	Week  aggregate.WeekSummary
	Goals GoalReport
}

// ReportSettings are the user preferences reports depend on.
type ReportSettings struct {
	WeekStart  time.Weekday
	DailyGoal  time.Duration
	WeeklyGoal time.Duration
}
