package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/timekeeper/internal/aggregate"
	"github.com/alexanderramin/timekeeper/internal/domain"
	"github.com/alexanderramin/timekeeper/internal/repository"
	"golang.org/x/sync/errgroup"
)

type reportService struct {
	entries  repository.EntryRepo
	settings ReportSettings
	opts     options
}

func NewReportService(entries repository.EntryRepo, settings ReportSettings, opts ...Option) ReportService {
	return &reportService{entries: entries, settings: settings, opts: buildOptions(opts)}
}

func (s *reportService) load(ctx context.Context, r domain.TimeRange) ([]domain.TimeEntry, error) {
	entries, err := repository.Collect(s.entries.Query(ctx, domain.EntryFilter{Range: &r}))
	if err != nil {
		return nil, fmt.Errorf("loading entries: %w", err)
	}
	return entries, nil
}

func (s *reportService) TotalsByDay(ctx context.Context, r domain.TimeRange) (map[domain.Date]time.Duration, error) {
	entries, err := s.load(ctx, r)
	if err != nil {
		return nil, err
	}
	return aggregate.TotalsByDay(entries, r, s.opts.clock()), nil
}

func (s *reportService) TotalsByProject(ctx context.Context, r domain.TimeRange) (map[string]time.Duration, error) {
	entries, err := s.load(ctx, r)
	if err != nil {
		return nil, err
	}
	return aggregate.TotalsByProject(entries, r, s.opts.clock()), nil
}

func (s *reportService) TotalsByWeek(ctx context.Context, r domain.TimeRange) (map[domain.Date]time.Duration, error) {
	entries, err := s.load(ctx, r)
	if err != nil {
		return nil, err
	}
	return aggregate.TotalsByWeek(entries, r, s.opts.clock(), s.settings.WeekStart), nil
}

// Day lists the entries starting on the calendar day of day.
func (s *reportService) Day(ctx context.Context, day time.Time) (*aggregate.DaySummary, error) {
	entries, err := s.load(ctx, domain.DayRange(day))
	if err != nil {
		return nil, err
	}
	return &aggregate.DaySummary{
		Date:    domain.DateOf(day),
		Entries: entries,
		Total:   aggregate.Total(entries, s.opts.clock()),
	}, nil
}

func (s *reportService) Week(ctx context.Context, anchor time.Time) (*aggregate.WeekSummary, error) {
	entries, err := s.load(ctx, aggregate.WeekRange(anchor, s.settings.WeekStart))
	if err != nil {
		return nil, err
	}
	week := aggregate.Week(entries, anchor, s.settings.WeekStart, s.opts.clock())
	return &week, nil
}

// Goals measures today and the current week against the configured goals.
// Open sessions count up to now.
func (s *reportService) Goals(ctx context.Context, now time.Time) (*GoalReport, error) {
	entries, err := s.load(ctx, aggregate.WeekRange(now, s.settings.WeekStart))
	if err != nil {
		return nil, err
	}
	today := domain.DayRange(now)
	var todayEntries []domain.TimeEntry
	for _, e := range entries {
		if today.Contains(e.Start) {
			todayEntries = append(todayEntries, e)
		}
	}
	report := s.goals(aggregate.Total(todayEntries, now), aggregate.Total(entries, now))
	return &report, nil
}

func (s *reportService) goals(today, week time.Duration) GoalReport {
	return GoalReport{
		Daily:  aggregate.RemainingGoal(s.settings.DailyGoal, today),
		Weekly: aggregate.RemainingGoal(s.settings.WeeklyGoal, week),
		Today:  today,
		Week:   week,
	}
}

// Dashboard loads the open session, today and the current week concurrently.
// Reads share the pool's single connection, so they queue rather than overlap
// inside SQLite.
func (s *reportService) Dashboard(ctx context.Context, now time.Time) (*Dashboard, error) {
	var (
		open  *domain.TimeEntry
		today []domain.TimeEntry
		week  []domain.TimeEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		open, err = s.entries.Open(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		today, err = s.load(gctx, domain.DayRange(now))
		return err
	})
	g.Go(func() error {
		var err error
		week, err = s.load(gctx, aggregate.WeekRange(now, s.settings.WeekStart))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading dashboard: %w", err)
	}

	d := &Dashboard{
		Open: open,
		Today: aggregate.DaySummary{
			Date:    domain.DateOf(now),
			Entries: today,
			Total:   aggregate.Total(today, now),
		},
		Week: aggregate.Week(week, now, s.settings.WeekStart, now),
	}
	d.Goals = s.goals(d.Today.Total, d.Week.Total)
	return d, nil
}
