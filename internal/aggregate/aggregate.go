// Package aggregate computes duration totals over time entries. Every
// function is pure: it takes the entries and the current time as input and
// never touches the store.
package aggregate

import (
	"time"

	"github.com/alexanderramin/timekeeper/internal/domain"
)

// Unlabeled is the TotalsByProject bucket for entries without a project.
const Unlabeled = "(unlabeled)"

// Total sums the durations of entries, measuring open entries up to now.
func Total(entries []domain.TimeEntry, now time.Time) time.Duration {
	var total time.Duration
	for _, e := range entries {
		total += e.Duration(now)
	}
	return total
}

// TotalsByDay sums entries starting inside r per calendar day of their start,
// in the start's location. An entry crossing midnight counts entirely toward
// the day it started.
func TotalsByDay(entries []domain.TimeEntry, r domain.TimeRange, now time.Time) map[domain.Date]time.Duration {
	return totalsBy(entries, r, now, func(e domain.TimeEntry) domain.Date {
		return domain.DateOf(e.Start)
	})
}

// TotalsByProject sums entries starting inside r per project.
func TotalsByProject(entries []domain.TimeEntry, r domain.TimeRange, now time.Time) map[string]time.Duration {
	return totalsBy(entries, r, now, func(e domain.TimeEntry) string {
		if e.Project == "" {
			return Unlabeled
		}
		return e.Project
	})
}

// TotalsByWeek sums entries starting inside r per week, keyed by the first
// day of the week as determined by weekStart.
func TotalsByWeek(entries []domain.TimeEntry, r domain.TimeRange, now time.Time, weekStart time.Weekday) map[domain.Date]time.Duration {
	return totalsBy(entries, r, now, func(e domain.TimeEntry) domain.Date {
		return domain.DateOf(StartOfWeek(e.Start, weekStart))
	})
}

func totalsBy[K comparable](entries []domain.TimeEntry, r domain.TimeRange, now time.Time, key func(domain.TimeEntry) K) map[K]time.Duration {
	totals := make(map[K]time.Duration)
	for _, e := range entries {
		if !r.Contains(e.Start) {
			continue
		}
		totals[key(e)] += e.Duration(now)
	}
	return totals
}

// StartOfWeek returns midnight of the most recent weekStart on or before t,
// in t's location.
func StartOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	offset := (int(t.Weekday()) - int(weekStart) + 7) % 7
	return domain.StartOfDay(t).AddDate(0, 0, -offset)
}

// WeekRange covers the seven days of the week containing t.
func WeekRange(t time.Time, weekStart time.Weekday) domain.TimeRange {
	return domain.DaysRange(StartOfWeek(t, weekStart), 7)
}

// DaySummary is one day of a week view.
type DaySummary struct {
	Date    domain.Date
	Entries []domain.TimeEntry
	Total   time.Duration
}

// WeekSummary is the seven days of the week containing an anchor time.
type WeekSummary struct {
	Start domain.Date
	Days  [7]DaySummary
	Total time.Duration
}

// Week groups entries into the days of the week containing anchor. Entries
// starting outside that week are ignored. Within a day, entries keep their
// input order.
func Week(entries []domain.TimeEntry, anchor time.Time, weekStart time.Weekday, now time.Time) WeekSummary {
	first := StartOfWeek(anchor, weekStart)
	week := WeekSummary{Start: domain.DateOf(first)}

	index := make(map[domain.Date]int, 7)
	for i := range week.Days {
		d := domain.DateOf(first.AddDate(0, 0, i))
		week.Days[i].Date = d
		index[d] = i
	}

	for _, e := range entries {
		i, ok := index[domain.DateOf(e.Start.In(anchor.Location()))]
		if !ok {
			continue
		}
		d := e.Duration(now)
		week.Days[i].Entries = append(week.Days[i].Entries, e)
		week.Days[i].Total += d
		week.Total += d
	}
	return week
}

// RemainingGoal compares worked time against goal. A goal of zero or less is
// reported as GoalZero.
func RemainingGoal(goal, worked time.Duration) domain.GoalState {
	if goal <= 0 {
		return domain.GoalState{Kind: domain.GoalZero}
	}
	remaining := goal - worked
	if remaining <= 0 {
		return domain.GoalState{Kind: domain.GoalReached}
	}
	return domain.GoalState{Kind: domain.GoalStillNeeds, Remaining: remaining}
}
