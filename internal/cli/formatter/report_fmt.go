package formatter

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/alexanderramin/timekeeper/internal/aggregate"
	"github.com/alexanderramin/timekeeper/internal/config"
	"github.com/alexanderramin/timekeeper/internal/domain"
	"github.com/alexanderramin/timekeeper/internal/service"
)

const goalBarWidth = 20

func (l Layout) date(d domain.Date) string {
	return l.Day(d.In(time.Local))
}

func (l Layout) weekday(d domain.Date) string {
	t := d.In(time.Local)
	return t.Format("Mon") + " " + l.Day(t)
}

// FormatDayTotals renders per-day totals in date order.
func FormatDayTotals(totals map[domain.Date]time.Duration, l Layout) string {
	return formatDateTotals("DAY", totals, l)
}

// FormatWeekTotals renders per-week totals keyed by the first day of each week.
func FormatWeekTotals(totals map[domain.Date]time.Duration, l Layout) string {
	return formatDateTotals("WEEK OF", totals, l)
}

func formatDateTotals(header string, totals map[domain.Date]time.Duration, l Layout) string {
	if len(totals) == 0 {
		return Dim("No tracked time in range.") + "\n"
	}
	dates := slices.SortedFunc(maps.Keys(totals), func(a, b domain.Date) int {
		switch {
		case a.Before(b):
			return -1
		case b.Before(a):
			return 1
		}
		return 0
	})

	t := NewTable(header, "TOTAL").AlignRight(1)
	var sum time.Duration
	for _, d := range dates {
		sum += totals[d]
		t.Row(l.date(d), FormatDuration(totals[d]))
	}
	return t.Render() + totalLine(sum)
}

// FormatProjectTotals renders per-project totals, largest first.
func FormatProjectTotals(totals map[string]time.Duration) string {
	if len(totals) == 0 {
		return Dim("No tracked time in range.") + "\n"
	}
	names := slices.SortedFunc(maps.Keys(totals), func(a, b string) int {
		if c := cmp.Compare(totals[b], totals[a]); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})

	t := NewTable("PROJECT", "TOTAL").AlignRight(1)
	var sum time.Duration
	for _, name := range names {
		sum += totals[name]
		t.Row(Bold(name), FormatDuration(totals[name]))
	}
	return t.Render() + totalLine(sum)
}

func totalLine(sum time.Duration) string {
	return "\n" + Dim("Total: ") + Bold(FormatDuration(sum)) + "\n"
}

// FormatWeek renders a week view: each day with its entries and total.
func FormatWeek(w aggregate.WeekSummary, now time.Time, l Layout) string {
	var b strings.Builder
	b.WriteString(Header("Week of " + l.date(w.Start)))
	b.WriteString("\n")

	today := domain.DateOf(now)
	for _, day := range w.Days {
		name := l.weekday(day.Date)
		if day.Date == today {
			name = StyleBlue.Render(name + " (today)")
		}
		fmt.Fprintf(&b, "\n%s  %s\n", Bold(name), Dim(FormatDuration(day.Total)))
		for _, e := range day.Entries {
			label := ""
			if e.Label != "" {
				label = Dim(" · " + e.Label)
			}
			fmt.Fprintf(&b, "  %s–%s  %-8s %s%s\n",
				l.Clock(e.Start), l.EntryEnd(e),
				FormatDuration(e.Duration(now)), e.Project, label)
		}
	}
	b.WriteString(totalLine(w.Total))
	return b.String()
}

// FormatGoals renders progress toward the daily and weekly goals.
func FormatGoals(g service.GoalReport, dailyGoal, weeklyGoal time.Duration) string {
	t := NewTable("GOAL", "WORKED", "TARGET", "PROGRESS", "STATUS").AlignRight(1, 2)
	t.Row("Today", FormatDuration(g.Today), targetOrDash(dailyGoal),
		GoalProgress(g.Today, dailyGoal, goalBarWidth), GoalIndicator(g.Daily))
	t.Row("This week", FormatDuration(g.Week), targetOrDash(weeklyGoal),
		GoalProgress(g.Week, weeklyGoal, goalBarWidth), GoalIndicator(g.Weekly))
	return t.Render()
}

func targetOrDash(goal time.Duration) string {
	if goal <= 0 {
		return OrDash("")
	}
	return FormatDuration(goal)
}

// FormatStatus renders the dashboard: the running session, today's total and
// goal progress.
func FormatStatus(d service.Dashboard, now time.Time, l Layout) string {
	var b strings.Builder
	if d.Open != nil {
		fmt.Fprintf(&b, "%s %s since %s  %s\n",
			RunningIndicator(), Bold(d.Open.Project), l.Clock(d.Open.Start),
			Bold(FormatClock(d.Open.Duration(now))))
	} else {
		b.WriteString(Dim("○ No session running.") + "\n")
	}
	fmt.Fprintf(&b, "%s %s   %s %s\n",
		Dim("Today:"), Bold(FormatDuration(d.Today.Total)),
		Dim("Week:"), Bold(FormatDuration(d.Week.Total)))
	fmt.Fprintf(&b, "%s %s   %s %s\n",
		Dim("Daily goal:"), GoalIndicator(d.Goals.Daily),
		Dim("Weekly goal:"), GoalIndicator(d.Goals.Weekly))
	return b.String()
}

// FormatProjects lists the project catalogue.
func FormatProjects(projects []*domain.Project, l Layout) string {
	if len(projects) == 0 {
		return Dim("No projects yet. Start a session or run 'timekeeper projects add'.") + "\n"
	}
	t := NewTable("NAME", "PROTECTED", "ADDED")
	for _, p := range projects {
		protected := ""
		if p.Protected {
			protected = StyleYellow.Render("yes")
		}
		t.Row(Bold(p.Name), OrDash(protected), l.Day(p.CreatedAt))
	}
	return t.Render()
}

// FormatSettings lists every setting in file order.
func FormatSettings(s config.Settings) string {
	t := NewTable("KEY", "VALUE")
	for _, key := range config.Keys {
		v, err := s.Get(key)
		if err != nil {
			continue
		}
		t.Row(key, OrDash(v))
	}
	return t.Render()
}
