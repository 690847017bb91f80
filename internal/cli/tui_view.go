package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/timekeeper/internal/cli/formatter"
	"github.com/charmbracelet/lipgloss"
)

const tuiBarWidth = 24

func (m tuiModel) View() string {
	if m.mode == modeEdit && m.form != nil {
		return formatter.Header("Edit session") + "\n\n" + m.form.View() + "\n" +
			formatter.Dim("enter next · esc cancel") + "\n"
	}

	var b strings.Builder
	l := m.app.layout()
	b.WriteString(formatter.Header("TimeKeeper · " + l.Day(m.now)))
	b.WriteString("\n\n")

	if m.dash == nil {
		if m.loading {
			b.WriteString(formatter.Dim("Loading…") + "\n")
		}
		m.writeFooter(&b)
		return b.String()
	}

	b.WriteString(m.stopwatchView())
	b.WriteString("\n\n")
	b.WriteString(m.goalsView())
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(formatter.Dim("No sessions today.") + "\n")
	} else {
		b.WriteString(m.table.View())
		b.WriteString("\n")
	}

	m.writeFooter(&b)
	return b.String()
}

func (m tuiModel) stopwatchView() string {
	l := m.app.layout()
	open := m.dash.Open
	if open == nil {
		next := formatter.Dim("none, press p to choose")
		if m.project != "" {
			next = formatter.Bold(m.project)
		}
		content := formatter.Dim("○ stopped") + "\n" +
			lipgloss.NewStyle().Bold(true).Render(formatter.FormatClock(0)) + "\n" +
			formatter.Dim("next: ") + next
		return formatter.RenderBox("", content)
	}

	title := formatter.Bold(open.Project)
	if open.Label != "" {
		title += formatter.Dim(" · " + open.Label)
	}
	content := formatter.RunningIndicator() + "  " + title + "\n" +
		formatter.StyleGreen.Bold(true).Render(formatter.FormatClock(open.Duration(m.now))) + "\n" +
		formatter.Dim("since "+l.Clock(open.Start))
	return formatter.RenderBox("", content)
}

func (m tuiModel) goalsView() string {
	d := m.dash
	// Totals come from the last load; the open session has run on since.
	today, week := d.Today.Total, d.Week.Total
	if d.Open != nil && m.now.After(m.loadedAt) {
		extra := m.now.Sub(m.loadedAt)
		today += extra
		week += extra
	}
	return fmt.Sprintf("%s %-8s %s\n%s %-8s %s",
		formatter.Dim("Today    "), formatter.FormatDuration(today),
		formatter.GoalProgress(today, m.app.Settings.DailyGoal, tuiBarWidth),
		formatter.Dim("This week"), formatter.FormatDuration(week),
		formatter.GoalProgress(week, m.app.Settings.WeeklyGoal, tuiBarWidth))
}

func (m tuiModel) writeFooter(b *strings.Builder) {
	b.WriteString("\n")
	switch m.mode {
	case modeProject:
		b.WriteString(m.input.View())
		b.WriteString("\n")
		b.WriteString(formatter.Dim("enter confirm · tab complete · esc cancel"))
		b.WriteString("\n")
	case modeConfirmDelete:
		if e, ok := m.selected(); ok {
			fmt.Fprintf(b, "%s %s session %s? %s\n",
				formatter.StyleRed.Render("Delete"), formatter.Bold(e.Project),
				e.DisplayID(), formatter.Dim("(y/N)"))
		}
	}

	if m.err != nil {
		b.WriteString(formatter.StyleRed.Render("✖ " + errorText(m.err)))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(strings.TrimRight(m.status, "\n"))
		b.WriteString("\n")
	}

	b.WriteString(m.help.View(m.keys))
}
