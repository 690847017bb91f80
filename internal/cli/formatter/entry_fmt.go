package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/timekeeper/internal/domain"
)

// EntryEnd renders the end time, or the running indicator for an open entry.
func (l Layout) EntryEnd(e domain.TimeEntry) string {
	if e.End == nil {
		return RunningIndicator()
	}
	if domain.DateOf(*e.End) != domain.DateOf(e.Start) {
		return l.Stamp(*e.End)
	}
	return l.Clock(*e.End)
}

// FormatEntries renders entries as a table followed by their total.
func FormatEntries(entries []domain.TimeEntry, now time.Time, l Layout) string {
	if len(entries) == 0 {
		return Dim("No entries.") + "\n"
	}

	t := NewTable("ID", "DATE", "START", "END", "DURATION", "PROJECT", "LABEL", "NOTE").AlignRight(4)
	var total time.Duration
	for _, e := range entries {
		d := e.Duration(now)
		total += d
		t.Row(
			TruncID(e.ID),
			l.Day(e.Start),
			l.Clock(e.Start),
			l.EntryEnd(e),
			FormatDuration(d),
			Bold(e.Project),
			OrDash(e.Label),
			OrDash(e.Note),
		)
	}

	var b strings.Builder
	b.WriteString(t.Render())
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s  %s\n",
		Dim("Total:"), Bold(FormatDuration(total)),
		Dim(fmt.Sprintf("(%d entries)", len(entries))))
	return b.String()
}

// FormatEntry renders one entry as a labelled block.
func FormatEntry(e domain.TimeEntry, now time.Time, l Layout) string {
	var b strings.Builder
	field := func(name, value string) {
		fmt.Fprintf(&b, "%s %s\n", Dim(fmt.Sprintf("%-9s", name)), value)
	}
	field("ID", e.ID)
	field("Project", Bold(e.Project))
	field("Label", OrDash(e.Label))
	field("Start", l.Stamp(e.Start))
	if e.End != nil {
		field("End", l.Stamp(*e.End))
	} else {
		field("End", RunningIndicator())
	}
	field("Duration", FormatDuration(e.Duration(now)))
	if e.Note != "" {
		field("Note", e.Note)
	}
	return b.String()
}

// FormatStarted confirms a new session.
func FormatStarted(e domain.TimeEntry, l Layout) string {
	label := ""
	if e.Label != "" {
		label = Dim(" · ") + e.Label
	}
	return fmt.Sprintf("%s %s%s at %s %s\n",
		StyleGreen.Render("▶ Started"), Bold(e.Project), label,
		l.Clock(e.Start), TruncID(e.ID))
}

// FormatStopped confirms a closed session with its length.
func FormatStopped(e domain.TimeEntry, l Layout) string {
	end := e.Start
	if e.End != nil {
		end = *e.End
	}
	return fmt.Sprintf("%s %s at %s %s %s\n",
		StyleRed.Render("■ Stopped"), Bold(e.Project),
		l.Clock(end), Dim("after"), Bold(FormatDuration(e.Duration(end))))
}
