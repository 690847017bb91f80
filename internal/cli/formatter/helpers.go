package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		titleRendered := StyleHeader.Render(strings.ToUpper(title))
		inner := titleRendered + "\n\n" + content
		return boxStyle.Render(inner)
	}

	return boxStyle.Render(content)
}

// Layout holds the user's date and time formats.
type Layout struct {
	Date string
	Time string
}

// DefaultLayout is ISO dates with 24-hour clock times.
var DefaultLayout = Layout{Date: time.DateOnly, Time: "15:04"}

// Clock formats the time of day.
func (l Layout) Clock(t time.Time) string {
	return t.Format(l.Time)
}

// Day formats the calendar date.
func (l Layout) Day(t time.Time) string {
	return t.Format(l.Date)
}

// Stamp formats date and time of day.
func (l Layout) Stamp(t time.Time) string {
	return t.Format(l.Date + " " + l.Time)
}

// FormatDuration renders d as "1h 40m", dropping zero parts. Durations under
// a minute show seconds; anything that rounds to nothing is "0m".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	if d < time.Minute {
		s := int(d / time.Second)
		if s == 0 {
			return "0m"
		}
		return fmt.Sprintf("%ds", s)
	}
	h := int(d / time.Hour)
	m := int(d%time.Hour) / int(time.Minute)
	if h > 0 && m > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if h > 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dm", m)
}

// FormatClock renders d as a stopwatch reading, HH:MM:SS.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total/60%60, total%60)
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// OrDash renders empty values as a dimmed dash.
func OrDash(s string) string {
	if s == "" {
		return StyleDim.Render("--")
	}
	return s
}
