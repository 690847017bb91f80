package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/timekeeper/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// GoalStyle returns the style for a goal state: green once reached, yellow
// while time is still needed.
func GoalStyle(g domain.GoalState) lipgloss.Style {
	switch g.Kind {
	case domain.GoalReached:
		return StyleGreen
	case domain.GoalStillNeeds:
		return StyleYellow
	default:
		return StyleDim
	}
}

// GoalIndicator returns a colored goal summary such as "● 2h 15m to go".
func GoalIndicator(g domain.GoalState) string {
	switch g.Kind {
	case domain.GoalReached:
		return StyleGreen.Render("✔ reached")
	case domain.GoalStillNeeds:
		return StyleYellow.Render("● " + FormatDuration(g.Remaining) + " to go")
	default:
		return StyleDim.Render("○ no goal")
	}
}

// RunningIndicator marks the open session.
func RunningIndicator() string {
	return StyleRed.Render("● running")
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
