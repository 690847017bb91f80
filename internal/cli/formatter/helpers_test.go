package formatter

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// ansiPattern matches ANSI escape sequences.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// stripANSI removes ANSI escape codes so assertions are terminal-independent.
func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name string
		in   time.Duration
		want string
	}{
		{"zero", 0, "0m"},
		{"sub-second", 400 * time.Millisecond, "0m"},
		{"seconds", 42 * time.Second, "42s"},
		{"minutes only", 25 * time.Minute, "25m"},
		{"hours only", 2 * time.Hour, "2h"},
		{"hours and minutes", time.Hour + 40*time.Minute, "1h 40m"},
		{"seconds truncated", 90*time.Minute + 59*time.Second, "1h 30m"},
		{"over a day", 26 * time.Hour, "26h"},
		{"negative", -30 * time.Minute, "30m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.in))
		})
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "00:00:00", FormatClock(0))
	assert.Equal(t, "00:00:00", FormatClock(-time.Minute))
	assert.Equal(t, "01:02:03", FormatClock(time.Hour+2*time.Minute+3*time.Second))
	assert.Equal(t, "27:00:00", FormatClock(27*time.Hour))
}

func TestLayout(t *testing.T) {
	ts := time.Date(2024, 1, 1, 9, 5, 0, 0, time.UTC)
	assert.Equal(t, "09:05", DefaultLayout.Clock(ts))
	assert.Equal(t, "2024-01-01", DefaultLayout.Day(ts))
	assert.Equal(t, "2024-01-01 09:05", DefaultLayout.Stamp(ts))

	us := Layout{Date: "01/02/2006", Time: "3:04PM"}
	assert.Equal(t, "01/01/2024 9:05AM", us.Stamp(ts))
}

func TestTruncID(t *testing.T) {
	assert.Equal(t, "abcdefgh", stripANSI(TruncID("abcdefgh-1234")))
	assert.Equal(t, "abc", stripANSI(TruncID("abc")))
}

func TestOrDash(t *testing.T) {
	assert.Equal(t, "--", stripANSI(OrDash("")))
	assert.Equal(t, "x", OrDash("x"))
}

func TestRenderBox(t *testing.T) {
	out := stripANSI(RenderBox("today", "3h"))
	assert.Contains(t, out, "TODAY")
	assert.Contains(t, out, "3h")
	assert.Contains(t, out, "╭")
}
