package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/timekeeper/internal/cli/formatter"
)

// parseTimeArg reads a user-supplied point in time. Accepted forms, in order:
// "now", a signed offset from now ("-15m", "+1h"), RFC 3339, a date and time
// in the user's layout or ISO form, and a bare time of day, which means today.
// Empty input returns the zero time.
func parseTimeArg(s string, now time.Time, l formatter.Layout) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if strings.EqualFold(s, "now") {
		return now, nil
	}
	if s[0] == '-' || s[0] == '+' {
		d, err := time.ParseDuration(s)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid offset %q: %w", s, err)
		}
		return now.Add(d), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(now.Location()), nil
	}

	loc := now.Location()
	for _, layout := range []string{
		l.Date + " " + l.Time,
		"2006-01-02 15:04",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	for _, layout := range []string{l.Time, "15:04", "15:04:05"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			y, m, d := now.Date()
			return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q (try HH:MM, \"YYYY-MM-DD HH:MM\", RFC 3339 or -15m)", s)
}

// parseDateArg reads a calendar day: "today", "yesterday", or a date in the
// user's layout or ISO form. Empty input means today. The result is midnight
// in now's location.
func parseDateArg(s string, now time.Time, l formatter.Layout) (time.Time, error) {
	loc := now.Location()
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, loc)

	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return today, nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	}
	for _, layout := range []string{l.Date, time.DateOnly} {
		if t, err := time.ParseInLocation(layout, strings.TrimSpace(s), loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q (want %s)", s, l.Date)
}

// validateOptionalTime is a huh validator for time fields that may be blank.
func validateOptionalTime(l formatter.Layout, now func() time.Time) func(string) error {
	return func(s string) error {
		_, err := parseTimeArg(s, now(), l)
		return err
	}
}

// validateTime is a huh validator for time fields that must be filled in.
func validateTime(l formatter.Layout, now func() time.Time) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("enter a time")
		}
		_, err := parseTimeArg(s, now(), l)
		return err
	}
}
