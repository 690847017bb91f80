package repository

import (
	"database/sql"
	"fmt"
	"iter"
	"time"
)

// timestampLayout is fixed-width and always rendered in UTC, so string order
// matches time order. Range predicates and CHECK constraints rely on that.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(s string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(loc), nil
}

// parseNullableTimestamp parses a sql.NullString into a *time.Time.
// Returns nil if the value is NULL or empty.
func parseNullableTimestamp(s sql.NullString, loc *time.Location) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := parseTimestamp(s.String, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// nullableTimestamp converts a *time.Time to a value suitable for SQLite storage.
// Returns nil (SQL NULL) if the pointer is nil.
func nullableTimestamp(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTimestamp(*t)
}

// nullableString converts a *string to a value suitable for SQLite storage.
func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// openMarker is the value of the open_marker column for an entry ending at end.
func openMarker(end *time.Time) any {
	if end == nil {
		return 1
	}
	return nil
}

// boolToInt converts a Go bool to an integer (0 or 1) for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// intToBool converts a SQLite integer (0 or 1) to a Go bool.
func intToBool(i int) bool {
	return i != 0
}

// Collect drains a query sequence into a slice, stopping at the first error.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var out []T
	for v, err := range seq {
		if err != nil {
			return nil, fmt.Errorf("collecting results: %w", err)
		}
		out = append(out, v)
	}
	return out, nil
}
