package domain

import (
	"fmt"
	"strings"
	"time"
)

// Project is a catalogue entry for a project name. Entries reference projects
// by name; the catalogue lets the UI offer known names.
type Project struct {
	ID        string
	Name      string
	Protected bool
	CreatedAt time.Time
}

// NormalizeProjectName trims surrounding whitespace.
func NormalizeProjectName(name string) string {
	return strings.TrimSpace(name)
}

// ValidateProjectName rejects empty and overlong names.
func ValidateProjectName(name string) error {
	if name == "" {
		return fmt.Errorf("project name is required")
	}
	if len(name) > 64 {
		return fmt.Errorf("project name %q is longer than 64 characters", name)
	}
	return nil
}
