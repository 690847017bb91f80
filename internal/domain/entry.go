package domain

import "time"

// TimeEntry is one contiguous tracked interval of work. A nil End marks the
// running session.
type TimeEntry struct {
	ID      string
	Project string
	Label   string
	Start   time.Time
	End     *time.Time
	Note    string
}

// IsOpen reports whether the entry is still running.
func (e TimeEntry) IsOpen() bool {
	return e.End == nil
}

// Duration returns End-Start for a closed entry and now-Start for an open one.
// It never returns a negative value.
func (e TimeEntry) Duration(now time.Time) time.Duration {
	end := now
	if e.End != nil {
		end = *e.End
	}
	d := end.Sub(e.Start)
	if d < 0 {
		return 0
	}
	return d
}

// ValidRange reports whether end (when set) is not before start.
func ValidRange(start time.Time, end *time.Time) bool {
	return end == nil || !end.Before(start)
}

// DisplayID returns the first 8 characters of the ID for compact listings.
func (e TimeEntry) DisplayID() string {
	if len(e.ID) >= 8 {
		return e.ID[:8]
	}
	return e.ID
}

// EntryPatch is a partial update of a stored entry. Nil fields are left
// untouched. Reopen clears End and wins over End.
type EntryPatch struct {
	Project *string
	Label   *string
	Note    *string
	Start   *time.Time
	End     *time.Time
	Reopen  bool
}

// Apply returns e with the patch applied. The ID is never changed.
func (p EntryPatch) Apply(e TimeEntry) TimeEntry {
	if p.Project != nil {
		e.Project = *p.Project
	}
	if p.Label != nil {
		e.Label = *p.Label
	}
	if p.Note != nil {
		e.Note = *p.Note
	}
	if p.Start != nil {
		e.Start = *p.Start
	}
	switch {
	case p.Reopen:
		e.End = nil
	case p.End != nil:
		end := *p.End
		e.End = &end
	}
	return e
}

// SessionEdit is a user edit of an existing session. Start is always
// replaced; a nil End re-opens the session.
type SessionEdit struct {
	Start   time.Time
	End     *time.Time
	Project *string
	Label   *string
	Note    *string
}

// Patch converts the edit into a repository patch.
func (s SessionEdit) Patch() EntryPatch {
	start := s.Start
	p := EntryPatch{
		Project: s.Project,
		Label:   s.Label,
		Note:    s.Note,
		Start:   &start,
	}
	if s.End == nil {
		p.Reopen = true
	} else {
		end := *s.End
		p.End = &end
	}
	return p
}

// EntryFilter narrows a query. Nil fields match everything.
type EntryFilter struct {
	Range   *TimeRange
	Project *string
	Label   *string
}
