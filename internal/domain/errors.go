package domain

import "errors"

// Policy violations raised by the time-entry manager. They are recoverable by
// the caller adjusting its input.
var (
	ErrSessionAlreadyOpen = errors.New("a session is already running")
	ErrNoOpenSession      = errors.New("no session is running")
	ErrInvalidTimeRange   = errors.New("end time is before start time")
	ErrNotFound           = errors.New("time entry not found")
)
