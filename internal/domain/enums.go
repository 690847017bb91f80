package domain

import (
	"fmt"
	"time"
)

// OpenSessionPolicy decides what StartSession does when a session is running.
type OpenSessionPolicy string

const (
	// PolicyReject refuses to start; the caller must stop first.
	PolicyReject OpenSessionPolicy = "reject"
	// PolicyAutoClose stops the running session at the new start time.
	PolicyAutoClose OpenSessionPolicy = "auto_close"
)

// ParseOpenSessionPolicy validates a policy name.
func ParseOpenSessionPolicy(s string) (OpenSessionPolicy, error) {
	switch OpenSessionPolicy(s) {
	case PolicyReject, PolicyAutoClose:
		return OpenSessionPolicy(s), nil
	}
	return "", fmt.Errorf("unknown open session policy %q (want %q or %q)", s, PolicyReject, PolicyAutoClose)
}

// GoalKind classifies progress toward a duration goal.
type GoalKind string

const (
	GoalZero       GoalKind = "zero_goal"
	GoalStillNeeds GoalKind = "still_needs"
	GoalReached    GoalKind = "reached"
)

// GoalState is progress toward a goal. Remaining is set only for GoalStillNeeds.
type GoalState struct {
	Kind      GoalKind
	Remaining time.Duration
}
