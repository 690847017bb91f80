package service

import (
	"time"

	"github.com/alexanderramin/timekeeper/internal/domain"
)

type options struct {
	policy   domain.OpenSessionPolicy
	clock    func() time.Time
	observer UseCaseObserver
}

// Option configures a service.
type Option func(*options)

// WithOpenSessionPolicy sets what StartSession does when a session is
// already running. Defaults to domain.PolicyReject.
func WithOpenSessionPolicy(p domain.OpenSessionPolicy) Option {
	return func(o *options) { o.policy = p }
}

// WithClock replaces time.Now, used when a caller passes a zero time.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.clock = now }
}

func WithObserver(obs UseCaseObserver) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		policy:   domain.PolicyReject,
		clock:    time.Now,
		observer: NoopUseCaseObserver{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
