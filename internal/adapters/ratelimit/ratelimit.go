// Package ratelimit bounds outbound calls per external provider with a
// sliding time window.
//
// The limiter is explicitly constructed state: built once at process start
// and passed by reference into every collaborator that makes outbound calls.
package ratelimit

import (
	"sync"
	"time"

	"github.com/okian/nitecap/pkg/metrics"
)

// Default admission bounds, sized to leave headroom under typical provider
// quotas.
const (
	defaultWindow = 60 * time.Second
	defaultLimit  = 90
)

// Option applies a configuration option to the Limiter.
type Option func(*Limiter)

// WithWindow sets the trailing window length.
func WithWindow(d time.Duration) Option {
	return func(l *Limiter) {
		if d > 0 {
			l.window = d
		}
	}
}

// WithLimit sets the maximum admissions per window.
func WithLimit(n int) Option {
	return func(l *Limiter) {
		if n > 0 {
			l.limit = n
		}
	}
}

// WithClock overrides the time source. Tests use this to step through the
// window deterministically.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// Limiter admits or denies outbound calls per provider name. Safe for
// concurrent use; the prune-check-record sequence is one critical section.
type Limiter struct {
	mu     sync.Mutex
	window time.Duration
	limit  int
	now    func() time.Time
	calls  map[string][]time.Time
}

// New constructs a Limiter with default bounds.
func New(opts ...Option) *Limiter {
	l := &Limiter{
		window: defaultWindow,
		limit:  defaultLimit,
		now:    time.Now,
		calls:  make(map[string][]time.Time),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Allow reports whether a call to the named provider is admitted right now.
// Admission records the call; denial records nothing, so a denied caller may
// retry later without consuming budget.
func (l *Limiter) Allow(provider string) bool {
	now := l.now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.calls[provider][:0]
	for _, t := range l.calls[provider] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	l.calls[provider] = kept

	if len(kept) < l.limit {
		l.calls[provider] = append(kept, now)
		metrics.RecordRateLimitAllowed(provider)
		return true
	}

	metrics.RecordRateLimitDenied(provider)
	return false
}
