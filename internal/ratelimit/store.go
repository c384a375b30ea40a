// Package ratelimit implements the fixed-window per-client submission limit.
//
// A window opens on a client's first request and lasts Window. Every request in
// the window increments the count; once the window has passed, the next request
// opens a new window with a count of one. Stores own the records; the Limiter
// owns the decision.
package ratelimit

import (
	"context"
	"time"
)

// Record is the state kept for one client identifier.
type Record struct {
	Count       int
	WindowStart time.Time
}

// Store persists rate-limit records. Implementations must be safe for
// concurrent use.
type Store interface {
	// Get returns the record for key, if any.
	Get(ctx context.Context, key string) (Record, bool, error)
	// Increment counts one request for key, opening a new window when none is
	// active, and returns the updated record.
	Increment(ctx context.Context, key string) (Record, error)
	// Sweep removes records whose window started more than one window ago
	// and returns how many were removed.
	Sweep(ctx context.Context) (int, error)
}

// Clock returns the current time. Tests inject a fake.
type Clock func() time.Time

// Limiter applies a maximum request count to a Store.
type Limiter struct {
	store Store
	max   int
}

func NewLimiter(store Store, max int) *Limiter {
	return &Limiter{store: store, max: max}
}

// Allow records a request for key and reports whether it is within the limit.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, Record, error) {
	rec, err := l.store.Increment(ctx, key)
	if err != nil {
		return false, Record{}, err
	}
	return rec.Count <= l.max, rec, nil
}

// Max returns the configured request limit.
func (l *Limiter) Max() int {
	return l.max
}

// Remaining returns how many requests rec still has in its window.
func (l *Limiter) Remaining(rec Record) int {
	if rec.Count >= l.max {
		return 0
	}
	return l.max - rec.Count
}
