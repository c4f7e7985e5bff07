package ratelimit

import (
	"context"

	"golang.org/x/time/rate"

	"humesync/pkg/errors"
)

// Limiter throttles outbound calls to the voice provider
type Limiter struct {
	limiter *rate.Limiter
	name    string
}

// NewLimiter creates a limiter allowing requestsPerMinute calls.
// A non-positive rate returns nil, and a nil *Limiter never blocks.
func NewLimiter(name string, requestsPerMinute int) *Limiter {
	if requestsPerMinute <= 0 {
		return nil
	}

	rps := float64(requestsPerMinute) / 60.0

	// Allow burst of 10% of per-minute limit
	burst := requestsPerMinute / 10
	if burst < 1 {
		burst = 1
	}

	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		name:    name,
	}
}

// Wait blocks until the limiter allows the request or ctx is done
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	if err := l.limiter.Wait(ctx); err != nil {
		return errors.Wrapf(errors.ErrRateLimited, "rate limiter %s: %v", l.name, err)
	}
	return nil
}

// Allow checks if a request is allowed without blocking
func (l *Limiter) Allow() bool {
	if l == nil {
		return true
	}
	return l.limiter.Allow()
}

// Name returns the limiter name used in logs
func (l *Limiter) Name() string {
	if l == nil {
		return ""
	}
	return l.name
}
