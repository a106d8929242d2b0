package hub

import (
	"context"
	"sync"
	"time"
)

// RateLimiter throttles requests against the Docker Hub API
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// hubRateLimiter enforces a fixed minimum delay between requests. Sampling is
// sequential across repositories, so a simple pacer is all the upstream rate
// limit needs.
type hubRateLimiter struct {
	mu       sync.Mutex
	minDelay time.Duration
	lastCall time.Time
}

// NewRateLimiter creates a new rate limiter with the given inter-request pause
func NewRateLimiter(minDelay time.Duration) RateLimiter {
	return &hubRateLimiter{minDelay: minDelay}
}

// Wait blocks until it's safe to make another API call
func (r *hubRateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	elapsed := time.Since(r.lastCall)
	if !r.lastCall.IsZero() && elapsed < r.minDelay {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.minDelay - elapsed):
		}
	}

	r.lastCall = time.Now()
	return nil
}
