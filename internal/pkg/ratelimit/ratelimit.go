// Package ratelimit implements fixed-window request counting keyed by an
// arbitrary string, such as a client IP.
package ratelimit

import (
	"context"
	"time"
)

// Result describes the outcome of one Allow call.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	// RetryAfter is the time until the current window resets.
	RetryAfter time.Duration
}

// Limiter counts hits per key within a fixed window.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (Result, error)
}

func result(count int64, limit int, ttl time.Duration) Result {
	remaining := max(limit-int(count), 0)

	return Result{
		Allowed:    count <= int64(limit),
		Limit:      limit,
		Remaining:  remaining,
		RetryAfter: max(ttl, 0),
	}
}
