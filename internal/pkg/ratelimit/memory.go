package ratelimit

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// Memory is a process-local Limiter backed by go-cache.
type Memory struct {
	c *cache.Cache
}

// NewMemory returns an in-memory limiter. Expired windows are swept every
// cleanup interval.
func NewMemory(cleanup time.Duration) *Memory {
	if cleanup <= 0 {
		cleanup = time.Minute
	}

	return &Memory{c: cache.New(cache.NoExpiration, cleanup)}
}

// Allow increments the counter for key and reports whether it is within limit.
func (m *Memory) Allow(_ context.Context, key string, limit int, window time.Duration) (Result, error) {
	for {
		if err := m.c.Add(key, int64(1), window); err == nil {
			return result(1, limit, window), nil
		}

		count, err := m.c.IncrementInt64(key, 1)
		if err != nil {
			// expired between Add and Increment
			continue
		}

		_, exp, found := m.c.GetWithExpiration(key)
		if !found {
			continue
		}

		return result(count, limit, time.Until(exp)), nil
	}
}
