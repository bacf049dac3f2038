package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Limiter shared across replicas through Redis.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

// NewRedis returns a Redis-backed limiter.
func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client, prefix: "ratelimit:"}
}

// Allow increments the counter for key and reports whether it is within limit.
func (r *Redis) Allow(ctx context.Context, key string, limit int, window time.Duration) (Result, error) {
	fk := r.prefix + key

	var incr *redis.IntCmd
	var pttl *redis.DurationCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, fk)
		pipe.ExpireNX(ctx, fk, window)
		pttl = pipe.PTTL(ctx, fk)
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("ratelimit: redis pipeline: %w", err)
	}

	ttl := pttl.Val()
	if ttl < 0 {
		ttl = window
	}

	return result(incr.Val(), limit, ttl), nil
}
