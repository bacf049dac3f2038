package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisStore struct {
	client redis.UniversalClient
}

// NewRedis returns a tracker that keeps state in Redis, shared across
// service replicas.
func NewRedis(client redis.UniversalClient) *StateTracker {
	return &StateTracker{store: &redisStore{client: client}, prefix: "idempotency:"}
}

func (r *redisStore) setNX(ctx context.Context, key, val string, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, key, val, ttl).Result()
}

func (r *redisStore) get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (r *redisStore) set(ctx context.Context, key, val string, ttl time.Duration) error {
	return r.client.Set(ctx, key, val, ttl).Err()
}

func (r *redisStore) del(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}
