package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func exerciseLimiter(t *testing.T, l Limiter, key string) {
	t.Helper()
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		res, err := l.Allow(ctx, key, 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed, "hit %d", i)
		assert.Equal(t, 3-i, res.Remaining)
	}

	res, err := l.Allow(ctx, key, 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Zero(t, res.Remaining)
	assert.Greater(t, res.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, res.RetryAfter, time.Minute)

	other, err := l.Allow(ctx, key+":other", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestMemory_Allow(t *testing.T) {
	exerciseLimiter(t, NewMemory(time.Minute), "10.0.0.1")
}

func TestMemory_WindowResets(t *testing.T) {
	l := NewMemory(time.Minute)
	ctx := context.Background()

	_, err := l.Allow(ctx, "ip", 1, 20*time.Millisecond)
	require.NoError(t, err)
	res, err := l.Allow(ctx, "ip", 1, 20*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	time.Sleep(30 * time.Millisecond)

	res, err = l.Allow(ctx, "ip", 1, 20*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestRedis_Allow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, nat.Port("6379/tcp"))
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: host + ":" + port.Port()})
	t.Cleanup(func() { _ = client.Close() })

	exerciseLimiter(t, NewRedis(client), "10.0.0.2")
}
