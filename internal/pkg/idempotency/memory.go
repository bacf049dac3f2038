package idempotency

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

type memoryStore struct {
	c *cache.Cache
}

// NewMemory returns a tracker that keeps state in process memory. It only
// deduplicates within a single replica.
func NewMemory() *StateTracker {
	return &StateTracker{
		store:  &memoryStore{c: cache.New(defaultStateTTL, 10*time.Minute)},
		prefix: "idempotency:",
	}
}

func (m *memoryStore) setNX(_ context.Context, key, val string, ttl time.Duration) (bool, error) {
	// Add fails when an unexpired item exists.
	return m.c.Add(key, val, ttl) == nil, nil
}

func (m *memoryStore) get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return "", false, nil
	}
	s, _ := v.(string)
	return s, true, nil
}

func (m *memoryStore) set(_ context.Context, key, val string, ttl time.Duration) error {
	m.c.Set(key, val, ttl)
	return nil
}

func (m *memoryStore) del(_ context.Context, key string) error {
	m.c.Delete(key)
	return nil
}
