package cache

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryAdapter implements the Cache interface with an in-process store.
// Used when no Redis URL is configured; entries do not survive restarts.
type MemoryAdapter struct {
	store *gocache.Cache
}

// NewMemoryAdapter creates a new in-memory cache adapter.
func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		store: gocache.New(gocache.NoExpiration, 1*time.Minute),
	}
}

// Get retrieves a value from the in-memory store by key.
func (m *MemoryAdapter) Get(_ context.Context, key string) ([]byte, error) {
	val, ok := m.store.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	data, ok := val.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected value type for key %s", key)
	}
	return data, nil
}

// Set stores a value with the specified TTL. A TTL of 0 means no expiration.
func (m *MemoryAdapter) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = gocache.NoExpiration
	}
	m.store.Set(key, value, ttl)
	return nil
}

// Delete removes a value from the in-memory store by key.
func (m *MemoryAdapter) Delete(_ context.Context, key string) error {
	m.store.Delete(key)
	return nil
}

// Ping always succeeds for the in-memory store.
func (m *MemoryAdapter) Ping(_ context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryAdapter) Close() error {
	return nil
}
