package cache

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type presenceEntry[V any] struct {
	value   V
	expires time.Time
}

// InMemoryPresenceCache is a PresenceCache for a single listen daemon. With a
// TTL, entries not refreshed in time read as absent, matching the Redis
// presence cache.
type InMemoryPresenceCache[K comparable, V any] struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	data map[K]presenceEntry[V]
}

// NewInMemoryPresenceCache creates a presence cache whose entries never expire.
func NewInMemoryPresenceCache[K comparable, V any]() *InMemoryPresenceCache[K, V] {
	return NewInMemoryPresenceCacheWithTTL[K, V](0)
}

// NewInMemoryPresenceCacheWithTTL creates a presence cache whose entries expire
// ttl after their last Set. A non-positive ttl disables expiry.
func NewInMemoryPresenceCacheWithTTL[K comparable, V any](ttl time.Duration) *InMemoryPresenceCache[K, V] {
	return &InMemoryPresenceCache[K, V]{
		ttl:  ttl,
		now:  time.Now,
		data: make(map[K]presenceEntry[V]),
	}
}

func (c *InMemoryPresenceCache[K, V]) expired(e presenceEntry[V]) bool {
	return !e.expires.IsZero() && !c.now().Before(e.expires)
}

func (c *InMemoryPresenceCache[K, V]) Set(_ context.Context, key K, value V) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := presenceEntry[V]{value: value}
	if c.ttl > 0 {
		e.expires = c.now().Add(c.ttl)
	}
	c.data[key] = e
	return nil
}

// Fetch returns an error wrapping ErrNotFound for absent or expired keys.
func (c *InMemoryPresenceCache[K, V]) Fetch(_ context.Context, key K) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.data[key]
	if ok && c.expired(e) {
		delete(c.data, key)
		ok = false
	}
	if !ok {
		var zero V
		return zero, fmt.Errorf("presence for %v: %w", key, ErrNotFound)
	}
	return e.value, nil
}

func (c *InMemoryPresenceCache[K, V]) Delete(_ context.Context, key K) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// Keys returns the live keys in no particular order, dropping expired ones.
func (c *InMemoryPresenceCache[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]K, 0, len(c.data))
	for k, e := range c.data {
		if c.expired(e) {
			delete(c.data, k)
			continue
		}
		keys = append(keys, k)
	}
	return keys
}

func (c *InMemoryPresenceCache[K, V]) Close() error {
	return nil
}
