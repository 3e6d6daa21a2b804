package cache

import (
	"container/list"
	"context"
	"fmt"
	"sync"
)

type lruCacheItem[K comparable, V any] struct {
	key   K
	value V
}

// InMemoryLRUCache is a generic, thread-safe, in-memory cache with a fixed size
// and a least recently used eviction policy. It sits in front of slower layers
// such as RedisCache.
type InMemoryLRUCache[K comparable, V any] struct {
	maxSize  int
	fallback Fetcher[K, V]

	mu    sync.Mutex
	ll    *list.List
	cache map[K]*list.Element
}

// NewInMemoryLRUCache creates a size-limited cache. maxSize must be > 0;
// fallback may be nil.
func NewInMemoryLRUCache[K comparable, V any](maxSize int, fallback Fetcher[K, V]) (*InMemoryLRUCache[K, V], error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("maxSize must be greater than 0")
	}
	return &InMemoryLRUCache[K, V]{
		maxSize:  maxSize,
		fallback: fallback,
		ll:       list.New(),
		cache:    make(map[K]*list.Element),
	}, nil
}

// Fetch returns a cached value and marks it recently used. On a miss it loads
// the value from the fallback, stores it, and evicts the oldest entry if the
// cache is full.
func (c *InMemoryLRUCache[K, V]) Fetch(ctx context.Context, key K) (V, error) {
	c.mu.Lock()
	if elem, ok := c.cache[key]; ok {
		c.ll.MoveToFront(elem)
		c.mu.Unlock()
		return elem.Value.(*lruCacheItem[K, V]).value, nil
	}
	c.mu.Unlock()

	var zero V
	if c.fallback == nil {
		return zero, fmt.Errorf("key '%v' not in LRU cache: %w", key, ErrNotFound)
	}

	sourceValue, err := c.fallback.Fetch(ctx, key)
	if err != nil {
		return zero, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another goroutine may have filled the key while we were fetching.
	if elem, ok := c.cache[key]; ok {
		c.ll.MoveToFront(elem)
		return elem.Value.(*lruCacheItem[K, V]).value, nil
	}
	c.put(key, sourceValue)
	return sourceValue, nil
}

// Write stores value, replacing any existing entry.
func (c *InMemoryLRUCache[K, V]) Write(_ context.Context, key K, value V) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.cache[key]; ok {
		elem.Value.(*lruCacheItem[K, V]).value = value
		c.ll.MoveToFront(elem)
		return nil
	}
	c.put(key, value)
	return nil
}

func (c *InMemoryLRUCache[K, V]) Invalidate(_ context.Context, key K) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.cache[key]; ok {
		c.ll.Remove(elem)
		delete(c.cache, key)
	}
	return nil
}

// Len returns the number of cached entries.
func (c *InMemoryLRUCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// put must be called with the mutex held.
func (c *InMemoryLRUCache[K, V]) put(key K, value V) {
	c.cache[key] = c.ll.PushFront(&lruCacheItem[K, V]{key: key, value: value})
	if c.ll.Len() > c.maxSize {
		if oldest := c.ll.Back(); oldest != nil {
			item := c.ll.Remove(oldest).(*lruCacheItem[K, V])
			delete(c.cache, item.key)
		}
	}
}

// Close is a no-op.
func (c *InMemoryLRUCache[K, V]) Close() error {
	return nil
}
