package enrichment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/illmade-knight/go-lyricgetter/pkg/cache"
	"github.com/rs/zerolog"
)

// FetcherConfig holds configuration for the cache-fallback fetcher.
type FetcherConfig struct {
	CacheWriteTimeout time.Duration
}

// NewFetcherConfigDefaults returns the default write-back timeout.
func NewFetcherConfigDefaults() *FetcherConfig {
	return &FetcherConfig{CacheWriteTimeout: 5 * time.Second}
}

// CacheFallbackFetcher reads from a cache first, then from a source of truth,
// writing source hits back to the cache in the background. Close waits for
// pending write-backs.
type CacheFallbackFetcher[K comparable, V any] struct {
	cacheTimeout time.Duration
	logger       zerolog.Logger
	fallback     cache.Fetcher[K, V]
	cache        cache.Cache[K, V]
	writes       sync.WaitGroup
}

// NewCacheFallbackFetcher creates a cache-then-source fetcher.
func NewCacheFallbackFetcher[K comparable, V any](
	cfg *FetcherConfig,
	c cache.Cache[K, V],
	source cache.Fetcher[K, V],
	logger zerolog.Logger,
) *CacheFallbackFetcher[K, V] {
	timeout := cfg.CacheWriteTimeout
	if timeout <= 0 {
		timeout = NewFetcherConfigDefaults().CacheWriteTimeout
	}
	return &CacheFallbackFetcher[K, V]{
		cacheTimeout: timeout,
		logger:       logger.With().Str("component", "CacheFallbackFetcher").Logger(),
		fallback:     source,
		cache:        c,
	}
}

func (c *CacheFallbackFetcher[K, V]) Fetch(ctx context.Context, key K) (V, error) {
	var zero V
	value, err := c.cache.Fetch(ctx, key)
	if err == nil {
		return value, nil
	}
	c.logger.Debug().Err(err).Msg("Cache miss. Falling back to source.")

	value, err = c.fallback.Fetch(ctx, key)
	if err != nil {
		return zero, fmt.Errorf("error fetching from source: %w", err)
	}

	// The write-back must outlive the caller's context.
	c.writes.Add(1)
	go func(k K, v V) {
		defer c.writes.Done()
		writeCtx, cancel := context.WithTimeout(context.Background(), c.cacheTimeout)
		defer cancel()
		if writeErr := c.cache.Write(writeCtx, k, v); writeErr != nil {
			c.logger.Error().Err(writeErr).Msg("Failed to write to cache in background.")
		}
	}(key, value)

	return value, nil
}

// Close waits for pending write-backs, then closes the cache and the source.
func (c *CacheFallbackFetcher[K, V]) Close() error {
	c.waitForWrites()
	if err := c.cache.Close(); err != nil {
		return fmt.Errorf("error closing cache: %w", err)
	}
	if err := c.fallback.Close(); err != nil {
		return fmt.Errorf("error closing source: %w", err)
	}
	return nil
}

// waitForWrites blocks until background writes finish. Each write is bounded
// by cacheTimeout, so the wait is too.
func (c *CacheFallbackFetcher[K, V]) waitForWrites() {
	done := make(chan struct{})
	go func() {
		c.writes.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(c.cacheTimeout):
		c.logger.Warn().Dur("timeout", c.cacheTimeout).Msg("Gave up waiting for cache write-backs.")
	}
}
