// Package cache provides the layered lookups used to resolve package icons and
// the presence store that tracks what each player is showing right now.
package cache

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by every layer when a key has no value and no
// fallback could supply one.
var ErrNotFound = errors.New("key not found")

// Fetcher resolves a value by key. Caches chain by taking another Fetcher as
// their fallback.
type Fetcher[K comparable, V any] interface {
	Fetch(ctx context.Context, key K) (V, error)
	io.Closer
}

// Cache is a Fetcher that can also be written to and invalidated.
type Cache[K comparable, V any] interface {
	Fetcher[K, V]
	Write(ctx context.Context, key K, value V) error
	// Invalidate removes the key from this layer only; it does not cascade.
	Invalidate(ctx context.Context, key K) error
}
