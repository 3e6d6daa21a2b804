package cache

import (
	"context"
	"io"
)

// PresenceCache holds ephemeral state that has no source of truth to fall back
// on, such as the lyric a player is currently showing. It requires explicit Set
// and Delete operations.
type PresenceCache[K comparable, V any] interface {
	Set(ctx context.Context, key K, value V) error
	// Fetch returns an error wrapping ErrNotFound for absent keys.
	Fetch(ctx context.Context, key K) (V, error)
	Delete(ctx context.Context, key K) error
	io.Closer
}
