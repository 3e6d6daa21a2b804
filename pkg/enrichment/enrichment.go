// Package enrichment fills attribute bags with data the sender did not supply,
// such as the encoded icon of the player package, right before an event is sent.
package enrichment

import (
	"context"
	"fmt"

	"github.com/illmade-knight/go-lyricgetter/pkg/cache"
	"github.com/illmade-knight/go-lyricgetter/pkg/extradata"
	"github.com/rs/zerolog"
)

// Fetcher is a generic function type for fetching data by a key.
type Fetcher[K any, V any] func(ctx context.Context, key K) (V, error)

// FromFetcher adapts a cache layer or source to a Fetcher function.
func FromFetcher[K comparable, V any](f cache.Fetcher[K, V]) Fetcher[K, V] {
	return f.Fetch
}

// Enricher modifies a bag in place. Enrichment is best effort: a failed lookup
// leaves the bag as it was and reports false.
type Enricher func(ctx context.Context, extra *extradata.ExtraData) (enriched bool)

// KeyExtractor returns the lookup key for a bag, or false when the bag needs no enrichment.
type KeyExtractor[K comparable] func(extra *extradata.ExtraData) (K, bool)

// Applier writes fetched data into the bag.
type Applier[V any] func(extra *extradata.ExtraData, data V)

// NewEnricherFunc builds an Enricher from a fetcher, key extractor and applier.
func NewEnricherFunc[K comparable, V any](
	fetcher Fetcher[K, V],
	keyEx KeyExtractor[K],
	applier Applier[V],
	logger zerolog.Logger,
) (Enricher, error) {
	if fetcher == nil || keyEx == nil || applier == nil {
		return nil, fmt.Errorf("fetcher, keyExtractor, and applier cannot be nil")
	}

	enrichLogger := logger.With().Str("component", "EnricherFunc").Logger()

	return func(ctx context.Context, extra *extradata.ExtraData) bool {
		if extra == nil {
			return false
		}
		key, ok := keyEx(extra)
		if !ok {
			return false
		}

		data, err := fetcher(ctx, key)
		if err != nil {
			enrichLogger.Warn().Err(err).Msgf("Failed to fetch enrichment data for key '%v'", key)
			return false
		}

		applier(extra, data)
		enrichLogger.Debug().Msgf("Bag enriched for key '%v'.", key)
		return true
	}, nil
}

// Chain runs enrichers in order and reports whether any of them changed the bag.
func Chain(enrichers ...Enricher) Enricher {
	return func(ctx context.Context, extra *extradata.ExtraData) bool {
		enriched := false
		for _, e := range enrichers {
			if e(ctx, extra) {
				enriched = true
			}
		}
		return enriched
	}
}

// NewPackageIconEnricher fills base64Icon from the icon registry when the bag
// names a package but carries no icon of its own.
func NewPackageIconEnricher(fetcher Fetcher[string, cache.IconRecord], logger zerolog.Logger) (Enricher, error) {
	keyEx := func(extra *extradata.ExtraData) (string, bool) {
		pkg := extra.PackageName()
		if pkg == "" || extra.Base64Icon() != "" {
			return "", false
		}
		return pkg, true
	}
	applier := func(extra *extradata.ExtraData, record cache.IconRecord) {
		if record.Base64Icon != "" {
			extra.SetBase64Icon(record.Base64Icon)
		}
	}
	return NewEnricherFunc(fetcher, keyEx, applier, logger.With().Str("enricher", "package_icon").Logger())
}
