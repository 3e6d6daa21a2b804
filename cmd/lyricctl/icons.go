package main

import (
	"context"
	"fmt"

	"github.com/illmade-knight/go-lyricgetter/internal/config"
	"github.com/illmade-knight/go-lyricgetter/pkg/cache"
	"github.com/illmade-knight/go-lyricgetter/pkg/enrichment"
	"github.com/illmade-knight/go-lyricgetter/pkg/imagecodec"
)

// iconSource picks the source of truth for package icons. A local icon file
// wins over the Firestore registry. It returns nil when neither is available.
func (c *commandContext) iconSource(ctx context.Context, packageName, iconFile string) (cache.Fetcher[string, cache.IconRecord], error) {
	if iconFile != "" {
		if packageName == "" {
			return nil, fmt.Errorf("--icon-file needs --package")
		}
		img, err := loadImage(iconFile)
		if err != nil {
			return nil, err
		}
		drawables := enrichment.NewDrawableSource(c.level(), c.logger)
		drawables.Register(packageName, &imagecodec.BitmapDrawable{Image: img})
		return drawables, nil
	}

	if c.config.Icons.FirestoreProjectID == "" {
		return nil, nil
	}
	client, err := c.firestoreClient(ctx)
	if err != nil {
		return nil, err
	}
	return cache.NewFirestoreSource(&cache.FirestoreConfig{
		ProjectID:      c.config.Icons.FirestoreProjectID,
		CollectionName: c.config.Icons.Collection,
	}, client, c.logger)
}

// iconEnricher builds the icon lookup chain: an in-process LRU in front of
// Redis (when Redis is the transport) in front of the icon source. Source hits
// are written back to Redis before the command's clients close.
func (c *commandContext) iconEnricher(ctx context.Context, packageName, iconFile string) (enrichment.Enricher, error) {
	source, err := c.iconSource(ctx, packageName, iconFile)
	if err != nil || source == nil {
		return nil, err
	}

	fetcher := source
	if c.config.Transport == config.TransportRedis {
		client, err := c.redisClient(ctx)
		if err != nil {
			return nil, err
		}
		redisCfg := c.redisCacheConfig(c.config.Redis.IconPrefix, c.config.Redis.IconTTL())
		shared, err := cache.NewRedisCache[string, cache.IconRecord](redisCfg, client, c.logger, nil)
		if err != nil {
			return nil, err
		}
		// An icon file replaces whatever the shared cache holds for the package.
		if iconFile != "" {
			if err := shared.Invalidate(ctx, packageName); err != nil {
				return nil, err
			}
		}
		fetcher = enrichment.NewCacheFallbackFetcher[string, cache.IconRecord](enrichment.NewFetcherConfigDefaults(), shared, source, c.logger)
	}

	lru, err := cache.NewInMemoryLRUCache[string, cache.IconRecord](c.config.Icons.LRUSize, fetcher)
	if err != nil {
		return nil, err
	}
	c.onClose(fetcher.Close)
	return enrichment.NewPackageIconEnricher(enrichment.FromFetcher[string, cache.IconRecord](lru), c.logger)
}
