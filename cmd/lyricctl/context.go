package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/pubsub"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/illmade-knight/go-lyricgetter/internal/config"
	"github.com/illmade-knight/go-lyricgetter/pkg/cache"
	"github.com/illmade-knight/go-lyricgetter/pkg/platform"
)

// commandContext lazily loads configuration and owns the clients opened by a
// command, closing them once it finishes.
type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
	logger     zerolog.Logger

	mu      sync.Mutex
	redis   *redis.Client
	pubsub  *pubsub.Client
	closers []func() error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		logger:       zerolog.New(os.Stderr).With().Timestamp().Logger(),
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.LogLevel = strings.TrimSpace(*c.logLevelFlag)
		}
		level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
		if err != nil {
			c.configErr = fmt.Errorf("log level: %w", err)
			return
		}
		zerolog.SetGlobalLevel(level)
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) level() platform.Level {
	if c.config == nil {
		return platform.Default
	}
	return platform.Level(c.config.PlatformLevel)
}

func (c *commandContext) redisCacheConfig(prefix string, ttl time.Duration) *cache.RedisConfig {
	r := c.config.Redis
	return &cache.RedisConfig{
		Addr:      r.Addr,
		Password:  r.Password,
		DB:        r.DB,
		CacheTTL:  ttl,
		KeyPrefix: prefix,
	}
}

// redisClient connects on first use. It is shared by the transport and the caches.
func (c *commandContext) redisClient(ctx context.Context) (*redis.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.redis != nil {
		return c.redis, nil
	}
	client, err := cache.NewRedisClient(ctx, c.redisCacheConfig("", 0), c.logger)
	if err != nil {
		return nil, err
	}
	c.redis = client
	c.closers = append(c.closers, client.Close)
	return client, nil
}

func (c *commandContext) pubsubClient(ctx context.Context) (*pubsub.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pubsub != nil {
		return c.pubsub, nil
	}
	client, err := pubsub.NewClient(ctx, c.config.PubSub.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}
	c.pubsub = client
	c.closers = append(c.closers, client.Close)
	return client, nil
}

func (c *commandContext) firestoreClient(ctx context.Context) (*firestore.Client, error) {
	client, err := firestore.NewClient(ctx, c.config.Icons.FirestoreProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	c.mu.Lock()
	c.closers = append(c.closers, client.Close)
	c.mu.Unlock()
	return client, nil
}

// onClose registers fn to run when the command finishes, before the clients close.
func (c *commandContext) onClose(fn func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closers = append(c.closers, fn)
}

// close runs the registered closers in reverse order.
func (c *commandContext) close() error {
	c.mu.Lock()
	closers := c.closers
	c.closers = nil
	c.redis = nil
	c.pubsub = nil
	c.mu.Unlock()

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
