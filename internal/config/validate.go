package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		errs = append(errs, fmt.Errorf("log_level %q: %w", c.LogLevel, err))
	}
	if c.PlatformLevel <= 0 {
		errs = append(errs, fmt.Errorf("platform_level must be positive, got %d", c.PlatformLevel))
	}
	if c.MaxPayloadBytes <= 0 {
		errs = append(errs, fmt.Errorf("max_payload_bytes must be positive, got %d", c.MaxPayloadBytes))
	}

	switch c.Transport {
	case TransportLocal:
	case TransportRedis:
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("redis.addr is required for the redis transport"))
		}
	case TransportPubSub:
		if c.PubSub.ProjectID == "" {
			errs = append(errs, errors.New("pubsub.project_id is required for the pubsub transport"))
		}
		if c.PubSub.TopicID == "" {
			errs = append(errs, errors.New("pubsub.topic_id is required for the pubsub transport"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown transport %q", c.Transport))
	}

	if c.Icons.LRUSize <= 0 {
		errs = append(errs, fmt.Errorf("icons.lru_size must be positive, got %d", c.Icons.LRUSize))
	}
	return errors.Join(errs...)
}
