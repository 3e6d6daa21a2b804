// Package config loads lyricctl settings from a file and the environment.
// Environment variables, prefixed LYRICGETTER_, override file values.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LYRICGETTER_"

// Transport names.
const (
	TransportLocal  = "local"
	TransportRedis  = "redis"
	TransportPubSub = "pubsub"
)

// Redis contains connection and key layout settings for Redis.
type Redis struct {
	Addr     string `toml:"addr" yaml:"addr" json:"addr" env:"ADDR"`
	Password string `toml:"password" yaml:"password" json:"password" env:"PASSWORD"`
	DB       int    `toml:"db" yaml:"db" json:"db" env:"DB"`

	// ChannelPrefix is prepended to the channel name on publish and subscribe.
	ChannelPrefix  string `toml:"channel_prefix" yaml:"channel_prefix" json:"channel_prefix" env:"CHANNEL_PREFIX"`
	PresencePrefix string `toml:"presence_prefix" yaml:"presence_prefix" json:"presence_prefix" env:"PRESENCE_PREFIX"`
	IconPrefix     string `toml:"icon_prefix" yaml:"icon_prefix" json:"icon_prefix" env:"ICON_PREFIX"`
	IconTTLSeconds int    `toml:"icon_ttl_seconds" yaml:"icon_ttl_seconds" json:"icon_ttl_seconds" env:"ICON_TTL_SECONDS"`
}

// PubSub contains Google Cloud Pub/Sub settings.
type PubSub struct {
	ProjectID      string `toml:"project_id" yaml:"project_id" json:"project_id" env:"PROJECT_ID"`
	TopicID        string `toml:"topic_id" yaml:"topic_id" json:"topic_id" env:"TOPIC_ID"`
	SubscriptionID string `toml:"subscription_id" yaml:"subscription_id" json:"subscription_id" env:"SUBSCRIPTION_ID"`
}

// Icons contains settings for the package icon registry.
type Icons struct {
	// FirestoreProjectID enables the Firestore registry when set.
	FirestoreProjectID string `toml:"firestore_project_id" yaml:"firestore_project_id" json:"firestore_project_id" env:"FIRESTORE_PROJECT_ID"`
	Collection         string `toml:"collection" yaml:"collection" json:"collection" env:"COLLECTION"`
	LRUSize            int    `toml:"lru_size" yaml:"lru_size" json:"lru_size" env:"LRU_SIZE"`
}

// Config is the full lyricctl configuration.
type Config struct {
	LogLevel        string `toml:"log_level" yaml:"log_level" json:"log_level" env:"LOG_LEVEL"`
	PlatformLevel   int    `toml:"platform_level" yaml:"platform_level" json:"platform_level" env:"PLATFORM_LEVEL"`
	Transport       string `toml:"transport" yaml:"transport" json:"transport" env:"TRANSPORT"`
	MaxPayloadBytes int    `toml:"max_payload_bytes" yaml:"max_payload_bytes" json:"max_payload_bytes" env:"MAX_PAYLOAD_BYTES"`
	HTTPAddr        string `toml:"http_addr" yaml:"http_addr" json:"http_addr" env:"HTTP_ADDR"`
	Hooked          bool   `toml:"hooked" yaml:"hooked" json:"hooked" env:"HOOKED"`
	// PresenceTTLSeconds is how long a player stays listed without new events.
	PresenceTTLSeconds int `toml:"presence_ttl_seconds" yaml:"presence_ttl_seconds" json:"presence_ttl_seconds" env:"PRESENCE_TTL_SECONDS"`

	// AllowedOrigins enables CORS on the now-playing routes.
	AllowedOrigins []string `toml:"allowed_origins" yaml:"allowed_origins" json:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`

	Redis  Redis  `toml:"redis" yaml:"redis" json:"redis" envPrefix:"REDIS_"`
	PubSub PubSub `toml:"pubsub" yaml:"pubsub" json:"pubsub" envPrefix:"PUBSUB_"`
	Icons  Icons  `toml:"icons" yaml:"icons" json:"icons" envPrefix:"ICONS_"`
}

// PresenceTTL returns the presence TTL as a duration.
func (c *Config) PresenceTTL() time.Duration {
	return time.Duration(c.PresenceTTLSeconds) * time.Second
}

// IconTTL returns the icon cache TTL as a duration.
func (r Redis) IconTTL() time.Duration {
	return time.Duration(r.IconTTLSeconds) * time.Second
}

// Load starts from Default, applies the file at path if it exists, then
// environment overrides, and validates the result. The file format follows the
// extension: .yaml/.yml, .json, or TOML otherwise. An empty path skips the
// file. The second return value reports whether a file was read.
func Load(path string) (*Config, bool, error) {
	cfg := Default()

	exists := false
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			exists = true
			if err := decode(path, b, &cfg); err != nil {
				return nil, false, fmt.Errorf("parse config: %w", err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, false, fmt.Errorf("read config: %w", err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, false, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, false, err
	}
	return &cfg, exists, nil
}

func decode(path string, b []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(b, cfg)
	case ".json":
		return json.Unmarshal(b, cfg)
	default:
		return toml.Unmarshal(b, cfg)
	}
}
