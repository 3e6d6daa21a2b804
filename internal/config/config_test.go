package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/illmade-knight/go-lyricgetter/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lyricgetter.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultsWhenFileAbsent(t *testing.T) {
	cfg, exists, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))

	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, config.Default(), *cfg)
	assert.Equal(t, 33, cfg.PlatformLevel)
	assert.Equal(t, 500*1024, cfg.MaxPayloadBytes)
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
log_level = "debug"
platform_level = 26
transport = "pubsub"

[pubsub]
project_id = "my-project"
topic_id = "lyrics"
presence_ttl_seconds = 30
`)

	cfg, exists, err := config.Load(path)

	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 26, cfg.PlatformLevel)
	assert.Equal(t, config.TransportPubSub, cfg.Transport)
	assert.Equal(t, "my-project", cfg.PubSub.ProjectID)
	assert.Equal(t, "lyrics", cfg.PubSub.TopicID)
	assert.Equal(t, "lyric-data-listen", cfg.PubSub.SubscriptionID, "unset keys keep their defaults")
	assert.Equal(t, 30, cfg.PresenceTTLSeconds)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoad_YAMLAndJSON(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "lyricgetter.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("transport: local\nicons:\n  lru_size: 3\nallowed_origins:\n  - http://overlay.local\n"), 0o600))
	jsonPath := filepath.Join(dir, "lyricgetter.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"transport":"local","http_addr":":9090"}`), 0o600))

	cfg, exists, err := config.Load(yamlPath)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, config.TransportLocal, cfg.Transport)
	assert.Equal(t, 3, cfg.Icons.LRUSize)
	assert.Equal(t, []string{"http://overlay.local"}, cfg.AllowedOrigins)

	cfg, _, err = config.Load(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 64, cfg.Icons.LRUSize)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, `
transport = "redis"
[redis]
addr = "file:6379"
`)
	t.Setenv("LYRICGETTER_REDIS_ADDR", "env:6379")
	t.Setenv("LYRICGETTER_LOG_LEVEL", "warn")
	t.Setenv("LYRICGETTER_ICONS_LRU_SIZE", "8")
	t.Setenv("LYRICGETTER_ALLOWED_ORIGINS", "http://a.local,http://b.local")

	cfg, _, err := config.Load(path)

	require.NoError(t, err)
	assert.Equal(t, "env:6379", cfg.Redis.Addr)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 8, cfg.Icons.LRUSize)
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.AllowedOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		body string
		want string
	}{
		{name: "unknown transport", body: `transport = "carrier-pigeon"`, want: "unknown transport"},
		{name: "pubsub without project", body: `transport = "pubsub"`, want: "pubsub.project_id"},
		{name: "bad log level", body: `log_level = "chatty"`, want: "log_level"},
		{name: "non-positive payload", body: `max_payload_bytes = 0`, want: "max_payload_bytes"},
		{name: "malformed toml", body: `transport = `, want: "parse config"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := config.Load(writeConfig(t, tc.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestDurations(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, "10m0s", cfg.PresenceTTL().String())
	assert.Equal(t, "24h0m0s", cfg.Redis.IconTTL().String())
}
