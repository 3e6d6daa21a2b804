package config

import (
	"github.com/illmade-knight/go-lyricgetter/pkg/messagepipeline"
	"github.com/illmade-knight/go-lyricgetter/pkg/platform"
)

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		LogLevel:        "info",
		PlatformLevel:   int(platform.Default),
		Transport:       TransportRedis,
		MaxPayloadBytes: messagepipeline.DefaultMaxPayloadBytes,
		HTTPAddr:        ":8080",

		PresenceTTLSeconds: 600,
		Redis: Redis{
			Addr:           "localhost:6379",
			PresencePrefix: "lyricgetter:nowplaying:",
			IconPrefix:     "lyricgetter:icon:",
			IconTTLSeconds: 86400,
		},
		PubSub: PubSub{
			TopicID:        "lyric-data",
			SubscriptionID: "lyric-data-listen",
		},
		Icons: Icons{
			Collection: "package-icons",
			LRUSize:    64,
		},
	}
}
