package main

import (
	"context"
	"fmt"

	"github.com/illmade-knight/go-lyricgetter/internal/config"
	"github.com/illmade-knight/go-lyricgetter/pkg/messagepipeline"
)

// newPublisher opens the configured transport for sending. The returned
// publisher enforces the configured payload limit and is stopped on close.
func (c *commandContext) newPublisher(ctx context.Context) (messagepipeline.SimplePublisher, error) {
	var inner messagepipeline.SimplePublisher

	switch c.config.Transport {
	case config.TransportLocal:
		inner = messagepipeline.NewLocalBroadcaster(messagepipeline.LocalBroadcasterConfig{}, c.logger)
	case config.TransportRedis:
		client, err := c.redisClient(ctx)
		if err != nil {
			return nil, err
		}
		p, err := messagepipeline.NewRedisPublisher(client, c.config.Redis.ChannelPrefix, c.logger)
		if err != nil {
			return nil, err
		}
		inner = p
	case config.TransportPubSub:
		client, err := c.pubsubClient(ctx)
		if err != nil {
			return nil, err
		}
		p, err := messagepipeline.NewGoogleSimplePublisher(ctx, messagepipeline.NewGoogleSimplePublisherDefaults(c.config.PubSub.TopicID), client, c.logger)
		if err != nil {
			return nil, err
		}
		inner = p
	default:
		return nil, fmt.Errorf("unknown transport %q", c.config.Transport)
	}

	publisher := messagepipeline.WithPayloadValidation(inner, c.config.MaxPayloadBytes, c.logger)
	c.onClose(func() error { return publisher.Stop(context.Background()) })
	return publisher, nil
}

// newConsumer opens the configured transport for receiving. The local
// transport has no remote side, so it returns a nil consumer.
func (c *commandContext) newConsumer(ctx context.Context) (messagepipeline.MessageConsumer, error) {
	switch c.config.Transport {
	case config.TransportLocal:
		return nil, nil
	case config.TransportRedis:
		client, err := c.redisClient(ctx)
		if err != nil {
			return nil, err
		}
		cfg := messagepipeline.NewRedisConsumerDefaults()
		cfg.Prefix = c.config.Redis.ChannelPrefix
		return messagepipeline.NewRedisConsumer(cfg, client, c.logger)
	case config.TransportPubSub:
		client, err := c.pubsubClient(ctx)
		if err != nil {
			return nil, err
		}
		cfg := messagepipeline.NewGooglePubsubConsumerDefaults(c.config.PubSub.SubscriptionID)
		return messagepipeline.NewGooglePubsubConsumer(cfg, client, c.logger)
	default:
		return nil, fmt.Errorf("unknown transport %q", c.config.Transport)
	}
}
