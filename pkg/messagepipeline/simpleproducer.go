package messagepipeline

import (
	"context"
	"fmt"
	"maps"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/rs/zerolog"
)

// GoogleSimplePublisherConfig configures a GoogleSimplePublisher.
type GoogleSimplePublisherConfig struct {
	TopicID string
	// EnableOrdering keys each message by its AttrPackageName attribute, so one
	// player's events reach subscribers in publish order.
	EnableOrdering bool
	// ResultTimeout bounds the background wait for the broker's publish result.
	ResultTimeout time.Duration
}

// NewGoogleSimplePublisherDefaults returns an ordered publisher config for topicID.
func NewGoogleSimplePublisherDefaults(topicID string) *GoogleSimplePublisherConfig {
	return &GoogleSimplePublisherConfig{
		TopicID:        topicID,
		EnableOrdering: true,
		ResultTimeout:  30 * time.Second,
	}
}

// GoogleSimplePublisher broadcasts channel messages to a Pub/Sub topic so that
// listeners in other processes can bridge them in.
type GoogleSimplePublisher struct {
	topic         *pubsub.Topic
	ordered       bool
	resultTimeout time.Duration
	logger        zerolog.Logger
}

// NewGoogleSimplePublisher creates a non-batching publisher. ctx bounds the
// check that the topic exists.
func NewGoogleSimplePublisher(ctx context.Context, cfg *GoogleSimplePublisherConfig, client *pubsub.Client, logger zerolog.Logger) (*GoogleSimplePublisher, error) {
	if client == nil {
		return nil, fmt.Errorf("pubsub client cannot be nil")
	}
	if cfg.TopicID == "" {
		return nil, fmt.Errorf("topic ID cannot be empty")
	}
	topic := client.Topic(cfg.TopicID)

	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check for topic %s: %w", cfg.TopicID, err)
	}
	if !exists {
		return nil, fmt.Errorf("pubsub topic %s does not exist", cfg.TopicID)
	}
	topic.EnableMessageOrdering = cfg.EnableOrdering

	timeout := cfg.ResultTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GoogleSimplePublisher{
		topic:         topic,
		ordered:       cfg.EnableOrdering,
		resultTimeout: timeout,
		logger:        logger.With().Str("component", "GoogleSimplePublisher").Str("topic_id", cfg.TopicID).Logger(),
	}, nil
}

// Publish queues msg on the topic and returns. The channel name and message ID
// travel as attributes and the Data slot becomes the Pub/Sub payload. The
// broker's result is checked in the background; a failed ordered publish
// resumes its key so later events for that player are not blocked.
func (p *GoogleSimplePublisher) Publish(ctx context.Context, msg Message) error {
	attributes := make(map[string]string, len(msg.Attributes)+2)
	maps.Copy(attributes, msg.Attributes)
	attributes[attrAction] = msg.Action
	if msg.ID != "" {
		attributes[attrMessageID] = msg.ID
	}

	out := &pubsub.Message{Data: msg.Data, Attributes: attributes}
	if p.ordered {
		out.OrderingKey = attributes[AttrPackageName]
	}
	result := p.topic.Publish(ctx, out)

	go func(key string) {
		getCtx, cancel := context.WithTimeout(context.Background(), p.resultTimeout)
		defer cancel()

		serverID, err := result.Get(getCtx)
		if err != nil {
			p.logger.Error().Err(err).Str("msg_id", msg.ID).Str("ordering_key", key).Msg("Failed to publish lyric event.")
			if key != "" {
				p.topic.ResumePublish(key)
			}
			return
		}
		p.logger.Debug().Str("msg_id", msg.ID).Str("pubsub_msg_id", serverID).Msg("Lyric event published.")
	}(out.OrderingKey)

	return nil
}

// Stop flushes pending messages, giving up when ctx is done.
func (p *GoogleSimplePublisher) Stop(ctx context.Context) error {
	stopped := make(chan struct{})
	go func() {
		p.topic.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
