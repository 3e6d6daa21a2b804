package messagepipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// --- Redis Pub/Sub Implementation ---

// RedisPublisher broadcasts messages on a Redis channel named after the
// message's action. Redis Pub/Sub has no persistence, which matches the
// channel's fire-and-forget contract.
type RedisPublisher struct {
	client *redis.Client
	prefix string
	logger zerolog.Logger
}

// NewRedisPublisher creates a publisher on an existing client. Channel names
// are prefix + action.
func NewRedisPublisher(client *redis.Client, prefix string, logger zerolog.Logger) (*RedisPublisher, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client cannot be nil")
	}
	return &RedisPublisher{
		client: client,
		prefix: prefix,
		logger: logger.With().Str("component", "RedisPublisher").Logger(),
	}, nil
}

// Publish sends msg as JSON. A nil error does not mean any subscriber received it.
func (p *RedisPublisher) Publish(ctx context.Context, msg Message) error {
	if msg.Action == "" {
		return fmt.Errorf("message action cannot be empty")
	}
	if msg.PublishTime.IsZero() {
		msg.PublishTime = time.Now()
	}
	body, err := json.Marshal(msg.MessageData)
	if err != nil {
		return fmt.Errorf("failed to marshal message %s: %w", msg.ID, err)
	}
	receivers, err := p.client.Publish(ctx, p.prefix+msg.Action, body).Result()
	if err != nil {
		return fmt.Errorf("failed to publish message %s to redis: %w", msg.ID, err)
	}
	p.logger.Debug().Str("msg_id", msg.ID).Int64("receivers", receivers).Msg("Message sent successfully.")
	return nil
}

// Stop is a no-op; the client is owned by the caller.
func (p *RedisPublisher) Stop(_ context.Context) error {
	return nil
}

// RedisConsumerConfig holds configuration for a RedisConsumer.
type RedisConsumerConfig struct {
	Prefix     string
	Actions    []string
	BufferSize int
}

// NewRedisConsumerDefaults returns a config subscribed to the lyric channel.
func NewRedisConsumerDefaults() *RedisConsumerConfig {
	return &RedisConsumerConfig{
		Actions:    []string{ActionLyricData},
		BufferSize: 100,
	}
}

// RedisConsumer feeds broadcasts from Redis channels into this process.
type RedisConsumer struct {
	client     *redis.Client
	channels   []string
	prefix     string
	logger     zerolog.Logger
	outputChan chan Message
	doneChan   chan struct{}
	stopOnce   sync.Once
	cancel     context.CancelFunc
	pubsub     *redis.PubSub
}

// NewRedisConsumer creates a consumer on an existing client.
func NewRedisConsumer(cfg *RedisConsumerConfig, client *redis.Client, logger zerolog.Logger) (*RedisConsumer, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client cannot be nil")
	}
	if len(cfg.Actions) == 0 {
		return nil, fmt.Errorf("at least one action is required")
	}
	channels := make([]string, len(cfg.Actions))
	for i, a := range cfg.Actions {
		channels[i] = cfg.Prefix + a
	}
	return &RedisConsumer{
		client:     client,
		channels:   channels,
		prefix:     cfg.Prefix,
		logger:     logger.With().Str("component", "RedisConsumer").Strs("channels", channels).Logger(),
		outputChan: make(chan Message, cfg.BufferSize),
		doneChan:   make(chan struct{}),
	}, nil
}

func (c *RedisConsumer) Messages() <-chan Message { return c.outputChan }

// Start subscribes and waits for the subscription to be confirmed, so that
// messages published after Start returns are not missed.
func (c *RedisConsumer) Start(ctx context.Context) error {
	c.pubsub = c.client.Subscribe(ctx, c.channels...)
	if _, err := c.pubsub.Receive(ctx); err != nil {
		_ = c.pubsub.Close()
		return fmt.Errorf("failed to subscribe to redis channels: %w", err)
	}
	c.logger.Info().Msg("Subscribed to Redis channels.")

	receiveCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	ch := c.pubsub.Channel()
	go func() {
		defer close(c.doneChan)
		defer close(c.outputChan)
		for {
			select {
			case <-receiveCtx.Done():
				return
			case raw, ok := <-ch:
				if !ok {
					return
				}
				msg, err := c.decode(raw)
				if err != nil {
					c.logger.Warn().Err(err).Str("channel", raw.Channel).Msg("Dropping undecodable redis message.")
					continue
				}
				select {
				case c.outputChan <- msg:
				case <-receiveCtx.Done():
					return
				}
			}
		}
	}()
	return nil
}

func (c *RedisConsumer) decode(raw *redis.Message) (Message, error) {
	var data MessageData
	if err := json.Unmarshal([]byte(raw.Payload), &data); err != nil {
		return Message{}, fmt.Errorf("failed to unmarshal message: %w", err)
	}
	if data.Action == "" {
		data.Action = raw.Channel[len(c.prefix):]
	}
	return Message{MessageData: data, Remote: true}, nil
}

// Stop closes the subscription and waits for the receive loop to exit.
func (c *RedisConsumer) Stop(ctx context.Context) error {
	var err error
	c.stopOnce.Do(func() {
		if c.cancel == nil {
			close(c.outputChan)
			close(c.doneChan)
			return
		}
		c.cancel()
		if closeErr := c.pubsub.Close(); closeErr != nil {
			c.logger.Warn().Err(closeErr).Msg("Error closing redis subscription.")
		}
		select {
		case <-c.doneChan:
		case <-ctx.Done():
			err = ctx.Err()
		}
	})
	return err
}

func (c *RedisConsumer) Done() <-chan struct{} { return c.doneChan }
