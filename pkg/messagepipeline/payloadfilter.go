package messagepipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// DefaultMaxPayloadBytes is the size budget of a single broadcast payload.
const DefaultMaxPayloadBytes = 500 * 1024

// ErrPayloadTooLarge is returned when a message's Data slot exceeds the budget.
var ErrPayloadTooLarge = errors.New("payload exceeds transport size limit")

// ValidatePayloadSize checks msg.Data against maxSize. A non-positive maxSize
// uses DefaultMaxPayloadBytes.
func ValidatePayloadSize(msg Message, maxSize int) error {
	if maxSize <= 0 {
		maxSize = DefaultMaxPayloadBytes
	}
	if len(msg.Data) > maxSize {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrPayloadTooLarge, len(msg.Data), maxSize)
	}
	return nil
}

type payloadValidatingPublisher struct {
	inner   SimplePublisher
	maxSize int
	logger  zerolog.Logger
}

// WithPayloadValidation is a decorator. It returns a publisher that rejects
// oversized messages before they reach inner.
func WithPayloadValidation(inner SimplePublisher, maxSize int, logger zerolog.Logger) SimplePublisher {
	return &payloadValidatingPublisher{
		inner:   inner,
		maxSize: maxSize,
		logger:  logger,
	}
}

func (p *payloadValidatingPublisher) Publish(ctx context.Context, msg Message) error {
	if err := ValidatePayloadSize(msg, p.maxSize); err != nil {
		p.logger.Warn().Str("msg_id", msg.ID).Int("payload_size", len(msg.Data)).Msg("Rejecting message due to invalid payload size.")
		return err
	}
	return p.inner.Publish(ctx, msg)
}

func (p *payloadValidatingPublisher) Stop(ctx context.Context) error {
	return p.inner.Stop(ctx)
}
