package messagepipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrNotRegistered is returned when unregistering a handler that is not registered.
	ErrNotRegistered = errors.New("handler is not registered")
	// ErrVisibilityRequired is returned when a registration omits its visibility
	// on a broadcaster that requires it.
	ErrVisibilityRequired = errors.New("registration must declare its visibility")
)

// LocalBroadcasterConfig holds configuration for a LocalBroadcaster.
type LocalBroadcasterConfig struct {
	// RequireVisibility rejects registrations with VisibilityUnspecified.
	RequireVisibility bool
}

type registration struct {
	action     string
	handler    Handler
	visibility Visibility
}

// accepts reports whether the registration should see msg.
func (r registration) accepts(msg Message) bool {
	if r.action != msg.Action {
		return false
	}
	return !msg.Remote || r.visibility != VisibilityNotExported
}

// LocalBroadcaster is a process-local named broadcast. Published messages are
// delivered synchronously, in registration order, on the caller's goroutine.
// Messages flagged Remote only reach exported registrations.
type LocalBroadcaster struct {
	mu                sync.RWMutex
	registrations     []registration
	requireVisibility bool
	logger            zerolog.Logger
}

// NewLocalBroadcaster creates a broadcaster with no registrations.
func NewLocalBroadcaster(cfg LocalBroadcasterConfig, logger zerolog.Logger) *LocalBroadcaster {
	return &LocalBroadcaster{
		requireVisibility: cfg.RequireVisibility,
		logger:            logger.With().Str("component", "LocalBroadcaster").Logger(),
	}
}

// Register adds h under action. Registering the same handler again replaces its
// previous registration.
func (b *LocalBroadcaster) Register(action string, h Handler, visibility Visibility) error {
	if h == nil {
		return fmt.Errorf("handler cannot be nil")
	}
	if action == "" {
		return fmt.Errorf("action cannot be empty")
	}
	if b.requireVisibility && visibility == VisibilityUnspecified {
		return ErrVisibilityRequired
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	reg := registration{action: action, handler: h, visibility: visibility}
	for i, existing := range b.registrations {
		if existing.handler == h {
			b.registrations[i] = reg
			return nil
		}
	}
	b.registrations = append(b.registrations, reg)
	b.logger.Debug().Str("action", action).Int("registrations", len(b.registrations)).Msg("Handler registered.")
	return nil
}

// Unregister removes h.
func (b *LocalBroadcaster) Unregister(h Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, existing := range b.registrations {
		if existing.handler == h {
			b.registrations = append(b.registrations[:i], b.registrations[i+1:]...)
			b.logger.Debug().Str("action", existing.action).Msg("Handler unregistered.")
			return nil
		}
	}
	return ErrNotRegistered
}

// Publish broadcasts msg to local registrations under msg.Action.
func (b *LocalBroadcaster) Publish(ctx context.Context, msg Message) error {
	if msg.Action == "" {
		return fmt.Errorf("message action cannot be empty")
	}
	if msg.PublishTime.IsZero() {
		msg.PublishTime = time.Now()
	}
	msg.Remote = false
	b.Deliver(ctx, msg)
	return nil
}

// OnReceive lets the broadcaster sit behind a BridgeService: bridged messages
// are delivered as they are, keeping their Remote flag.
func (b *LocalBroadcaster) OnReceive(ctx context.Context, msg Message) {
	b.Deliver(ctx, msg)
}

// Deliver hands msg to every matching registration and returns how many
// handlers received it. A panicking handler does not stop the fan-out.
func (b *LocalBroadcaster) Deliver(ctx context.Context, msg Message) int {
	b.mu.RLock()
	targets := make([]Handler, 0, len(b.registrations))
	for _, reg := range b.registrations {
		if reg.accepts(msg) {
			targets = append(targets, reg.handler)
		}
	}
	b.mu.RUnlock()

	if len(targets) == 0 {
		b.logger.Debug().Str("action", msg.Action).Str("msg_id", msg.ID).Msg("No registered handler for broadcast.")
		return 0
	}
	for _, h := range targets {
		b.deliverOne(ctx, h, msg)
	}
	return len(targets)
}

func (b *LocalBroadcaster) deliverOne(ctx context.Context, h Handler, msg Message) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().Interface("panic", r).Str("msg_id", msg.ID).Msg("Handler panicked during delivery.")
		}
	}()
	h.OnReceive(ctx, msg)
}

// Stop is a no-op; the broadcaster holds no resources.
func (b *LocalBroadcaster) Stop(_ context.Context) error {
	return nil
}
