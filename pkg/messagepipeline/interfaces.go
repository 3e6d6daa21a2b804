package messagepipeline

import (
	"context"
)

// ====================================================================================
// This file defines the contracts of the lyric channel transport: something that
// handles a broadcast, something that registers handlers under a channel name,
// and the publish and consume ends of a broker.
// ====================================================================================

// Handler receives broadcasts for a channel it registered under. Handlers are
// compared by identity on Unregister, so implementations should be pointers.
type Handler interface {
	OnReceive(ctx context.Context, msg Message)
}

// Visibility states whether a registration accepts broadcasts that originate
// outside this process.
type Visibility int

const (
	// VisibilityUnspecified is the legacy default and behaves as exported.
	VisibilityUnspecified Visibility = iota
	VisibilityExported
	VisibilityNotExported
)

// Registrar manages handler registrations under channel names.
type Registrar interface {
	Register(action string, h Handler, visibility Visibility) error
	Unregister(h Handler) error
}

// --- Publish side ---

// SimplePublisher sends one message at a time. Sends are fire-and-forget: a nil
// error means the transport accepted the message, not that anyone received it.
type SimplePublisher interface {
	Publish(ctx context.Context, msg Message) error
	// Stop flushes any pending messages and accepts a context for timeout control.
	Stop(ctx context.Context) error
}

// --- Consume side ---

// MessageConsumer defines the interface for a broker subscription that feeds
// messages from other processes into this one.
type MessageConsumer interface {
	// Messages returns a read-only channel from which bridge workers receive messages.
	Messages() <-chan Message
	// Start begins the consumption process.
	Start(ctx context.Context) error
	// Stop gracefully ceases message consumption and waits for background tasks to finish.
	Stop(ctx context.Context) error
	// Done returns a channel that is closed when the consumer has completely shut down.
	Done() <-chan struct{}
}
