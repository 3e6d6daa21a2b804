package messagepipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// BridgeServiceConfig holds configuration for a BridgeService.
type BridgeServiceConfig struct {
	// NumWorkers above one trades channel order for throughput.
	NumWorkers int
}

// NewBridgeServiceDefaults returns a single-worker config.
func NewBridgeServiceDefaults() BridgeServiceConfig {
	return BridgeServiceConfig{NumWorkers: 1}
}

// BridgeService consumes broadcasts from a broker and hands each one to a
// local handler, usually a LocalBroadcaster, so that receivers registered in
// this process see messages sent from other processes.
type BridgeService struct {
	numWorkers int
	consumer   MessageConsumer
	handler    Handler
	logger     zerolog.Logger
	wg         sync.WaitGroup
}

// NewBridgeService creates a new BridgeService.
func NewBridgeService(
	cfg BridgeServiceConfig,
	consumer MessageConsumer,
	handler Handler,
	logger zerolog.Logger,
) (*BridgeService, error) {
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = 1
	}
	if consumer == nil {
		return nil, fmt.Errorf("consumer cannot be nil")
	}
	if handler == nil {
		return nil, fmt.Errorf("handler cannot be nil")
	}

	return &BridgeService{
		numWorkers: cfg.NumWorkers,
		consumer:   consumer,
		handler:    handler,
		logger:     logger.With().Str("service", "BridgeService").Logger(),
	}, nil
}

// Start starts the consumer and then the delivery workers.
func (s *BridgeService) Start(ctx context.Context) error {
	s.logger.Info().Msg("Starting bridge service...")

	if err := s.consumer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start message consumer: %w", err)
	}

	s.logger.Info().Int("worker_count", s.numWorkers).Msg("Starting delivery workers...")
	s.wg.Add(s.numWorkers)
	for i := 0; i < s.numWorkers; i++ {
		go s.worker(ctx, i)
	}
	return nil
}

// Stop stops the consumer first, then waits for in-flight deliveries.
func (s *BridgeService) Stop(ctx context.Context) error {
	s.logger.Info().Msg("Stopping bridge service...")

	if err := s.consumer.Stop(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Error during consumer stop, continuing shutdown.")
	}

	workerDone := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(workerDone)
	}()

	select {
	case <-workerDone:
		s.logger.Info().Msg("All delivery workers completed gracefully.")
	case <-ctx.Done():
		s.logger.Error().Err(ctx.Err()).Msg("Timeout waiting for delivery workers to finish.")
		return ctx.Err()
	}
	return nil
}

func (s *BridgeService) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			s.logger.Debug().Int("worker_id", workerID).Msg("Delivery worker shutting down due to context cancellation.")
			return
		case msg, ok := <-s.consumer.Messages():
			if !ok {
				s.logger.Debug().Int("worker_id", workerID).Msg("Consumer channel closed, worker exiting.")
				return
			}
			s.deliver(ctx, msg)
		}
	}
}

// deliver hands one message to the handler. Broadcasts carry no delivery
// guarantee, so the message is acked even when the handler panics; redelivery
// would only repeat the failure.
func (s *BridgeService) deliver(ctx context.Context, msg Message) {
	defer ack(msg)
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Str("msg_id", msg.ID).Msg("Handler panicked on bridged message.")
		}
	}()

	if msg.Action == "" {
		s.logger.Warn().Str("msg_id", msg.ID).Msg("Bridged message has no action, dropping.")
		return
	}
	msg.Remote = true
	s.handler.OnReceive(ctx, msg)
}
