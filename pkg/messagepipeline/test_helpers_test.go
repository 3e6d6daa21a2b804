package messagepipeline_test

import (
	"context"
	"sync"
	"testing"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/illmade-knight/go-lyricgetter/pkg/messagepipeline"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// newTestPubsubClient starts an in-memory Pub/Sub server and returns a client connected to it.
func newTestPubsubClient(t *testing.T, ctx context.Context, projectID string) *pubsub.Client {
	t.Helper()
	srv := pstest.NewServer()
	t.Cleanup(func() { _ = srv.Close() })

	conn, err := grpc.NewClient(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	client, err := pubsub.NewClient(ctx, projectID, option.WithGRPCConn(conn))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// ====================================================================================
// Mocks for the interfaces defined in this package.
// ====================================================================================

// --- MockMessageConsumer ---

// MockMessageConsumer simulates a broker subscription.
type MockMessageConsumer struct {
	msgChan    chan messagepipeline.Message
	doneChan   chan struct{}
	stopOnce   sync.Once
	startErr   error
	startMu    sync.Mutex
	startCount int
	stopCount  int
}

// NewMockMessageConsumer creates a new mock consumer with a buffered channel.
func NewMockMessageConsumer(bufferSize int) *MockMessageConsumer {
	if bufferSize < 0 {
		bufferSize = 0
	}
	return &MockMessageConsumer{
		msgChan:  make(chan messagepipeline.Message, bufferSize),
		doneChan: make(chan struct{}),
	}
}

func (m *MockMessageConsumer) Messages() <-chan messagepipeline.Message {
	return m.msgChan
}

func (m *MockMessageConsumer) Start(_ context.Context) error {
	m.startMu.Lock()
	defer m.startMu.Unlock()
	m.startCount++
	return m.startErr
}

// Stop closes the message and done channels, Nacking anything left in the buffer.
func (m *MockMessageConsumer) Stop(_ context.Context) error {
	m.stopOnce.Do(func() {
		m.startMu.Lock()
		m.stopCount++
		m.startMu.Unlock()

		close(m.doneChan)
		close(m.msgChan)
		for msg := range m.msgChan {
			log.Warn().Str("msg_id", msg.ID).Msg("MockConsumer draining and Nacking message on shutdown.")
			if msg.Nack != nil {
				msg.Nack()
			}
		}
	})
	return nil
}

func (m *MockMessageConsumer) Done() <-chan struct{} {
	return m.doneChan
}

// Push injects a message into the mock consumer's channel.
func (m *MockMessageConsumer) Push(msg messagepipeline.Message) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Msg("Recovered from panic trying to push to closed consumer channel.")
		}
	}()
	m.msgChan <- msg
}

func (m *MockMessageConsumer) SetStartError(err error) {
	m.startMu.Lock()
	defer m.startMu.Unlock()
	m.startErr = err
}

func (m *MockMessageConsumer) GetStopCount() int {
	m.startMu.Lock()
	defer m.startMu.Unlock()
	return m.stopCount
}

// --- recordingHandler ---

// recordingHandler records every message it receives.
type recordingHandler struct {
	mu       sync.Mutex
	received []messagepipeline.Message
	panicOn  string
}

func (h *recordingHandler) OnReceive(_ context.Context, msg messagepipeline.Message) {
	h.mu.Lock()
	h.received = append(h.received, msg)
	h.mu.Unlock()
	if h.panicOn != "" && string(msg.Data) == h.panicOn {
		panic("handler failure")
	}
}

func (h *recordingHandler) Received() []messagepipeline.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]messagepipeline.Message, len(h.received))
	copy(out, h.received)
	return out
}

func (h *recordingHandler) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.received)
}

// --- messageState ---

// messageState tracks the Ack/Nack status of a single message.
type messageState struct {
	mu         sync.Mutex
	ackCalled  bool
	nackCalled bool
}

func (ms *messageState) Ack() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.ackCalled = true
}

func (ms *messageState) Nack() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.nackCalled = true
}

func (ms *messageState) IsAcked() bool {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.ackCalled
}

func (ms *messageState) IsNacked() bool {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.nackCalled
}
