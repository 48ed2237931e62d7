package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trogers1052/portfolio-valuation/internal/models"
)

type mockRevaluer struct {
	mu      sync.Mutex
	reasons []string
	err     error
	called  chan struct{}
}

func (m *mockRevaluer) Revalue(_ context.Context, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reasons = append(m.reasons, reason)
	if m.called != nil {
		select {
		case m.called <- struct{}{}:
		default:
		}
	}
	return m.err
}

func (m *mockRevaluer) Reasons() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.reasons...)
}

type mockReader struct {
	cfg  kafka.ReaderConfig
	msgs chan kafka.Message

	mu         sync.Mutex
	closeCalls int
}

func newMockReader(topic string, buffer int) *mockReader {
	return &mockReader{
		cfg:  kafka.ReaderConfig{Topic: topic},
		msgs: make(chan kafka.Message, buffer),
	}
}

func (r *mockReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case msg := <-r.msgs:
		return msg, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *mockReader) Close() error {
	r.mu.Lock()
	r.closeCalls++
	r.mu.Unlock()
	return nil
}

func (r *mockReader) Config() kafka.ReaderConfig {
	return r.cfg
}

func (r *mockReader) CloseCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closeCalls
}

func triggerPayload(t *testing.T, eventType, source string) []byte {
	t.Helper()
	payload, err := json.Marshal(models.TriggerEvent{
		EventType: eventType,
		Source:    source,
		Timestamp: time.Now().Format(time.RFC3339),
	})
	require.NoError(t, err)
	return payload
}

func TestTriggerConsumer_processMessage_ignoresOtherEventTypes(t *testing.T) {
	revaluer := &mockRevaluer{}
	consumer := &TriggerConsumer{revaluer: revaluer, log: zerolog.Nop()}

	err := consumer.processMessage(context.Background(), kafka.Message{Value: triggerPayload(t, "POSITIONS_SNAPSHOT", "robinhood")})
	require.NoError(t, err)
	assert.Empty(t, revaluer.Reasons())
}

func TestTriggerConsumer_processMessage_rejectsMalformedPayload(t *testing.T) {
	revaluer := &mockRevaluer{}
	consumer := &TriggerConsumer{revaluer: revaluer, log: zerolog.Nop()}

	err := consumer.processMessage(context.Background(), kafka.Message{Value: []byte("{not json")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal trigger event")
	assert.Empty(t, revaluer.Reasons())
}

func TestTriggerConsumer_processMessage_propagatesRevaluationError(t *testing.T) {
	revaluer := &mockRevaluer{err: errors.New("run already in progress")}
	consumer := &TriggerConsumer{revaluer: revaluer, log: zerolog.Nop()}

	err := consumer.processMessage(context.Background(), kafka.Message{Value: triggerPayload(t, models.EventWalletUpdated, "")})
	require.Error(t, err)
	assert.Equal(t, []string{"kafka:WALLET_UPDATED"}, revaluer.Reasons())
}

func TestTriggerConsumer_Start_consumesAndTriggers(t *testing.T) {
	revaluer := &mockRevaluer{called: make(chan struct{}, 1)}
	reader := newMockReader("revaluation-triggers", 1)
	consumer := &TriggerConsumer{reader: reader, revaluer: revaluer, log: zerolog.Nop()}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- consumer.Start(ctx)
	}()

	reader.msgs <- kafka.Message{Value: triggerPayload(t, models.EventRevaluationRequested, "dashboard")}

	select {
	case <-revaluer.called:
		// processed
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for trigger to be processed")
	}

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for consumer to shut down")
	}

	assert.Equal(t, []string{"kafka:REVALUATION_REQUESTED:dashboard"}, revaluer.Reasons())
	assert.Equal(t, 1, reader.CloseCalls())
}
