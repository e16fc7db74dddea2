package publishing_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"orderflow/internal/core/application/publishing"
	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// FakeBrokerProducer records sends and fails for configured event ids.
type FakeBrokerProducer struct {
	mu      sync.Mutex
	sent    []event.Envelope
	failIDs map[string]error
}

func NewFakeBrokerProducer() *FakeBrokerProducer {
	return &FakeBrokerProducer{failIDs: make(map[string]error)}
}

func (f *FakeBrokerProducer) FailEvent(eventID string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failIDs[eventID] = err
}

func (f *FakeBrokerProducer) Send(_ context.Context, envelope event.Envelope) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failIDs[envelope.EventID]; ok {
		return err
	}
	f.sent = append(f.sent, envelope)
	return nil
}

func (f *FakeBrokerProducer) SendToDeadLetter(_ context.Context, _ event.DeadLetterEnvelope) error {
	return nil
}

func (f *FakeBrokerProducer) Sent() []event.Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]event.Envelope(nil), f.sent...)
}

func newEnvelope(t *testing.T, eventType event.Type) event.Envelope {
	t.Helper()
	envelope, err := event.NewEnvelope(kernel.NewUUID(), eventType, struct{}{}, "corr")
	require.NoError(t, err)
	return envelope
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestDualPublisher_Publish_Success(t *testing.T) {
	producer := NewFakeBrokerProducer()

	var mu sync.Mutex
	var heard []string
	listener := func(_ context.Context, envelope event.Envelope) error {
		mu.Lock()
		defer mu.Unlock()
		heard = append(heard, envelope.EventID)
		return nil
	}

	publisher := publishing.NewDualPublisher(producer, []ports.EventListener{listener}, testLogger())

	first := newEnvelope(t, event.OrderCreated)
	second := newEnvelope(t, event.OrderPaid)

	outcome := publisher.Publish(t.Context(), []event.Envelope{first, second})

	assert.False(t, outcome.PartialFailure())
	assert.ElementsMatch(t, []string{first.EventID, second.EventID}, outcome.BrokerPublished())

	sent := producer.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, first.EventID, sent[0].EventID, "broker channel preserves slice order")
	assert.Equal(t, second.EventID, sent[1].EventID)

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{first.EventID, second.EventID}, heard)
}

func TestDualPublisher_Publish_ListenerFailureDoesNotBlockBroker(t *testing.T) {
	producer := NewFakeBrokerProducer()

	failing := func(_ context.Context, _ event.Envelope) error {
		return errors.New("listener exploded")
	}

	var mu sync.Mutex
	var heard int
	second := func(_ context.Context, _ event.Envelope) error {
		mu.Lock()
		defer mu.Unlock()
		heard++
		return nil
	}

	publisher := publishing.NewDualPublisher(producer, []ports.EventListener{failing, second}, testLogger())
	envelope := newEnvelope(t, event.OrderShipped)

	outcome := publisher.Publish(t.Context(), []event.Envelope{envelope})

	require.Len(t, outcome.Outcomes, 1)
	assert.Equal(t, ports.ChannelFailed, outcome.Outcomes[0].InProcess)
	assert.Equal(t, ports.ChannelOK, outcome.Outcomes[0].Broker)
	assert.False(t, outcome.PartialFailure(), "listener failure is not a broker failure")
	assert.Len(t, producer.Sent(), 1)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, heard, "remaining listeners still run")
}

func TestDualPublisher_Publish_BrokerFailureIsPartial(t *testing.T) {
	producer := NewFakeBrokerProducer()
	publisher := publishing.NewDualPublisher(producer, nil, testLogger())

	good := newEnvelope(t, event.OrderCreated)
	bad := newEnvelope(t, event.OrderPaid)
	brokerErr := errors.New("broker unreachable")
	producer.FailEvent(bad.EventID, brokerErr)

	outcome := publisher.Publish(t.Context(), []event.Envelope{good, bad})

	assert.True(t, outcome.PartialFailure())
	assert.Equal(t, []string{good.EventID}, outcome.BrokerPublished())

	require.Len(t, outcome.Outcomes, 2)
	assert.Equal(t, ports.ChannelFailed, outcome.Outcomes[1].Broker)
	require.ErrorIs(t, outcome.Outcomes[1].BrokerErr, brokerErr)
}

func TestDualPublisher_Publish_Empty(t *testing.T) {
	publisher := publishing.NewDualPublisher(NewFakeBrokerProducer(), nil, testLogger())

	outcome := publisher.Publish(t.Context(), nil)

	assert.Empty(t, outcome.Outcomes)
	assert.False(t, outcome.PartialFailure())
}
