package commands_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

type MockOutboxRepository struct{ mock.Mock }

func (m *MockOutboxRepository) Add(ctx context.Context, envelopes []event.Envelope) error {
	args := m.Called(ctx, envelopes)
	return args.Error(0)
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, eventIDs []string) error {
	args := m.Called(ctx, eventIDs)
	return args.Error(0)
}

func (m *MockOutboxRepository) GetUnpublished(
	_ context.Context, _ time.Time, _ int,
) ([]event.Envelope, error) {
	return nil, errors.New("not implemented in mock")
}

type MockOrderUoW struct{ mock.Mock }

func (m *MockOrderUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockOrderUoW) OutboxRepository() ports.OutboxRepository {
	args := m.Called()
	return args.Get(0).(ports.OutboxRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

// RecordingPublisher captures published envelopes and acknowledges both
// channels for every event.
type RecordingPublisher struct {
	mu        sync.Mutex
	Published []event.Envelope
}

func (p *RecordingPublisher) Publish(_ context.Context, envelopes []event.Envelope) ports.PublishOutcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Published = append(p.Published, envelopes...)

	outcomes := make([]ports.EventOutcome, 0, len(envelopes))
	for _, envelope := range envelopes {
		outcomes = append(outcomes, ports.EventOutcome{
			EventID:   envelope.EventID,
			InProcess: ports.ChannelOK,
			Broker:    ports.ChannelOK,
		})
	}
	return ports.PublishOutcome{Outcomes: outcomes}
}

// StubOutbox is a no-op outbox for the post-commit dispatcher in tests that
// only care about what was published.
type StubOutbox struct{}

func (StubOutbox) Add(_ context.Context, _ []event.Envelope) error         { return nil }
func (StubOutbox) MarkPublished(_ context.Context, _ []string) error       { return nil }
func (StubOutbox) GetUnpublished(_ context.Context, _ time.Time, _ int) ([]event.Envelope, error) {
	return nil, nil
}

func newTestDispatcher(publisher ports.EventPublisher) commands.EventDispatcher {
	return commands.NewEventDispatcher(publisher, StubOutbox{}, slog.New(slog.DiscardHandler))
}
