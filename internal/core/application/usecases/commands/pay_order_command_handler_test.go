package commands_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func restoredOrder(t *testing.T, status order.Status) *order.Order {
	t.Helper()

	price, err := kernel.NewMoney(1050, "USD")
	require.NoError(t, err)
	line, err := order.NewLine("SKU-100", 2, price)
	require.NoError(t, err)

	createdAt := time.Now().UTC().Add(-time.Hour)
	var paidAt, shippedAt, deliveredAt, cancelledAt *time.Time
	stamp := func(offset time.Duration) *time.Time {
		ts := createdAt.Add(offset)
		return &ts
	}
	switch status {
	case order.Paid:
		paidAt = stamp(time.Minute)
	case order.Shipped:
		paidAt, shippedAt = stamp(time.Minute), stamp(2*time.Minute)
	case order.Delivered:
		paidAt, shippedAt, deliveredAt = stamp(time.Minute), stamp(2*time.Minute), stamp(3*time.Minute)
	case order.Cancelled:
		cancelledAt = stamp(time.Minute)
	}

	aggregate, err := order.RestoreOrder(
		kernel.NewUUID(), kernel.NewUUID(), []order.Line{line},
		status, createdAt, paidAt, shippedAt, deliveredAt, cancelledAt, 1,
	)
	require.NoError(t, err)
	return aggregate
}

func TestPayOrderCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	aggregate := restoredOrder(t, order.Created)
	cmd, err := commands.NewPayOrderCommand(aggregate.ID(), "corr-2")
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	outbox := new(MockOutboxRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Twice(),
		repo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil).Once(),
		repo.On("Update", mock.Anything, aggregate).Return(nil).Once(),
		uow.On("OutboxRepository").Return(outbox).Once(),
		outbox.On("Add", mock.Anything, mock.AnythingOfType("[]event.Envelope")).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	publisher := new(RecordingPublisher)
	h := commands.NewPayOrderCommandHandler(factory, newTestDispatcher(publisher))
	require.NoError(t, h.Handle(ctx, cmd))

	require.Equal(t, order.Paid, aggregate.Status())
	require.Len(t, publisher.Published, 1)
	require.Equal(t, event.OrderPaid, publisher.Published[0].EventType)
	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestPayOrderCommandHandler_Handle_AlreadyPaidIsNoOp(t *testing.T) {
	ctx := t.Context()
	aggregate := restoredOrder(t, order.Paid)
	cmd, err := commands.NewPayOrderCommand(aggregate.ID(), "corr-2")
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	publisher := new(RecordingPublisher)
	h := commands.NewPayOrderCommandHandler(factory, newTestDispatcher(publisher))
	require.NoError(t, h.Handle(ctx, cmd))

	// No write, no event: the retry observed payment already recorded.
	require.Empty(t, publisher.Published)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestPayOrderCommandHandler_Handle_CancelledOrderRejectsPayment(t *testing.T) {
	ctx := t.Context()
	aggregate := restoredOrder(t, order.Cancelled)
	cmd, err := commands.NewPayOrderCommand(aggregate.ID(), "corr-2")
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	publisher := new(RecordingPublisher)
	h := commands.NewPayOrderCommandHandler(factory, newTestDispatcher(publisher))
	err = h.Handle(ctx, cmd)
	require.ErrorIs(t, err, order.ErrInvalidStateTransition)
	require.Empty(t, publisher.Published)
}

func TestPayOrderCommandHandler_Handle_NotFound(t *testing.T) {
	ctx := t.Context()
	id := kernel.NewUUID()
	cmd, err := commands.NewPayOrderCommand(id, "corr-2")
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Get", mock.Anything, id).Return(nil, errs.NewObjectNotFoundError("orderId", id)).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewPayOrderCommandHandler(factory, newTestDispatcher(new(RecordingPublisher)))
	require.ErrorIs(t, h.Handle(ctx, cmd), errs.ErrObjectNotFound)
}

// casOrderStore is an in-memory repository with the same compare-and-swap
// semantics as the Postgres implementation: Update succeeds only when the
// stored version still matches the version the aggregate was loaded with.
type casOrderStore struct {
	mu      sync.Mutex
	status  order.Status
	version int64
	source  *order.Order
}

func newCasOrderStore(t *testing.T) *casOrderStore {
	t.Helper()
	return &casOrderStore{
		status:  order.Created,
		version: 1,
		source:  restoredOrder(t, order.Created),
	}
}

func (s *casOrderStore) Add(_ context.Context, _ *order.Order) error { return nil }

func (s *casOrderStore) Get(_ context.Context, _ kernel.UUID) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var paidAt *time.Time
	if s.status == order.Paid {
		ts := s.source.CreatedAt().Add(time.Minute)
		paidAt = &ts
	}
	return order.RestoreOrder(
		s.source.ID(), s.source.CustomerID(), s.source.Lines(),
		s.status, s.source.CreatedAt(), paidAt, nil, nil, nil, s.version,
	)
}

func (s *casOrderStore) Update(_ context.Context, aggregate *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.version != aggregate.PersistedVersion() {
		return errs.NewConcurrencyConflictError("orderId", aggregate.ID().String(), aggregate.PersistedVersion())
	}
	s.status = aggregate.Status()
	s.version = aggregate.Version()
	return nil
}

type casUoW struct{ store *casOrderStore }

func (u casUoW) Begin(_ context.Context) error            { return nil }
func (u casUoW) Commit(_ context.Context) error           { return nil }
func (u casUoW) Rollback(_ context.Context) error         { return nil }
func (u casUoW) OrderRepository() ports.OrderRepository   { return u.store }
func (u casUoW) OutboxRepository() ports.OutboxRepository { return StubOutbox{} }

type casUoWFactory struct{ store *casOrderStore }

func (f casUoWFactory) Create() commands.OrderUoW { return casUoW{store: f.store} }

func TestPayOrderCommandHandler_Handle_ConcurrentPaymentsProduceOneEvent(t *testing.T) {
	ctx := t.Context()
	store := newCasOrderStore(t)
	publisher := new(RecordingPublisher)
	h := commands.NewPayOrderCommandHandler(casUoWFactory{store: store}, newTestDispatcher(publisher))

	const racers = 8
	var wg sync.WaitGroup
	errCh := make(chan error, racers)
	for range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cmd, err := commands.NewPayOrderCommand(store.source.ID(), "corr-race")
			if err != nil {
				errCh <- err
				return
			}
			errCh <- h.Handle(ctx, cmd)
		}()
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		require.NoError(t, err)
	}

	// Losers of the version race reload, observe Paid, and no-op: exactly
	// one OrderPaid reaches the publisher.
	require.Len(t, publisher.Published, 1)
	require.Equal(t, event.OrderPaid, publisher.Published[0].EventType)
	require.Equal(t, order.Paid, store.status)
	require.Equal(t, int64(2), store.version)
}
