package commands_test

import (
	"testing"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/core/domain/model/order"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestShipOrderCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	aggregate := restoredOrder(t, order.Paid)
	cmd, err := commands.NewShipOrderCommand(aggregate.ID(), "corr-3")
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
	h := commands.NewShipOrderCommandHandler(factory, newTestDispatcher(publisher))
	require.NoError(t, h.Handle(ctx, cmd))

	require.Equal(t, order.Shipped, aggregate.Status())
	require.Len(t, publisher.Published, 1)
	require.Equal(t, event.OrderShipped, publisher.Published[0].EventType)
	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestShipOrderCommandHandler_Handle_UnpaidOrderRejectsShipment(t *testing.T) {
	ctx := t.Context()
	aggregate := restoredOrder(t, order.Created)
	cmd, err := commands.NewShipOrderCommand(aggregate.ID(), "corr-3")
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
	h := commands.NewShipOrderCommandHandler(factory, newTestDispatcher(publisher))
	require.ErrorIs(t, h.Handle(ctx, cmd), order.ErrInvalidStateTransition)
	require.Empty(t, publisher.Published)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}
