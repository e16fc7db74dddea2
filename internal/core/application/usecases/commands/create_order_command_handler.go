package commands

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// CreateOrderCommandHandler handles the business logic for placing orders.
// Builds the aggregate, persists it together with its OrderCreated outbox
// row in one transaction, and publishes the event after commit.
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	dispatcher EventDispatcher
}

// NewCreateOrderCommandHandler creates a handler for order placement.
func NewCreateOrderCommandHandler(uowFactory OrderUoWFactory, dispatcher EventDispatcher) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		dispatcher: dispatcher,
	}
}

// Handle processes the order placement command.
func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	lines, err := buildLines(cmd.Lines())
	if err != nil {
		return err
	}

	aggregate, err := order.NewOrder(cmd.OrderID(), cmd.CustomerID(), lines, cmd.CorrelationID())
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, aggregate); err != nil {
		return err
	}

	events := aggregate.PendingEvents()
	if err = uow.OutboxRepository().Add(ctx, events); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	aggregate.ClearPendingEvents()
	h.dispatcher.Dispatch(ctx, events)
	return nil
}

func buildLines(inputs []LineInput) ([]order.Line, error) {
	lines := make([]order.Line, 0, len(inputs))
	for _, input := range inputs {
		unitPrice, err := kernel.NewMoney(input.UnitPriceAmount, input.Currency)
		if err != nil {
			return nil, err
		}
		line, err := order.NewLine(input.ProductID, input.Quantity, unitPrice)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}
