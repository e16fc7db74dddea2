package commands

import (
	"context"

	"orderflow/internal/core/domain/model/order"
)

// CancelOrderCommandHandler handles the business logic for order cancellation.
type CancelOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	dispatcher EventDispatcher
}

// NewCancelOrderCommandHandler creates a handler for order cancellation.
func NewCancelOrderCommandHandler(uowFactory OrderUoWFactory, dispatcher EventDispatcher) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{
		uowFactory: uowFactory,
		dispatcher: dispatcher,
	}
}

// Handle processes the cancellation command. Cancellation is permitted from
// Created and Paid; shipped or delivered orders reject it.
func (h CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	return executeTransition(ctx, h.uowFactory, h.dispatcher, cmd.OrderID(),
		func(aggregate *order.Order) error {
			return aggregate.Cancel(cmd.CorrelationID(), cmd.Reason())
		})
}
