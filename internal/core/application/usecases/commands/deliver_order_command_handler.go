package commands

import (
	"context"

	"orderflow/internal/core/domain/model/order"
)

// DeliverOrderCommandHandler handles the business logic for delivery confirmation.
type DeliverOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	dispatcher EventDispatcher
}

// NewDeliverOrderCommandHandler creates a handler for delivery confirmation.
func NewDeliverOrderCommandHandler(uowFactory OrderUoWFactory, dispatcher EventDispatcher) DeliverOrderCommandHandler {
	return DeliverOrderCommandHandler{
		uowFactory: uowFactory,
		dispatcher: dispatcher,
	}
}

// Handle processes the delivery command. Only shipped orders can be delivered.
func (h DeliverOrderCommandHandler) Handle(ctx context.Context, cmd DeliverOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	return executeTransition(ctx, h.uowFactory, h.dispatcher, cmd.OrderID(),
		func(aggregate *order.Order) error {
			return aggregate.Deliver(cmd.CorrelationID())
		})
}
