package commands

import (
	"context"

	"orderflow/internal/core/domain/model/order"
)

// PayOrderCommandHandler handles the business logic for recording payments.
type PayOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	dispatcher EventDispatcher
}

// NewPayOrderCommandHandler creates a handler for payment recording.
func NewPayOrderCommandHandler(uowFactory OrderUoWFactory, dispatcher EventDispatcher) PayOrderCommandHandler {
	return PayOrderCommandHandler{
		uowFactory: uowFactory,
		dispatcher: dispatcher,
	}
}

// Handle processes the payment command. Retrying a payment against an
// already-paid order is a successful no-op; only a cancelled order rejects it.
func (h PayOrderCommandHandler) Handle(ctx context.Context, cmd PayOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	return executeTransition(ctx, h.uowFactory, h.dispatcher, cmd.OrderID(),
		func(aggregate *order.Order) error {
			return aggregate.Pay(cmd.CorrelationID())
		})
}
