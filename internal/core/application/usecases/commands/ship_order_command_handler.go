package commands

import (
	"context"

	"orderflow/internal/core/domain/model/order"
)

// ShipOrderCommandHandler handles the business logic for shipping orders.
type ShipOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	dispatcher EventDispatcher
}

// NewShipOrderCommandHandler creates a handler for order shipment.
func NewShipOrderCommandHandler(uowFactory OrderUoWFactory, dispatcher EventDispatcher) ShipOrderCommandHandler {
	return ShipOrderCommandHandler{
		uowFactory: uowFactory,
		dispatcher: dispatcher,
	}
}

// Handle processes the shipment command. Only paid orders ship.
func (h ShipOrderCommandHandler) Handle(ctx context.Context, cmd ShipOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	return executeTransition(ctx, h.uowFactory, h.dispatcher, cmd.OrderID(),
		func(aggregate *order.Order) error {
			return aggregate.Ship(cmd.CorrelationID())
		})
}
