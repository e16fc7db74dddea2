package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/guard"
)

var ErrShipOrderCommandIsNotConstructed = errors.New(
	"ShipOrderCommand must be created via NewShipOrderCommand constructor",
)

// ShipOrderCommand represents a request to mark a paid order as shipped.
type ShipOrderCommand struct { //nolint:recvcheck //using for validation
	orderID       kernel.UUID
	correlationID string

	guard guard.ConstructorGuard
}

// NewShipOrderCommand creates a command to mark an order as shipped.
func NewShipOrderCommand(orderID kernel.UUID, correlationID string) (ShipOrderCommand, error) {
	command := ShipOrderCommand{
		correlationID: correlationID,
		guard:         guard.NewConstructorGuard(),
	}

	if err := command.setOrderID(orderID); err != nil {
		return ShipOrderCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c ShipOrderCommand) Validate() error {
	return c.guard.Validate(ErrShipOrderCommandIsNotConstructed)
}

// OrderID returns the identifier of the order being shipped.
func (c ShipOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// CorrelationID returns the correlation id of the triggering request.
func (c ShipOrderCommand) CorrelationID() string {
	return c.correlationID
}

func (c *ShipOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}
