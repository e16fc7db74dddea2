package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/guard"
)

var ErrDeliverOrderCommandIsNotConstructed = errors.New(
	"DeliverOrderCommand must be created via NewDeliverOrderCommand constructor",
)

// DeliverOrderCommand represents a request to mark a shipped order as delivered.
type DeliverOrderCommand struct { //nolint:recvcheck //using for validation
	orderID       kernel.UUID
	correlationID string

	guard guard.ConstructorGuard
}

// NewDeliverOrderCommand creates a command to mark an order as delivered.
func NewDeliverOrderCommand(orderID kernel.UUID, correlationID string) (DeliverOrderCommand, error) {
	command := DeliverOrderCommand{
		correlationID: correlationID,
		guard:         guard.NewConstructorGuard(),
	}

	if err := command.setOrderID(orderID); err != nil {
		return DeliverOrderCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c DeliverOrderCommand) Validate() error {
	return c.guard.Validate(ErrDeliverOrderCommandIsNotConstructed)
}

// OrderID returns the identifier of the order being delivered.
func (c DeliverOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// CorrelationID returns the correlation id of the triggering request.
func (c DeliverOrderCommand) CorrelationID() string {
	return c.correlationID
}

func (c *DeliverOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}
