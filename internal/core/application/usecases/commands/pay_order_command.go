package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/guard"
)

var ErrPayOrderCommandIsNotConstructed = errors.New(
	"PayOrderCommand must be created via NewPayOrderCommand constructor",
)

// PayOrderCommand represents a request to record payment for an order.
type PayOrderCommand struct { //nolint:recvcheck //using for validation
	orderID       kernel.UUID
	correlationID string

	guard guard.ConstructorGuard
}

// NewPayOrderCommand creates a command to mark an order as paid.
func NewPayOrderCommand(orderID kernel.UUID, correlationID string) (PayOrderCommand, error) {
	command := PayOrderCommand{
		correlationID: correlationID,
		guard:         guard.NewConstructorGuard(),
	}

	if err := command.setOrderID(orderID); err != nil {
		return PayOrderCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c PayOrderCommand) Validate() error {
	return c.guard.Validate(ErrPayOrderCommandIsNotConstructed)
}

// OrderID returns the identifier of the order being paid.
func (c PayOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// CorrelationID returns the correlation id of the triggering request.
func (c PayOrderCommand) CorrelationID() string {
	return c.correlationID
}

func (c *PayOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}
