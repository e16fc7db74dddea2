package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/guard"
)

var ErrCancelOrderCommandIsNotConstructed = errors.New(
	"CancelOrderCommand must be created via NewCancelOrderCommand constructor",
)

// CancelOrderCommand represents a request to cancel an order before shipment.
type CancelOrderCommand struct { //nolint:recvcheck //using for validation
	orderID       kernel.UUID
	reason        string
	correlationID string

	guard guard.ConstructorGuard
}

// NewCancelOrderCommand creates a command to cancel an order.
// The reason is optional free text carried into the OrderCancelled event.
func NewCancelOrderCommand(orderID kernel.UUID, reason, correlationID string) (CancelOrderCommand, error) {
	command := CancelOrderCommand{
		reason:        reason,
		correlationID: correlationID,
		guard:         guard.NewConstructorGuard(),
	}

	if err := command.setOrderID(orderID); err != nil {
		return CancelOrderCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c CancelOrderCommand) Validate() error {
	return c.guard.Validate(ErrCancelOrderCommandIsNotConstructed)
}

// OrderID returns the identifier of the order being cancelled.
func (c CancelOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Reason returns the stated cancellation reason, possibly empty.
func (c CancelOrderCommand) Reason() string {
	return c.reason
}

// CorrelationID returns the correlation id of the triggering request.
func (c CancelOrderCommand) CorrelationID() string {
	return c.correlationID
}

func (c *CancelOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}
