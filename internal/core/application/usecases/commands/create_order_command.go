package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/guard"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
	ErrLinesAreRequired = errors.New("at least one order line is required")
)

// LineInput carries the raw values of one requested order line. Full
// validation (positive quantity, valid currency) happens in the domain when
// the line value objects are built.
type LineInput struct {
	ProductID       string
	Quantity        int
	UnitPriceAmount int64
	Currency        string
}

// CreateOrderCommand represents a request to place a new customer order.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(orderID, customerID, lines, correlationID)
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to create order: %w", err)
//	}
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID       kernel.UUID
	customerID    kernel.UUID
	lines         []LineInput
	correlationID string

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand creates a command to place a new order.
// Validates that both ids are valid and at least one line is supplied.
func NewCreateOrderCommand(
	orderID, customerID kernel.UUID,
	lines []LineInput,
	correlationID string,
) (CreateOrderCommand, error) {
	command := CreateOrderCommand{
		correlationID: correlationID,
		guard:         guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setOrderID(orderID),
		command.setCustomerID(customerID),
		command.setLines(lines),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

// OrderID returns the identifier for the new order.
func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// CustomerID returns the identifier of the ordering customer.
func (c CreateOrderCommand) CustomerID() kernel.UUID {
	return c.customerID
}

// Lines returns the requested order lines.
func (c CreateOrderCommand) Lines() []LineInput {
	return append([]LineInput(nil), c.lines...)
}

// CorrelationID returns the correlation id of the triggering request.
func (c CreateOrderCommand) CorrelationID() string {
	return c.correlationID
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setCustomerID(customerID kernel.UUID) error {
	if err := customerID.Validate(); err != nil {
		return err
	}
	c.customerID = customerID
	return nil
}

func (c *CreateOrderCommand) setLines(lines []LineInput) error {
	if len(lines) == 0 {
		return ErrLinesAreRequired
	}
	c.lines = append([]LineInput(nil), lines...)
	return nil
}
