package queries

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/guard"
)

var ErrGetOrderQueryIsNotConstructed = errors.New(
	"GetOrderQuery must be created via NewGetOrderQuery constructor",
)

// GetOrderQuery retrieves the full state of a single order.
type GetOrderQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetOrderQuery creates a query for one order by its identifier.
func NewGetOrderQuery(orderID kernel.UUID) (GetOrderQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderQuery{}, err
	}

	return GetOrderQuery{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

// OrderID returns the identifier of the requested order.
func (q GetOrderQuery) OrderID() kernel.UUID {
	return q.orderID
}

// OrderLineResponse represents one line of an order in query results.
type OrderLineResponse struct {
	ProductID       string `json:"productId"`
	Quantity        int    `json:"quantity"`
	UnitPriceAmount int64  `json:"unitPriceAmount"`
	Currency        string `json:"currency"`
}

// GetOrderQueryResponse represents the full read model of one order,
// including the lifecycle timestamps in the order they were reached.
type GetOrderQueryResponse struct {
	ID          kernel.UUID
	CustomerID  kernel.UUID
	Status      string
	Lines       []OrderLineResponse
	TotalAmount int64
	Currency    string
	CreatedAt   time.Time
	PaidAt      *time.Time
	ShippedAt   *time.Time
	DeliveredAt *time.Time
	CancelledAt *time.Time
	Version     int64
}
