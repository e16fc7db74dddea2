package queries

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/guard"
)

var ErrGetIncompleteOrdersQueryIsNotConstructed = errors.New(
	"GetIncompleteOrdersQuery must be created via NewGetIncompleteOrdersQuery constructor",
)

// GetIncompleteOrdersQuery retrieves all orders still moving through the
// lifecycle, i.e. not yet delivered or cancelled.
type GetIncompleteOrdersQuery struct {
	guard guard.ConstructorGuard
}

// NewGetIncompleteOrdersQuery creates a query to retrieve in-flight orders.
// This is a parameterless query.
func NewGetIncompleteOrdersQuery() GetIncompleteOrdersQuery {
	return GetIncompleteOrdersQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
func (q GetIncompleteOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetIncompleteOrdersQueryIsNotConstructed)
}

// GetIncompleteOrdersQueryResponse summarizes one in-flight order.
type GetIncompleteOrdersQueryResponse struct {
	ID         kernel.UUID
	CustomerID kernel.UUID
	Status     string
	CreatedAt  time.Time
}
