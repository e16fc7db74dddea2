package ports

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
// The implementation must serialize concurrent mutations to the same order:
// Update performs an optimistic check against the aggregate's persisted
// version and fails with errs.ErrConcurrencyConflict when a concurrent
// writer got there first, forcing the caller to reload and re-evaluate.
type OrderRepository interface {
	// Add persists a new order aggregate to storage.
	// The order must be valid and not already exist in the repository.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate.
	// Fails with errs.ErrConcurrencyConflict if the stored version no longer
	// matches the version the aggregate was loaded with.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its unique identifier.
	// Fails with errs.ErrObjectNotFound when no such order exists.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)
}
