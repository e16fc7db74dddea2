// Package queries contains read-only operations over the order store.
// Query handlers read the database directly with raw SQL and return flat
// response structs, keeping the read path free of aggregate reconstruction.
package queries

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetIncompleteOrdersQueryHandler retrieves orders that are neither
// delivered nor cancelled, giving operational visibility into the open
// workload.
type GetIncompleteOrdersQueryHandler struct {
	db *gorm.DB
}

// NewGetIncompleteOrdersQueryHandler creates a handler for in-flight order queries.
func NewGetIncompleteOrdersQueryHandler(db *gorm.DB) GetIncompleteOrdersQueryHandler {
	return GetIncompleteOrdersQueryHandler{db: db}
}

// Handle executes the query. Results are sorted by creation time, oldest
// first, for consistent output.
func (h GetIncompleteOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetIncompleteOrdersQuery,
) ([]GetIncompleteOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	orders := make([]GetIncompleteOrdersQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			customer_id,
			status,
			created_at
		FROM orders
		WHERE status NOT IN (?, ?)
		ORDER BY created_at
	`, order.Delivered, order.Cancelled).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, customerID uuid.UUID
			status         int
			createdAt      time.Time
		)

		if err = rows.Scan(&id, &customerID, &status, &createdAt); err != nil {
			return nil, err
		}

		orderID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		custID, idErr := kernel.UUIDFromBytes(customerID[:])
		if idErr != nil {
			return nil, idErr
		}

		orders = append(orders, GetIncompleteOrdersQueryResponse{
			ID:         orderID,
			CustomerID: custID,
			Status:     order.Status(status).String(),
			CreatedAt:  createdAt,
		})
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
