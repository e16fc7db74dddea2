package queries

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetOrderQueryHandler retrieves a single order read model from the database.
// Reads straight off the orders table, bypassing the aggregate: queries never
// mutate and have no use for the domain invariant machinery.
type GetOrderQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderQueryHandler creates a handler for single order queries.
func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

// Handle executes the query. Fails with errs.ErrObjectNotFound when no order
// with the requested id exists.
func (h GetOrderQueryHandler) Handle(
	ctx context.Context,
	query GetOrderQuery,
) (GetOrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderQueryResponse{}, err
	}

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			customer_id,
			status,
			lines,
			created_at,
			paid_at,
			shipped_at,
			delivered_at,
			cancelled_at,
			version
		FROM orders
		WHERE id = ?
	`, query.OrderID().Bytes()).Row()

	response, err := scanOrderRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return GetOrderQueryResponse{}, errs.NewObjectNotFoundError("order", query.OrderID().String())
		}
		return GetOrderQueryResponse{}, err
	}

	return response, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrderRow(row rowScanner) (GetOrderQueryResponse, error) {
	var (
		id, customerID                             uuid.UUID
		status                                     int
		rawLines                                   []byte
		createdAt                                  time.Time
		paidAt, shippedAt, deliveredAt, cancelledAt sql.NullTime
		version                                    int64
	)

	err := row.Scan(
		&id, &customerID, &status, &rawLines,
		&createdAt, &paidAt, &shippedAt, &deliveredAt, &cancelledAt,
		&version,
	)
	if err != nil {
		return GetOrderQueryResponse{}, err
	}

	orderID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return GetOrderQueryResponse{}, err
	}
	custID, err := kernel.UUIDFromBytes(customerID[:])
	if err != nil {
		return GetOrderQueryResponse{}, err
	}

	var lines []OrderLineResponse
	if err = json.Unmarshal(rawLines, &lines); err != nil {
		return GetOrderQueryResponse{}, err
	}

	response := GetOrderQueryResponse{
		ID:          orderID,
		CustomerID:  custID,
		Status:      order.Status(status).String(),
		Lines:       lines,
		CreatedAt:   createdAt,
		PaidAt:      nullableTime(paidAt),
		ShippedAt:   nullableTime(shippedAt),
		DeliveredAt: nullableTime(deliveredAt),
		CancelledAt: nullableTime(cancelledAt),
		Version:     version,
	}

	for _, line := range lines {
		response.TotalAmount += line.UnitPriceAmount * int64(line.Quantity)
		response.Currency = line.Currency
	}

	return response, nil
}

func nullableTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	value := t.Time
	return &value
}
