// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// This package implements the repository pattern for the order domain aggregate, handling
// the conversion between domain entities and database representations.
package orderrepo

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
// The version column backs the optimistic concurrency check in Update; lines
// are stored denormalized as a jsonb document since they are only ever read
// and written together with their order.
type OrderDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	CustomerID  uuid.UUID `gorm:"type:uuid;index"`
	Status      int       `gorm:"index"`
	Lines       LineDTOs  `gorm:"type:jsonb"`
	CreatedAt   time.Time
	PaidAt      *time.Time
	ShippedAt   *time.Time
	DeliveredAt *time.Time
	CancelledAt *time.Time
	Version     int64
}

// TableName specifies the database table name for order entities.
// Overrides GORM's default naming convention to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// LineDTO is the jsonb representation of one order line.
type LineDTO struct {
	ProductID       string `json:"productId"`
	Quantity        int    `json:"quantity"`
	UnitPriceAmount int64  `json:"unitPriceAmount"`
	Currency        string `json:"currency"`
}

// LineDTOs serializes the line list to a single jsonb column.
type LineDTOs []LineDTO

// Value implements driver.Valuer for jsonb storage.
func (l LineDTOs) Value() (driver.Value, error) {
	return json.Marshal(l)
}

// Scan implements sql.Scanner for jsonb retrieval.
func (l *LineDTOs) Scan(value any) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("cannot scan %T into LineDTOs", value)
	}
}

// fromDomain converts an order domain aggregate to its database representation.
// The DTO carries the aggregate's current version; the repository decides
// which version to compare against when writing.
func fromDomain(aggregate *order.Order) OrderDTO {
	lines := aggregate.Lines()
	lineDTOs := make(LineDTOs, 0, len(lines))
	for _, line := range lines {
		lineDTOs = append(lineDTOs, LineDTO{
			ProductID:       line.ProductID(),
			Quantity:        line.Quantity(),
			UnitPriceAmount: line.UnitPrice().Amount(),
			Currency:        line.UnitPrice().Currency(),
		})
	}

	return OrderDTO{
		ID:          aggregate.ID().Bytes(),
		CustomerID:  aggregate.CustomerID().Bytes(),
		Status:      int(aggregate.Status()),
		Lines:       lineDTOs,
		CreatedAt:   aggregate.CreatedAt(),
		PaidAt:      aggregate.PaidAt(),
		ShippedAt:   aggregate.ShippedAt(),
		DeliveredAt: aggregate.DeliveredAt(),
		CancelledAt: aggregate.CancelledAt(),
		Version:     aggregate.Version(),
	}
}

// toDomain converts a database DTO to an order domain aggregate.
// Reconstructs the complete aggregate including lifecycle timestamps using RestoreOrder.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	customerID, err := kernel.UUIDFromBytes(dto.CustomerID[:])
	if err != nil {
		return nil, err
	}

	lines := make([]order.Line, 0, len(dto.Lines))
	for _, lineDTO := range dto.Lines {
		unitPrice, priceErr := kernel.NewMoney(lineDTO.UnitPriceAmount, lineDTO.Currency)
		if priceErr != nil {
			return nil, priceErr
		}
		line, lineErr := order.NewLine(lineDTO.ProductID, lineDTO.Quantity, unitPrice)
		if lineErr != nil {
			return nil, lineErr
		}
		lines = append(lines, line)
	}

	return order.RestoreOrder(
		id, customerID, lines,
		order.Status(dto.Status),
		dto.CreatedAt,
		dto.PaidAt, dto.ShippedAt, dto.DeliveredAt, dto.CancelledAt,
		dto.Version,
	)
}
