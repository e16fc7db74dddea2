package http

import "time"

// NewOrder is the request body for placing an order.
type NewOrder struct {
	CustomerID string         `json:"customerId"`
	Lines      []NewOrderLine `json:"lines"`
}

// NewOrderLine is one requested line of a new order.
type NewOrderLine struct {
	ProductID       string `json:"productId"`
	Quantity        int    `json:"quantity"`
	UnitPriceAmount int64  `json:"unitPriceAmount"`
	Currency        string `json:"currency"`
}

// CancelOrder is the optional request body for cancelling an order.
type CancelOrder struct {
	Reason string `json:"reason"`
}

// OrderCreated is the response body returned after placing an order.
type OrderCreated struct {
	ID string `json:"id"`
}

// Order is the full read model of one order.
type Order struct {
	ID          string      `json:"id"`
	CustomerID  string      `json:"customerId"`
	Status      string      `json:"status"`
	Lines       []OrderLine `json:"lines"`
	TotalAmount int64       `json:"totalAmount"`
	Currency    string      `json:"currency"`
	CreatedAt   time.Time   `json:"createdAt"`
	PaidAt      *time.Time  `json:"paidAt,omitempty"`
	ShippedAt   *time.Time  `json:"shippedAt,omitempty"`
	DeliveredAt *time.Time  `json:"deliveredAt,omitempty"`
	CancelledAt *time.Time  `json:"cancelledAt,omitempty"`
	Version     int64       `json:"version"`
}

// OrderLine is one line of an order in query responses.
type OrderLine struct {
	ProductID       string `json:"productId"`
	Quantity        int    `json:"quantity"`
	UnitPriceAmount int64  `json:"unitPriceAmount"`
	Currency        string `json:"currency"`
}

// OrderSummary is the condensed view of an in-flight order.
type OrderSummary struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customerId"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Error is the standard error response body.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
