package order

import "time"

// Event payload types carried inside EventEnvelope.Payload, one per lifecycle
// event family. Payloads hold event-specific fields only, never a full
// aggregate dump, and may only grow additively to stay backward-compatible
// on the wire.

// LinePayload is the wire shape of a single order line.
type LinePayload struct {
	ProductID       string `json:"productId"`
	Quantity        int    `json:"quantity"`
	UnitPriceAmount int64  `json:"unitPriceAmount"`
}

// CreatedPayload accompanies OrderCreated events.
type CreatedPayload struct {
	CustomerID  string        `json:"customerId"`
	Lines       []LinePayload `json:"lines"`
	TotalAmount int64         `json:"totalAmount"`
	Currency    string        `json:"currency"`
}

// PaidPayload accompanies OrderPaid events.
type PaidPayload struct {
	PaidAt      time.Time `json:"paidAt"`
	TotalAmount int64     `json:"totalAmount"`
	Currency    string    `json:"currency"`
}

// ShippedPayload accompanies OrderShipped events.
type ShippedPayload struct {
	ShippedAt time.Time `json:"shippedAt"`
}

// DeliveredPayload accompanies OrderDelivered events.
type DeliveredPayload struct {
	DeliveredAt time.Time `json:"deliveredAt"`
}

// CancelledPayload accompanies OrderCancelled events.
type CancelledPayload struct {
	CancelledAt time.Time `json:"cancelledAt"`
	Reason      string    `json:"reason,omitempty"`
}
