package ports

import "context"

// NotificationKind names the customer notification to render and send.
type NotificationKind string

const (
	NotificationOrderConfirmation NotificationKind = "order_confirmation"
	NotificationPaymentReceipt    NotificationKind = "payment_receipt"
	NotificationShipmentNotice    NotificationKind = "shipment_notice"
	NotificationDeliveryNotice    NotificationKind = "delivery_notice"
	NotificationCancellation      NotificationKind = "cancellation_notice"
)

// NotificationCommand is the typed command handed to the notification
// collaborator. Rendering and actual delivery (email/SMS) happen outside
// this system.
type NotificationCommand struct {
	Kind          NotificationKind
	CustomerID    string
	OrderID       string
	CorrelationID string
	// Fields carries kind-specific values, e.g. the total for a receipt.
	Fields map[string]string
}

// NotificationSender is the black-box collaborator receiving notification
// commands produced by the event handlers.
type NotificationSender interface {
	Send(ctx context.Context, command NotificationCommand) error
}
