// Package eventhandlers contains the consumer-side reactions to order
// lifecycle events. Each event family has one handler that turns the
// envelope into a typed notification command; sending, rendering and
// delivery channels are the notification collaborator's concern.
package eventhandlers

import (
	"context"
	"strconv"
	"time"

	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
)

// NewHandlerRegistry builds the full dispatch table over the closed event
// catalog, routing every lifecycle event to its notification handler.
func NewHandlerRegistry(sender ports.NotificationSender) ports.HandlerRegistry {
	return ports.HandlerRegistry{
		event.OrderCreated:   NewOrderCreatedHandler(sender),
		event.OrderPaid:      NewOrderPaidHandler(sender),
		event.OrderShipped:   NewOrderShippedHandler(sender),
		event.OrderDelivered: NewOrderDeliveredHandler(sender),
		event.OrderCancelled: NewOrderCancelledHandler(sender),
	}
}

// OrderCreatedHandler sends the order confirmation.
type OrderCreatedHandler struct {
	sender ports.NotificationSender
}

// NewOrderCreatedHandler creates the OrderCreated reaction.
func NewOrderCreatedHandler(sender ports.NotificationSender) OrderCreatedHandler {
	return OrderCreatedHandler{sender: sender}
}

// Handle decodes the payload and sends the confirmation notification.
// A payload that does not decode can never succeed and is classified fatal.
func (h OrderCreatedHandler) Handle(ctx context.Context, envelope event.Envelope) error {
	var payload order.CreatedPayload
	if err := envelope.DecodePayload(&payload); err != nil {
		return ports.Fatal(err)
	}

	return h.sender.Send(ctx, ports.NotificationCommand{
		Kind:          ports.NotificationOrderConfirmation,
		CustomerID:    payload.CustomerID,
		OrderID:       envelope.AggregateID,
		CorrelationID: envelope.CorrelationID,
		Fields: map[string]string{
			"totalAmount": strconv.FormatInt(payload.TotalAmount, 10),
			"currency":    payload.Currency,
			"lineCount":   strconv.Itoa(len(payload.Lines)),
		},
	})
}

// OrderPaidHandler sends the payment receipt.
type OrderPaidHandler struct {
	sender ports.NotificationSender
}

// NewOrderPaidHandler creates the OrderPaid reaction.
func NewOrderPaidHandler(sender ports.NotificationSender) OrderPaidHandler {
	return OrderPaidHandler{sender: sender}
}

// Handle decodes the payload and sends the payment receipt.
func (h OrderPaidHandler) Handle(ctx context.Context, envelope event.Envelope) error {
	var payload order.PaidPayload
	if err := envelope.DecodePayload(&payload); err != nil {
		return ports.Fatal(err)
	}

	return h.sender.Send(ctx, ports.NotificationCommand{
		Kind:          ports.NotificationPaymentReceipt,
		OrderID:       envelope.AggregateID,
		CorrelationID: envelope.CorrelationID,
		Fields: map[string]string{
			"totalAmount": strconv.FormatInt(payload.TotalAmount, 10),
			"currency":    payload.Currency,
			"paidAt":      payload.PaidAt.Format(time.RFC3339),
		},
	})
}

// OrderShippedHandler sends the shipment notice.
type OrderShippedHandler struct {
	sender ports.NotificationSender
}

// NewOrderShippedHandler creates the OrderShipped reaction.
func NewOrderShippedHandler(sender ports.NotificationSender) OrderShippedHandler {
	return OrderShippedHandler{sender: sender}
}

// Handle decodes the payload and sends the shipment notice.
func (h OrderShippedHandler) Handle(ctx context.Context, envelope event.Envelope) error {
	var payload order.ShippedPayload
	if err := envelope.DecodePayload(&payload); err != nil {
		return ports.Fatal(err)
	}

	return h.sender.Send(ctx, ports.NotificationCommand{
		Kind:          ports.NotificationShipmentNotice,
		OrderID:       envelope.AggregateID,
		CorrelationID: envelope.CorrelationID,
		Fields: map[string]string{
			"shippedAt": payload.ShippedAt.Format(time.RFC3339),
		},
	})
}

// OrderDeliveredHandler sends the delivery notice.
type OrderDeliveredHandler struct {
	sender ports.NotificationSender
}

// NewOrderDeliveredHandler creates the OrderDelivered reaction.
func NewOrderDeliveredHandler(sender ports.NotificationSender) OrderDeliveredHandler {
	return OrderDeliveredHandler{sender: sender}
}

// Handle decodes the payload and sends the delivery notice.
func (h OrderDeliveredHandler) Handle(ctx context.Context, envelope event.Envelope) error {
	var payload order.DeliveredPayload
	if err := envelope.DecodePayload(&payload); err != nil {
		return ports.Fatal(err)
	}

	return h.sender.Send(ctx, ports.NotificationCommand{
		Kind:          ports.NotificationDeliveryNotice,
		OrderID:       envelope.AggregateID,
		CorrelationID: envelope.CorrelationID,
		Fields: map[string]string{
			"deliveredAt": payload.DeliveredAt.Format(time.RFC3339),
		},
	})
}

// OrderCancelledHandler sends the cancellation notice.
type OrderCancelledHandler struct {
	sender ports.NotificationSender
}

// NewOrderCancelledHandler creates the OrderCancelled reaction.
func NewOrderCancelledHandler(sender ports.NotificationSender) OrderCancelledHandler {
	return OrderCancelledHandler{sender: sender}
}

// Handle decodes the payload and sends the cancellation notice.
func (h OrderCancelledHandler) Handle(ctx context.Context, envelope event.Envelope) error {
	var payload order.CancelledPayload
	if err := envelope.DecodePayload(&payload); err != nil {
		return ports.Fatal(err)
	}

	fields := map[string]string{
		"cancelledAt": payload.CancelledAt.Format(time.RFC3339),
	}
	if payload.Reason != "" {
		fields["reason"] = payload.Reason
	}

	return h.sender.Send(ctx, ports.NotificationCommand{
		Kind:          ports.NotificationCancellation,
		OrderID:       envelope.AggregateID,
		CorrelationID: envelope.CorrelationID,
		Fields:        fields,
	})
}
