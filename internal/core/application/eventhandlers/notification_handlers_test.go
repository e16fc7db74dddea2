package eventhandlers_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"orderflow/internal/core/application/eventhandlers"
	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	commands []ports.NotificationCommand
	err      error
}

func (s *recordingSender) Send(_ context.Context, command ports.NotificationCommand) error {
	if s.err != nil {
		return s.err
	}
	s.commands = append(s.commands, command)
	return nil
}

func makeEnvelope(t *testing.T, eventType event.Type, payload any) event.Envelope {
	t.Helper()
	envelope, err := event.NewEnvelope(kernel.NewUUID(), eventType, payload, "corr-notify")
	require.NoError(t, err)
	return envelope
}

func TestHandlerRegistry_CoversFullCatalog(t *testing.T) {
	registry := eventhandlers.NewHandlerRegistry(&recordingSender{})
	for _, eventType := range event.Types() {
		assert.Contains(t, registry, eventType)
	}
}

func TestOrderCreatedHandler_SendsConfirmation(t *testing.T) {
	sender := &recordingSender{}
	handler := eventhandlers.NewOrderCreatedHandler(sender)

	customerID := kernel.NewUUID().String()
	envelope := makeEnvelope(t, event.OrderCreated, order.CreatedPayload{
		CustomerID: customerID,
		Lines: []order.LinePayload{
			{ProductID: "SKU-100", Quantity: 2, UnitPriceAmount: 1050},
		},
		TotalAmount: 2100,
		Currency:    "USD",
	})

	require.NoError(t, handler.Handle(t.Context(), envelope))
	require.Len(t, sender.commands, 1)

	command := sender.commands[0]
	assert.Equal(t, ports.NotificationOrderConfirmation, command.Kind)
	assert.Equal(t, customerID, command.CustomerID)
	assert.Equal(t, envelope.AggregateID, command.OrderID)
	assert.Equal(t, "corr-notify", command.CorrelationID)
	assert.Equal(t, "2100", command.Fields["totalAmount"])
	assert.Equal(t, "USD", command.Fields["currency"])
	assert.Equal(t, "1", command.Fields["lineCount"])
}

func TestOrderPaidHandler_SendsReceipt(t *testing.T) {
	sender := &recordingSender{}
	handler := eventhandlers.NewOrderPaidHandler(sender)

	paidAt := time.Now().UTC().Truncate(time.Second)
	envelope := makeEnvelope(t, event.OrderPaid, order.PaidPayload{
		PaidAt: paidAt, TotalAmount: 3150, Currency: "USD",
	})

	require.NoError(t, handler.Handle(t.Context(), envelope))
	require.Len(t, sender.commands, 1)
	assert.Equal(t, ports.NotificationPaymentReceipt, sender.commands[0].Kind)
	assert.Equal(t, paidAt.Format(time.RFC3339), sender.commands[0].Fields["paidAt"])
	assert.Equal(t, "3150", sender.commands[0].Fields["totalAmount"])
}

func TestOrderCancelledHandler_OmitsEmptyReason(t *testing.T) {
	sender := &recordingSender{}
	handler := eventhandlers.NewOrderCancelledHandler(sender)

	envelope := makeEnvelope(t, event.OrderCancelled, order.CancelledPayload{
		CancelledAt: time.Now().UTC(),
	})
	require.NoError(t, handler.Handle(t.Context(), envelope))
	require.Len(t, sender.commands, 1)
	assert.NotContains(t, sender.commands[0].Fields, "reason")

	envelope = makeEnvelope(t, event.OrderCancelled, order.CancelledPayload{
		CancelledAt: time.Now().UTC(), Reason: "customer request",
	})
	require.NoError(t, handler.Handle(t.Context(), envelope))
	require.Len(t, sender.commands, 2)
	assert.Equal(t, "customer request", sender.commands[1].Fields["reason"])
}

func TestHandlers_MalformedPayloadIsFatal(t *testing.T) {
	sender := &recordingSender{}
	registry := eventhandlers.NewHandlerRegistry(sender)

	envelope := makeEnvelope(t, event.OrderPaid, order.PaidPayload{PaidAt: time.Now().UTC()})
	envelope.Payload = []byte(`"not an object"`)

	err := registry[event.OrderPaid].Handle(t.Context(), envelope)
	require.Error(t, err)
	assert.True(t, ports.IsFatal(err))
	assert.Empty(t, sender.commands)
}

func TestHandlers_SenderErrorIsRetryable(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp relay down")}
	handler := eventhandlers.NewOrderShippedHandler(sender)

	envelope := makeEnvelope(t, event.OrderShipped, order.ShippedPayload{
		ShippedAt: time.Now().UTC(),
	})

	err := handler.Handle(t.Context(), envelope)
	require.Error(t, err)
	assert.False(t, ports.IsFatal(err))
}
