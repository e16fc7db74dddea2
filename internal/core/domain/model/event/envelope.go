package event

import (
	"encoding/json"
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"

	"github.com/google/uuid"
)

// Type identifies a lifecycle event family. The catalog is closed: consumers
// dispatch via an explicit handler map keyed by Type, and Topic covers every
// member, so an unmapped type is a programming error caught by Validate.
type Type string

const (
	OrderCreated   Type = "OrderCreated"
	OrderPaid      Type = "OrderPaid"
	OrderShipped   Type = "OrderShipped"
	OrderDelivered Type = "OrderDelivered"
	OrderCancelled Type = "OrderCancelled"
)

// DeadLetterTopic receives events whose handling repeatedly failed.
const DeadLetterTopic = "order.events.dlq"

// topicsByType maps each event family to its broker topic.
func topicsByType() map[Type]string {
	return map[Type]string{
		OrderCreated:   "order.created",
		OrderPaid:      "order.paid",
		OrderShipped:   "order.shipped",
		OrderDelivered: "order.delivered",
		OrderCancelled: "order.cancelled",
	}
}

// Types returns the full closed catalog of lifecycle event types.
func Types() []Type {
	return []Type{OrderCreated, OrderPaid, OrderShipped, OrderDelivered, OrderCancelled}
}

// Topic returns the broker topic for the event family, e.g. "order.paid" for
// OrderPaid. Returns an error for types outside the catalog.
func (t Type) Topic() (string, error) {
	topic, ok := topicsByType()[t]
	if !ok {
		return "", errs.NewValueIsInvalidErrorWithCause("eventType",
			fmt.Errorf("%q is not a known event type", string(t)))
	}
	return topic, nil
}

// Validate checks that the type belongs to the closed catalog.
func (t Type) Validate() error {
	if _, ok := topicsByType()[t]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("eventType",
			fmt.Errorf("%q is not a known event type", string(t)))
	}
	return nil
}

// String returns the wire name of the event type.
func (t Type) String() string {
	return string(t)
}

// Envelope is the immutable wire record of a single lifecycle transition.
// EventID doubles as the idempotency key for consumers; CorrelationID is
// propagated from the triggering request for tracing. Payload carries only
// event-specific fields, never a full aggregate dump, and its schema per
// event type may only grow additively.
//
// The JSON shape is the contract with external consumers:
//
//	{"eventId": "...", "aggregateId": "...", "eventType": "OrderPaid",
//	 "occurredAt": "2026-01-02T15:04:05Z", "correlationId": "...", "payload": {...}}
type Envelope struct {
	EventID       string          `json:"eventId"`
	AggregateID   string          `json:"aggregateId"`
	EventType     Type            `json:"eventType"`
	OccurredAt    time.Time       `json:"occurredAt"`
	CorrelationID string          `json:"correlationId"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEnvelope creates an envelope for one lifecycle transition of the given
// aggregate. The event id is generated here, exactly once, at the moment the
// mutating domain method runs; the event cannot be re-derived afterwards.
func NewEnvelope(aggregateID kernel.UUID, eventType Type, payload any, correlationID string) (Envelope, error) {
	if err := aggregateID.Validate(); err != nil {
		return Envelope{}, err
	}
	if err := eventType.Validate(); err != nil {
		return Envelope{}, err
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, errs.NewValueIsInvalidErrorWithCause("payload", err)
	}

	return Envelope{
		EventID:       uuid.NewString(),
		AggregateID:   aggregateID.String(),
		EventType:     eventType,
		OccurredAt:    time.Now().UTC(),
		CorrelationID: correlationID,
		Payload:       raw,
	}, nil
}

// Topic returns the broker topic this envelope belongs to.
func (e Envelope) Topic() (string, error) {
	return e.EventType.Topic()
}

// DecodePayload unmarshals the event-specific payload into v.
func (e Envelope) DecodePayload(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("payload", err)
	}
	return nil
}

// Validate checks the envelope fields required by the wire contract.
func (e Envelope) Validate() error {
	if e.EventID == "" {
		return errs.NewValueIsRequiredError("eventId")
	}
	if e.AggregateID == "" {
		return errs.NewValueIsRequiredError("aggregateId")
	}
	if err := e.EventType.Validate(); err != nil {
		return err
	}
	if e.OccurredAt.IsZero() {
		return errs.NewValueIsRequiredError("occurredAt")
	}
	return nil
}

// DeadLetterEnvelope augments an envelope routed to the dead-letter topic
// with the failure diagnostics required for later replay.
type DeadLetterEnvelope struct {
	Envelope
	FailureReason string `json:"failureReason"`
	AttemptCount  int    `json:"attemptCount"`
}

// NewDeadLetterEnvelope wraps a failed envelope with its failure reason and
// the number of handling attempts made before escalation.
func NewDeadLetterEnvelope(envelope Envelope, failureReason string, attemptCount int) DeadLetterEnvelope {
	return DeadLetterEnvelope{
		Envelope:      envelope,
		FailureReason: failureReason,
		AttemptCount:  attemptCount,
	}
}
