package ports

import (
	"context"

	"orderflow/internal/core/domain/model/event"
)

// EventListener receives events delivered in-process, inside the publishing
// process (e.g. audit logging). Listener failures are logged by the
// publisher and never block the broker channel.
type EventListener func(ctx context.Context, envelope event.Envelope) error

// BrokerProducer publishes envelopes to the durable broker.
// Implementations retry transient transport errors with backoff and return a
// typed error on exhaustion; they never drop an envelope silently.
type BrokerProducer interface {
	// Send publishes the envelope to the topic of its event family, keyed by
	// aggregate id so all events of one order stay strictly ordered within
	// one partition.
	Send(ctx context.Context, envelope event.Envelope) error

	// SendToDeadLetter publishes a failed envelope, augmented with failure
	// diagnostics, to the dead-letter topic.
	SendToDeadLetter(ctx context.Context, dead event.DeadLetterEnvelope) error
}

// ChannelStatus reports the fate of one event on one publishing channel.
type ChannelStatus int

const (
	// ChannelOK means the channel accepted the event.
	ChannelOK ChannelStatus = iota
	// ChannelFailed means the channel rejected the event after exhausting retries.
	ChannelFailed
)

// EventOutcome reports the per-channel fate of a single published event.
type EventOutcome struct {
	EventID   string
	InProcess ChannelStatus
	Broker    ChannelStatus
	// BrokerErr carries the broker channel failure, nil when Broker is ChannelOK.
	BrokerErr error
}

// PublishOutcome aggregates per-event, per-channel results of one publish call.
type PublishOutcome struct {
	Outcomes []EventOutcome
}

// PartialFailure reports whether any event failed the broker channel. The
// caller owns the compensating action for such events; the outbox relay
// re-publishes them.
func (o PublishOutcome) PartialFailure() bool {
	for _, outcome := range o.Outcomes {
		if outcome.Broker == ChannelFailed {
			return true
		}
	}
	return false
}

// BrokerPublished returns the ids of the events the broker acknowledged.
func (o PublishOutcome) BrokerPublished() []string {
	ids := make([]string, 0, len(o.Outcomes))
	for _, outcome := range o.Outcomes {
		if outcome.Broker == ChannelOK {
			ids = append(ids, outcome.EventID)
		}
	}
	return ids
}

// EventPublisher is the dual-channel publisher invoked by the application
// layer strictly after the aggregate's transaction committed, never inside
// the transaction, so no event for a rolled-back state
// change can escape. It must not mutate the order; it operates purely on the
// envelope list it is given.
type EventPublisher interface {
	Publish(ctx context.Context, envelopes []event.Envelope) PublishOutcome
}
