package commands

import (
	"context"
	"log/slog"

	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/core/ports"
)

// EventDispatcher runs the post-commit half of every command: publish the
// committed envelopes through the dual publisher, then mark the broker-acked
// ones as published in the outbox.
//
// A broker-side partial failure is logged, never surfaced to the HTTP caller:
// the persisted state is the truth of the response, and the outbox relay
// re-publishes whatever the broker did not acknowledge. A failed
// MarkPublished is likewise only logged; the relay will re-send the event and
// consumers deduplicate by event id.
type EventDispatcher struct {
	publisher ports.EventPublisher
	outbox    ports.OutboxRepository
	logger    *slog.Logger
}

// NewEventDispatcher creates a dispatcher over the dual publisher and a
// non-transactional outbox repository.
func NewEventDispatcher(publisher ports.EventPublisher, outbox ports.OutboxRepository, logger *slog.Logger) EventDispatcher {
	return EventDispatcher{
		publisher: publisher,
		outbox:    outbox,
		logger:    logger.With("component", "event_dispatcher"),
	}
}

// Dispatch publishes the envelopes of an already-committed transaction.
func (d EventDispatcher) Dispatch(ctx context.Context, envelopes []event.Envelope) {
	if len(envelopes) == 0 {
		return
	}

	outcome := d.publisher.Publish(ctx, envelopes)

	if published := outcome.BrokerPublished(); len(published) > 0 {
		if err := d.outbox.MarkPublished(ctx, published); err != nil {
			d.logger.WarnContext(ctx, "failed to mark outbox rows published",
				"event_count", len(published), "error", err)
		}
	}

	if outcome.PartialFailure() {
		d.logger.WarnContext(ctx, "broker publish partially failed, outbox relay will retry",
			"event_count", len(envelopes))
	}
}
