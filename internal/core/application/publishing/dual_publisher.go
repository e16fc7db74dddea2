// Package publishing implements the dual-channel event publisher: every
// envelope collected from the aggregate is fanned out to in-process
// listeners and handed to the durable broker producer. Listeners are wired
// explicitly at composition-root time; there is no ambient registry.
package publishing

import (
	"context"
	"log/slog"
	"sync"

	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/core/ports"
)

// DualPublisher publishes envelopes to the in-process channel and the broker
// channel. It is invoked only after the aggregate's transaction committed and
// never mutates the order.
//
// Events are processed in slice order so the broker observes the aggregate's
// transition order; the two channels of a single event run concurrently, and
// both complete before Publish returns. A listener failure is logged and
// never blocks the broker channel; a broker failure after exhausted retries
// is reflected in the outcome so the caller (and the outbox relay) can
// compensate.
type DualPublisher struct {
	producer  ports.BrokerProducer
	listeners []ports.EventListener
	logger    *slog.Logger
}

// NewDualPublisher creates a publisher over the given broker producer and
// the explicitly registered in-process listeners.
func NewDualPublisher(producer ports.BrokerProducer, listeners []ports.EventListener, logger *slog.Logger) *DualPublisher {
	return &DualPublisher{
		producer:  producer,
		listeners: listeners,
		logger:    logger.With("component", "dual_publisher"),
	}
}

// Publish delivers every envelope to both channels and aggregates the
// per-event, per-channel results.
func (p *DualPublisher) Publish(ctx context.Context, envelopes []event.Envelope) ports.PublishOutcome {
	outcome := ports.PublishOutcome{
		Outcomes: make([]ports.EventOutcome, 0, len(envelopes)),
	}

	for _, envelope := range envelopes {
		outcome.Outcomes = append(outcome.Outcomes, p.publishOne(ctx, envelope))
	}

	return outcome
}

func (p *DualPublisher) publishOne(ctx context.Context, envelope event.Envelope) ports.EventOutcome {
	result := ports.EventOutcome{
		EventID:   envelope.EventID,
		InProcess: ports.ChannelOK,
		Broker:    ports.ChannelOK,
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		if err := p.fanOut(ctx, envelope); err != nil {
			result.InProcess = ports.ChannelFailed
		}
	}()

	go func() {
		defer wg.Done()
		if err := p.producer.Send(ctx, envelope); err != nil {
			p.logger.ErrorContext(ctx, "broker publish failed",
				"event_id", envelope.EventID,
				"event_type", envelope.EventType,
				"aggregate_id", envelope.AggregateID,
				"error", err)
			result.Broker = ports.ChannelFailed
			result.BrokerErr = err
		}
	}()

	wg.Wait()
	return result
}

// fanOut invokes every registered listener; all listeners run even when an
// earlier one fails.
func (p *DualPublisher) fanOut(ctx context.Context, envelope event.Envelope) error {
	var failed error
	for _, listener := range p.listeners {
		if err := listener(ctx, envelope); err != nil {
			p.logger.WarnContext(ctx, "in-process listener failed",
				"event_id", envelope.EventID,
				"event_type", envelope.EventType,
				"error", err)
			failed = err
		}
	}
	return failed
}
