package eventhandlers

import (
	"context"
	"log/slog"

	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/core/ports"
)

// NewAuditListener returns an in-process listener that writes one structured
// audit line per published event. It runs inside the publishing process on
// the in-process channel of the dual publisher, so the audit trail exists
// even when the broker is down.
func NewAuditListener(logger *slog.Logger) ports.EventListener {
	auditLogger := logger.With("component", "event_audit")
	return func(ctx context.Context, envelope event.Envelope) error {
		auditLogger.InfoContext(ctx, "order event published",
			"event_id", envelope.EventID,
			"event_type", envelope.EventType.String(),
			"aggregate_id", envelope.AggregateID,
			"correlation_id", envelope.CorrelationID,
			"occurred_at", envelope.OccurredAt,
		)
		return nil
	}
}
