package ports

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/event"
)

// OutboxRepository persists event envelopes in the same transaction as the
// aggregate state change, implementing the transactional outbox: a crash
// between commit and publish loses nothing, because the relay re-reads
// unpublished rows and pushes them to the broker later.
type OutboxRepository interface {
	// Add stores the envelopes as unpublished outbox rows. Called inside the
	// same transaction that saves the aggregate.
	Add(ctx context.Context, envelopes []event.Envelope) error

	// MarkPublished marks the rows for the given event ids as published.
	// Called after the broker acknowledged the events.
	MarkPublished(ctx context.Context, eventIDs []string) error

	// GetUnpublished returns up to limit unpublished envelopes created before
	// the cutoff, oldest first. The cutoff keeps the relay from racing the
	// direct publish path on freshly committed rows.
	GetUnpublished(ctx context.Context, before time.Time, limit int) ([]event.Envelope, error)
}
