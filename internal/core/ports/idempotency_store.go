package ports

import "context"

// IdempotencyStore records processed event ids so redelivered messages are
// skipped instead of re-executing side effects. It is the only state shared
// across concurrent consumer instances and must provide atomic check-and-set
// semantics, so two instances handling the same message during a rebalance
// cannot both win. Entries are TTL-bounded.
type IdempotencyStore interface {
	// Seen reports whether the event id was already recorded.
	Seen(ctx context.Context, eventID string) (bool, error)

	// MarkProcessed atomically records the event id. Returns true when this
	// call recorded it first, false when another processor already had.
	MarkProcessed(ctx context.Context, eventID string) (bool, error)

	// IncrementAttempts advances and returns the failed-handling attempt
	// counter for the event id.
	IncrementAttempts(ctx context.Context, eventID string) (int, error)

	// ClearAttempts drops the attempt counter, typically after the message
	// was handled or dead-lettered.
	ClearAttempts(ctx context.Context, eventID string) error
}
