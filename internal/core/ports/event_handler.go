package ports

import (
	"context"
	"errors"
	"fmt"

	"orderflow/internal/core/domain/model/event"
)

// ErrFatalHandling marks a handler error that must not be retried: the
// consumer routes the message straight to the dead-letter topic instead of
// relying on broker redelivery. Errors not wrapped with Fatal are retryable.
var ErrFatalHandling = errors.New("fatal handling error")

// Fatal wraps err so the consumer classifies it as non-retryable.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrFatalHandling, err)
}

// IsFatal reports whether err was classified fatal by the handler.
func IsFatal(err error) bool {
	return errors.Is(err, ErrFatalHandling)
}

// EventHandler executes the side effect for one event family. Handlers must
// be safe to invoke with a redelivered message: the consumer deduplicates by
// event id, but the store-then-ack ordering can still let one duplicate
// through after a crash.
type EventHandler interface {
	Handle(ctx context.Context, envelope event.Envelope) error
}

// EventHandlerFunc adapts a function to the EventHandler interface.
type EventHandlerFunc func(ctx context.Context, envelope event.Envelope) error

// Handle invokes the function.
func (f EventHandlerFunc) Handle(ctx context.Context, envelope event.Envelope) error {
	return f(ctx, envelope)
}

// HandlerRegistry maps each event family to its handler. The catalog is
// closed, so the registry built at composition-root time is the single,
// explicit dispatch table for event.Type.
type HandlerRegistry map[event.Type]EventHandler
