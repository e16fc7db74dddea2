// Package notify contains the notification collaborator adapters. Rendering
// and real delivery (email/SMS) live in a separate system; this package only
// hands the typed commands over.
package notify

import (
	"context"
	"log/slog"

	"orderflow/internal/core/ports"
)

// LogSender records every notification command in the structured log. It
// stands in for the external notification service in environments where one
// is not wired up.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a sender that writes notification commands to the log.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger.With("component", "notification_sender")}
}

// Send logs the notification command. It never fails.
func (s *LogSender) Send(ctx context.Context, command ports.NotificationCommand) error {
	attrs := []any{
		"kind", string(command.Kind),
		"order_id", command.OrderID,
		"correlation_id", command.CorrelationID,
	}
	if command.CustomerID != "" {
		attrs = append(attrs, "customer_id", command.CustomerID)
	}
	for key, value := range command.Fields {
		attrs = append(attrs, "field_"+key, value)
	}

	s.logger.InfoContext(ctx, "notification dispatched", attrs...)
	return nil
}
