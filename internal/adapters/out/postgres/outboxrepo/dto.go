// Package outboxrepo persists event envelopes as transactional outbox rows.
// Envelopes are written in the same transaction as the order state change
// they describe, so the broker publication can always be recovered from the
// database after a crash.
package outboxrepo

import (
	"time"

	"orderflow/internal/core/domain/model/event"

	"github.com/google/uuid"
)

// EnvelopeDTO represents one outbox row. PublishedAt is null until the
// broker acknowledged the event; the relay scans for null rows.
type EnvelopeDTO struct {
	EventID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	AggregateID   uuid.UUID `gorm:"type:uuid;index"`
	EventType     string
	OccurredAt    time.Time `gorm:"index"`
	CorrelationID string
	Payload       []byte     `gorm:"type:jsonb"`
	PublishedAt   *time.Time `gorm:"index"`
}

// TableName specifies the database table name for outbox rows.
func (EnvelopeDTO) TableName() string {
	return "outbox_events"
}

func fromDomain(envelope event.Envelope) (EnvelopeDTO, error) {
	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		return EnvelopeDTO{}, err
	}
	aggregateID, err := uuid.Parse(envelope.AggregateID)
	if err != nil {
		return EnvelopeDTO{}, err
	}

	return EnvelopeDTO{
		EventID:       eventID,
		AggregateID:   aggregateID,
		EventType:     string(envelope.EventType),
		OccurredAt:    envelope.OccurredAt,
		CorrelationID: envelope.CorrelationID,
		Payload:       envelope.Payload,
	}, nil
}

func toDomain(dto EnvelopeDTO) event.Envelope {
	return event.Envelope{
		EventID:       dto.EventID.String(),
		AggregateID:   dto.AggregateID.String(),
		EventType:     event.Type(dto.EventType),
		OccurredAt:    dto.OccurredAt,
		CorrelationID: dto.CorrelationID,
		Payload:       append([]byte(nil), dto.Payload...),
	}
}
