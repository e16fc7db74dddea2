package outboxrepo

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/event"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOutboxRepository implements OutboxRepository using GORM.
type GormOutboxRepository struct {
	db *gorm.DB
}

// NewGormOutboxRepository creates a new GORM outbox repository.
func NewGormOutboxRepository(db *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: db}
}

// Add stores the envelopes as unpublished outbox rows.
func (r *GormOutboxRepository) Add(ctx context.Context, envelopes []event.Envelope) error {
	if len(envelopes) == 0 {
		return nil
	}

	dtos := make([]EnvelopeDTO, 0, len(envelopes))
	for _, envelope := range envelopes {
		if err := envelope.Validate(); err != nil {
			return err
		}
		dto, err := fromDomain(envelope)
		if err != nil {
			return err
		}
		dtos = append(dtos, dto)
	}

	return r.db.WithContext(ctx).Create(&dtos).Error
}

// MarkPublished stamps the rows for the given event ids as published.
// Already-published rows keep their original timestamp, so a relay racing
// the direct publish path never rewrites history.
func (r *GormOutboxRepository) MarkPublished(ctx context.Context, eventIDs []string) error {
	if len(eventIDs) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(eventIDs))
	for _, raw := range eventIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&EnvelopeDTO{}).
		Where("event_id IN ? AND published_at IS NULL", ids).
		Update("published_at", now).Error
}

// GetUnpublished returns up to limit unpublished envelopes that occurred
// before the cutoff, oldest first.
func (r *GormOutboxRepository) GetUnpublished(
	ctx context.Context, before time.Time, limit int,
) ([]event.Envelope, error) {
	var dtos []EnvelopeDTO
	err := r.db.WithContext(ctx).
		Where("published_at IS NULL AND occurred_at < ?", before).
		Order("occurred_at").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	envelopes := make([]event.Envelope, 0, len(dtos))
	for _, dto := range dtos {
		envelopes = append(envelopes, toDomain(dto))
	}
	return envelopes, nil
}
