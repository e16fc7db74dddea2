package jobs

import (
	"context"
	"log/slog"
	"time"

	"orderflow/internal/core/ports"

	"github.com/robfig/cron/v3"
)

// OutboxRelayJob periodically re-publishes outbox rows the direct publish
// path did not get acknowledged, closing the crash window between commit and
// broker publish. The grace period keeps the relay from racing a direct
// publish that is still in flight for a freshly committed row.
type OutboxRelayJob struct {
	outbox    ports.OutboxRepository
	producer  ports.BrokerProducer
	grace     time.Duration
	batchSize int
	cron      *cron.Cron
	logger    *slog.Logger
}

// NewOutboxRelayJob creates the relay over the non-transactional outbox
// repository and the broker producer.
func NewOutboxRelayJob(
	outbox ports.OutboxRepository,
	producer ports.BrokerProducer,
	grace time.Duration,
	batchSize int,
	logger *slog.Logger,
) *OutboxRelayJob {
	return &OutboxRelayJob{
		outbox:    outbox,
		producer:  producer,
		grace:     grace,
		batchSize: batchSize,
		cron:      cron.New(cron.WithSeconds()),
		logger:    logger.With("component", "outbox_relay_job"),
	}
}

// Start begins the relay sweep, running every ten seconds.
func (j *OutboxRelayJob) Start() error {
	_, err := j.cron.AddFunc("*/10 * * * * *", func() {
		if err := j.RunOnce(context.Background()); err != nil {
			j.logger.Error("Outbox relay sweep failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("Outbox relay job started (running every ten seconds)")
	return nil
}

// Stop stops the relay job.
func (j *OutboxRelayJob) Stop() {
	j.cron.Stop()
	j.logger.Info("Outbox relay job stopped")
}

// RunOnce performs a single sweep: load unpublished rows older than the
// grace cutoff, push them to the broker, and mark the acknowledged ones
// published. A send failure skips the row; consumers deduplicate by event
// id, so re-sending an already published event on the next sweep is safe.
func (j *OutboxRelayJob) RunOnce(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-j.grace)
	envelopes, err := j.outbox.GetUnpublished(ctx, cutoff, j.batchSize)
	if err != nil {
		return err
	}
	if len(envelopes) == 0 {
		return nil
	}

	published := make([]string, 0, len(envelopes))
	for _, envelope := range envelopes {
		if sendErr := j.producer.Send(ctx, envelope); sendErr != nil {
			j.logger.WarnContext(ctx, "relay publish failed",
				"event_id", envelope.EventID, "event_type", envelope.EventType.String(),
				"error", sendErr)
			continue
		}
		published = append(published, envelope.EventID)
	}

	if len(published) == 0 {
		return nil
	}

	if err = j.outbox.MarkPublished(ctx, published); err != nil {
		return err
	}

	j.logger.InfoContext(ctx, "relay re-published events",
		"published", len(published), "scanned", len(envelopes))
	return nil
}
