// Package kafka implements the broker producer over segmentio/kafka-go.
// Each event family has its own topic; messages are keyed by aggregate id so
// every event of one order lands on the same partition and keeps its order.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"orderflow/internal/core/domain/model/event"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the slice of *kafka.Writer the producer needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// SendExhaustedError reports that the broker rejected an envelope after all
// retry attempts. The envelope is still safe in the outbox; the relay will
// try again later.
type SendExhaustedError struct {
	Topic    string
	EventID  string
	Attempts int
	Cause    error
}

func (e *SendExhaustedError) Error() string {
	return fmt.Sprintf("publish to %s exhausted after %d attempts: event %s: %v",
		e.Topic, e.Attempts, e.EventID, e.Cause)
}

func (e *SendExhaustedError) Unwrap() error {
	return e.Cause
}

// Producer publishes event envelopes to Kafka with exponential backoff on
// transient transport errors.
type Producer struct {
	writer      messageWriter
	maxAttempts int
	initialWait time.Duration
	logger      *slog.Logger
}

// Option configures a Producer.
type Option func(*Producer)

// WithMaxAttempts overrides the per-envelope delivery attempt ceiling.
// Values below one are clamped to a single attempt; maxAttempts-1 feeds a
// uint64 retry count, and an underflow there would retry without bound.
func WithMaxAttempts(attempts int) Option {
	return func(p *Producer) {
		if attempts < 1 {
			attempts = 1
		}
		p.maxAttempts = attempts
	}
}

// WithInitialBackoff overrides the first retry delay.
func WithInitialBackoff(wait time.Duration) Option {
	return func(p *Producer) {
		p.initialWait = wait
	}
}

// NewProducer creates a producer connected to the given brokers. The writer
// requires acknowledgement from all in-sync replicas and hashes the message
// key to pick the partition.
func NewProducer(brokers []string, logger *slog.Logger, opts ...Option) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		Balancer:     &kafka.Hash{},
	}
	return newProducer(writer, logger, opts...)
}

func newProducer(writer messageWriter, logger *slog.Logger, opts ...Option) *Producer {
	producer := &Producer{
		writer:      writer,
		maxAttempts: 5,
		initialWait: 100 * time.Millisecond,
		logger:      logger.With("component", "kafka_producer"),
	}
	for _, opt := range opts {
		opt(producer)
	}
	return producer
}

// Send publishes the envelope to the topic of its event family.
func (p *Producer) Send(ctx context.Context, envelope event.Envelope) error {
	topic, err := envelope.Topic()
	if err != nil {
		return err
	}

	return p.write(ctx, topic, envelope.AggregateID, envelope.EventID, envelope)
}

// SendToDeadLetter publishes a failed envelope with its failure diagnostics
// to the dead-letter topic.
func (p *Producer) SendToDeadLetter(ctx context.Context, dead event.DeadLetterEnvelope) error {
	return p.write(ctx, event.DeadLetterTopic, dead.AggregateID, dead.EventID, dead)
}

func (p *Producer) write(ctx context.Context, topic, key, eventID string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
		Time:  time.Now().UTC(),
	}

	attempts := 0
	policy := backoff.WithContext(p.retryPolicy(), ctx)
	err = backoff.Retry(func() error {
		attempts++
		writeErr := p.writer.WriteMessages(ctx, message)
		if writeErr != nil {
			p.logger.WarnContext(ctx, "broker write failed",
				"topic", topic, "event_id", eventID, "attempt", attempts, "error", writeErr)
		}
		return writeErr
	}, policy)
	if err != nil {
		return &SendExhaustedError{
			Topic:    topic,
			EventID:  eventID,
			Attempts: attempts,
			Cause:    err,
		}
	}

	return nil
}

func (p *Producer) retryPolicy() backoff.BackOff {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = p.initialWait
	return backoff.WithMaxRetries(policy, uint64(p.maxAttempts-1)) //nolint:gosec //attempt ceiling is small
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	if closer, ok := p.writer.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
