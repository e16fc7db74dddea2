// Package kafka implements the idempotent event consumer. One Consumer runs
// one reader loop per lifecycle topic inside a shared consumer group;
// processed event ids live in the idempotency store so a redelivered message
// is skipped instead of re-running its side effect.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/core/ports"

	"github.com/segmentio/kafka-go"
)

// messageReader is the slice of *kafka.Reader the consumer loop needs,
// narrowed so tests can drive the loop with a scripted broker.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// readerFactory builds a reader for one topic. Production wires
// kafka.NewReader; tests substitute fakes.
type readerFactory func(topic string) messageReader

// Config carries the consumer group settings.
type Config struct {
	Brokers []string
	GroupID string
	// HandleTimeout bounds a single handler invocation.
	HandleTimeout time.Duration
	// MaxAttempts is the handling attempt ceiling per event before the
	// message moves to the dead-letter topic.
	MaxAttempts int
}

// Consumer coordinates one reader loop per subscribed topic.
type Consumer struct {
	config    Config
	newReader readerFactory
	store     ports.IdempotencyStore
	producer  ports.BrokerProducer
	handlers  ports.HandlerRegistry
	logger    *slog.Logger

	wg      sync.WaitGroup
	cancel  context.CancelFunc
	started bool
}

// NewConsumer creates a consumer over the given handler registry. Only
// topics with a registered handler are subscribed.
func NewConsumer(
	config Config,
	store ports.IdempotencyStore,
	producer ports.BrokerProducer,
	handlers ports.HandlerRegistry,
	logger *slog.Logger,
) *Consumer {
	consumer := &Consumer{
		config:   config,
		store:    store,
		producer: producer,
		handlers: handlers,
		logger:   logger.With("component", "kafka_consumer"),
	}
	consumer.newReader = func(topic string) messageReader {
		return kafka.NewReader(kafka.ReaderConfig{
			Brokers:     config.Brokers,
			GroupID:     config.GroupID,
			Topic:       topic,
			MinBytes:    1,
			MaxBytes:    10e6,
			StartOffset: kafka.FirstOffset,
			MaxWait:     500 * time.Millisecond,
		})
	}
	return consumer
}

// Start launches one reader goroutine per handled event family. Returns an
// error when no handler covers any topic.
func (c *Consumer) Start(ctx context.Context) error {
	if c.started {
		return errors.New("consumer already started")
	}
	if len(c.handlers) == 0 {
		return errors.New("no event handlers registered")
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.started = true

	for eventType := range c.handlers {
		topic, err := eventType.Topic()
		if err != nil {
			cancel()
			return err
		}

		reader := c.newReader(topic)
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.runLoop(runCtx, topic, reader)
		}()
	}

	return nil
}

// Stop cancels all reader loops and waits for in-flight messages to finish.
func (c *Consumer) Stop() {
	if !c.started {
		return
	}
	c.cancel()
	c.wg.Wait()
	c.started = false
}

func (c *Consumer) runLoop(ctx context.Context, topic string, reader messageReader) {
	defer func() {
		if err := reader.Close(); err != nil {
			c.logger.Warn("failed to close reader", "topic", topic, "error", err)
		}
	}()

	for {
		message, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			c.logger.ErrorContext(ctx, "fetch failed", "topic", topic, "error", err)
			continue
		}

		// Processing errors are retried via broker redelivery: the offset
		// only advances once the message was handled or dead-lettered.
		if c.processMessage(ctx, topic, message) {
			if err = reader.CommitMessages(ctx, message); err != nil {
				c.logger.ErrorContext(ctx, "offset commit failed", "topic", topic, "error", err)
			}
		}
	}
}

// processMessage runs the idempotent handling sequence for one message.
// Returns true when the offset may be committed.
func (c *Consumer) processMessage(ctx context.Context, topic string, message kafka.Message) bool {
	var envelope event.Envelope
	if err := json.Unmarshal(message.Value, &envelope); err != nil {
		// An unparsable message can never succeed; dead-letter it and move
		// on. No event id is known here: the message key carries the
		// aggregate id, so it goes into the failure reason, not the id field.
		c.logger.ErrorContext(ctx, "malformed message", "topic", topic, "error", err)
		dead := event.NewDeadLetterEnvelope(
			event.Envelope{Payload: message.Value},
			fmt.Sprintf("malformed message (key %q): %v", string(message.Key), err), 1,
		)
		return c.sendToDeadLetter(ctx, dead)
	}

	logger := c.logger.With("topic", topic, "event_id", envelope.EventID,
		"event_type", envelope.EventType.String(), "correlation_id", envelope.CorrelationID)

	seen, err := c.store.Seen(ctx, envelope.EventID)
	if err != nil {
		logger.ErrorContext(ctx, "idempotency check failed", "error", err)
		return false
	}
	if seen {
		logger.DebugContext(ctx, "duplicate skipped")
		return true
	}

	handler, ok := c.handlers[envelope.EventType]
	if !ok {
		dead := event.NewDeadLetterEnvelope(envelope,
			fmt.Sprintf("no handler for event type %s", envelope.EventType), 1)
		return c.sendToDeadLetter(ctx, dead)
	}

	if err = c.invokeHandler(ctx, handler, envelope); err != nil {
		return c.handleFailure(ctx, logger, envelope, err)
	}

	// Record before committing the offset. If the record lands and the
	// commit is lost to a crash, the redelivered duplicate is skipped; the
	// reverse order would lose the event on a crash between the two.
	recorded, err := c.store.MarkProcessed(ctx, envelope.EventID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to record processed event", "error", err)
		return false
	}
	if !recorded {
		// Another consumer instance won the check-and-set between our Seen
		// check and now (e.g. during a rebalance): the side effect ran twice.
		logger.WarnContext(ctx, "event was concurrently processed by another consumer")
	}

	if err = c.store.ClearAttempts(ctx, envelope.EventID); err != nil {
		logger.WarnContext(ctx, "failed to clear attempt counter", "error", err)
	}

	return true
}

// invokeHandler runs the handler bounded by the configured timeout. The
// timeout is enforced here, not just passed down: a handler that ignores its
// context still fails the attempt once the deadline passes, and a late nil
// result from the abandoned goroutine is never mistaken for success.
func (c *Consumer) invokeHandler(
	ctx context.Context, handler ports.EventHandler, envelope event.Envelope,
) error {
	handleCtx, cancel := context.WithTimeout(ctx, c.config.HandleTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- handler.Handle(handleCtx, envelope)
	}()

	select {
	case err := <-done:
		return err
	case <-handleCtx.Done():
		return fmt.Errorf("handler timed out after %v: %w",
			c.config.HandleTimeout, handleCtx.Err())
	}
}

func (c *Consumer) handleFailure(
	ctx context.Context, logger *slog.Logger, envelope event.Envelope, handleErr error,
) bool {
	attempts, err := c.store.IncrementAttempts(ctx, envelope.EventID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to count attempt", "error", err)
		return false
	}

	if !ports.IsFatal(handleErr) && attempts < c.config.MaxAttempts {
		logger.WarnContext(ctx, "handling failed, leaving for redelivery",
			"attempt", attempts, "error", handleErr)
		return false
	}

	logger.ErrorContext(ctx, "handling failed terminally, dead-lettering",
		"attempt", attempts, "fatal", ports.IsFatal(handleErr), "error", handleErr)

	dead := event.NewDeadLetterEnvelope(envelope, handleErr.Error(), attempts)
	if !c.sendToDeadLetter(ctx, dead) {
		return false
	}

	// The event is accounted for on the dead-letter topic; mark it processed
	// so a redelivery of the same message is skipped.
	recorded, err := c.store.MarkProcessed(ctx, envelope.EventID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to record dead-lettered event", "error", err)
		return false
	}
	if !recorded {
		logger.WarnContext(ctx, "dead-lettered event was concurrently recorded by another consumer")
	}
	if err = c.store.ClearAttempts(ctx, envelope.EventID); err != nil {
		logger.WarnContext(ctx, "failed to clear attempt counter", "error", err)
	}
	return true
}

func (c *Consumer) sendToDeadLetter(ctx context.Context, dead event.DeadLetterEnvelope) bool {
	if err := c.producer.SendToDeadLetter(ctx, dead); err != nil {
		c.logger.ErrorContext(ctx, "dead-letter publish failed",
			"event_id", dead.EventID, "error", err)
		return false
	}
	return true
}
