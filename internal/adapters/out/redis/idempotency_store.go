// Package redis implements the consumer idempotency store on Redis.
// SETNX gives the atomic check-and-set the consumer group needs: during a
// rebalance two instances can hold the same message, but only one wins the
// MarkProcessed race.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	processedKeyPrefix = "orderflow:processed:"
	attemptsKeyPrefix  = "orderflow:attempts:"
)

// IdempotencyStore tracks processed event ids and failed-handling attempt
// counters with TTL-bounded keys.
type IdempotencyStore struct {
	client       *redis.Client
	processedTTL time.Duration
	attemptsTTL  time.Duration
}

// NewIdempotencyStore creates a store over the given Redis client.
// processedTTL bounds how long a processed event id is remembered; it must
// comfortably exceed the broker's message retention so a redelivery can
// never outlive its dedup record.
func NewIdempotencyStore(client *redis.Client, processedTTL time.Duration) *IdempotencyStore {
	return &IdempotencyStore{
		client:       client,
		processedTTL: processedTTL,
		attemptsTTL:  24 * time.Hour,
	}
}

// Seen reports whether the event id was already recorded as processed.
func (s *IdempotencyStore) Seen(ctx context.Context, eventID string) (bool, error) {
	count, err := s.client.Exists(ctx, processedKeyPrefix+eventID).Result()
	if err != nil {
		return false, fmt.Errorf("idempotency check for %s: %w", eventID, err)
	}
	return count > 0, nil
}

// MarkProcessed atomically records the event id. Returns true when this call
// recorded it first.
func (s *IdempotencyStore) MarkProcessed(ctx context.Context, eventID string) (bool, error) {
	won, err := s.client.SetNX(ctx, processedKeyPrefix+eventID, 1, s.processedTTL).Result()
	if err != nil {
		return false, fmt.Errorf("mark processed for %s: %w", eventID, err)
	}
	return won, nil
}

// IncrementAttempts advances and returns the failed-handling attempt counter.
func (s *IdempotencyStore) IncrementAttempts(ctx context.Context, eventID string) (int, error) {
	key := attemptsKeyPrefix + eventID
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("increment attempts for %s: %w", eventID, err)
	}
	// Best effort; a missing TTL only delays cleanup.
	s.client.Expire(ctx, key, s.attemptsTTL)
	return int(count), nil
}

// ClearAttempts drops the attempt counter for the event id.
func (s *IdempotencyStore) ClearAttempts(ctx context.Context, eventID string) error {
	if err := s.client.Del(ctx, attemptsKeyPrefix+eventID).Err(); err != nil {
		return fmt.Errorf("clear attempts for %s: %w", eventID, err)
	}
	return nil
}
