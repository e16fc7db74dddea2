package cmd

import "time"

type Config struct {
	HTTPPort           string
	DBHost             string
	DBPort             string
	DBUser             string
	DBPassword         string
	DBName             string
	DBSslMode          string
	KafkaHost          string
	KafkaConsumerGroup string
	RedisAddr          string

	// ConsumerMaxAttempts is the handling attempt ceiling per event before
	// the message moves to the dead-letter topic.
	ConsumerMaxAttempts int
	// ConsumerHandleTimeout bounds a single event handler invocation.
	ConsumerHandleTimeout time.Duration
	// IdempotencyTTL is how long processed event ids stay deduplicated.
	IdempotencyTTL time.Duration
	// RelayGrace keeps the outbox relay off rows the direct publish path may
	// still be working on.
	RelayGrace time.Duration
	// RelayBatchSize caps the rows one relay sweep picks up.
	RelayBatchSize int
}
