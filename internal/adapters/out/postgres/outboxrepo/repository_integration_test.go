package outboxrepo_test

import (
	"context"
	"testing"
	"time"

	"orderflow/internal/adapters/out/postgres/outboxrepo"
	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// OutboxRepositoryIntegrationTestSuite verifies outbox row persistence,
// the unpublished scan and the publish stamping against a real PostgreSQL.
type OutboxRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *outboxrepo.GormOutboxRepository
}

func (suite *OutboxRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&outboxrepo.EnvelopeDTO{}))
}

func (suite *OutboxRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE outbox_events").Error)
	suite.repository = outboxrepo.NewGormOutboxRepository(suite.db)
}

func (suite *OutboxRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *OutboxRepositoryIntegrationTestSuite) makeEnvelope(eventType event.Type) event.Envelope {
	envelope, err := event.NewEnvelope(
		kernel.NewUUID(), eventType, order.ShippedPayload{ShippedAt: time.Now().UTC()}, "corr-test",
	)
	suite.Require().NoError(err)
	return envelope
}

func (suite *OutboxRepositoryIntegrationTestSuite) TestAddAndGetUnpublished_RoundTrip() {
	ctx := context.Background()
	first := suite.makeEnvelope(event.OrderCreated)
	second := suite.makeEnvelope(event.OrderPaid)

	suite.Require().NoError(suite.repository.Add(ctx, []event.Envelope{first, second}))

	cutoff := time.Now().UTC().Add(time.Minute)
	unpublished, err := suite.repository.GetUnpublished(ctx, cutoff, 10)
	suite.Require().NoError(err)
	suite.Require().Len(unpublished, 2)

	// Oldest first.
	suite.Equal(first.EventID, unpublished[0].EventID)
	suite.Equal(first.EventType, unpublished[0].EventType)
	suite.Equal(first.AggregateID, unpublished[0].AggregateID)
	suite.Equal("corr-test", unpublished[0].CorrelationID)
	suite.JSONEq(string(first.Payload), string(unpublished[0].Payload))
}

func (suite *OutboxRepositoryIntegrationTestSuite) TestGetUnpublished_RespectsCutoffAndLimit() {
	ctx := context.Background()
	envelopes := []event.Envelope{
		suite.makeEnvelope(event.OrderCreated),
		suite.makeEnvelope(event.OrderPaid),
		suite.makeEnvelope(event.OrderShipped),
	}
	suite.Require().NoError(suite.repository.Add(ctx, envelopes))

	// A cutoff in the past hides freshly committed rows from the relay.
	past, err := suite.repository.GetUnpublished(ctx, time.Now().UTC().Add(-time.Hour), 10)
	suite.Require().NoError(err)
	suite.Empty(past)

	limited, err := suite.repository.GetUnpublished(ctx, time.Now().UTC().Add(time.Minute), 2)
	suite.Require().NoError(err)
	suite.Len(limited, 2)
}

func (suite *OutboxRepositoryIntegrationTestSuite) TestMarkPublished_RemovesFromScan() {
	ctx := context.Background()
	first := suite.makeEnvelope(event.OrderCreated)
	second := suite.makeEnvelope(event.OrderPaid)
	suite.Require().NoError(suite.repository.Add(ctx, []event.Envelope{first, second}))

	suite.Require().NoError(suite.repository.MarkPublished(ctx, []string{first.EventID}))

	cutoff := time.Now().UTC().Add(time.Minute)
	unpublished, err := suite.repository.GetUnpublished(ctx, cutoff, 10)
	suite.Require().NoError(err)
	suite.Require().Len(unpublished, 1)
	suite.Equal(second.EventID, unpublished[0].EventID)

	// Marking twice is harmless.
	suite.Require().NoError(suite.repository.MarkPublished(ctx, []string{first.EventID}))
}

func (suite *OutboxRepositoryIntegrationTestSuite) TestAdd_EmptyBatchIsNoOp() {
	suite.Require().NoError(suite.repository.Add(context.Background(), nil))
}

func TestOutboxRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(OutboxRepositoryIntegrationTestSuite))
}
