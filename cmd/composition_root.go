package cmd

import (
	"log/slog"

	adapterhttp "orderflow/internal/adapters/in/http"
	inkafka "orderflow/internal/adapters/in/kafka"
	outkafka "orderflow/internal/adapters/out/kafka"
	"orderflow/internal/adapters/out/notify"
	"orderflow/internal/adapters/out/postgres"
	"orderflow/internal/adapters/out/postgres/outboxrepo"
	redisadapter "orderflow/internal/adapters/out/redis"
	"orderflow/internal/core/application/eventhandlers"
	"orderflow/internal/core/application/publishing"
	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/ports"
	"orderflow/internal/jobs"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	gormDB      *gorm.DB
	uowFactory  *postgres.GormUnitOfWorkFactory
	dispatcher  commands.EventDispatcher
	producer    *outkafka.Producer
	consumer    *inkafka.Consumer
	jobManager  *jobs.JobManager
	redisClient *redis.Client
}

func NewCompositionRoot(configs Config, gormDB *gorm.DB, logger *slog.Logger) CompositionRoot {
	uowFactory := postgres.NewGormUnitOfWorkFactory(gormDB)
	outbox := outboxrepo.NewGormOutboxRepository(gormDB)

	producer := outkafka.NewProducer([]string{configs.KafkaHost}, logger)
	publisher := publishing.NewDualPublisher(
		producer,
		[]ports.EventListener{eventhandlers.NewAuditListener(logger)},
		logger,
	)
	dispatcher := commands.NewEventDispatcher(publisher, outbox, logger)

	redisClient := redis.NewClient(&redis.Options{Addr: configs.RedisAddr})
	store := redisadapter.NewIdempotencyStore(redisClient, configs.IdempotencyTTL)

	registry := eventhandlers.NewHandlerRegistry(notify.NewLogSender(logger))
	consumer := inkafka.NewConsumer(
		inkafka.Config{
			Brokers:       []string{configs.KafkaHost},
			GroupID:       configs.KafkaConsumerGroup,
			HandleTimeout: configs.ConsumerHandleTimeout,
			MaxAttempts:   configs.ConsumerMaxAttempts,
		},
		store, producer, registry, logger,
	)

	relayJob := jobs.NewOutboxRelayJob(
		outbox, producer, configs.RelayGrace, configs.RelayBatchSize, logger,
	)

	return CompositionRoot{
		gormDB:      gormDB,
		uowFactory:  uowFactory,
		dispatcher:  dispatcher,
		producer:    producer,
		consumer:    consumer,
		jobManager:  jobs.NewJobManager(relayJob),
		redisClient: redisClient,
	}
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.orderUoWFactory(), c.dispatcher)
}

func (c *CompositionRoot) CreatePayOrderCommandHandler() commands.PayOrderCommandHandler {
	return commands.NewPayOrderCommandHandler(c.orderUoWFactory(), c.dispatcher)
}

func (c *CompositionRoot) CreateShipOrderCommandHandler() commands.ShipOrderCommandHandler {
	return commands.NewShipOrderCommandHandler(c.orderUoWFactory(), c.dispatcher)
}

func (c *CompositionRoot) CreateDeliverOrderCommandHandler() commands.DeliverOrderCommandHandler {
	return commands.NewDeliverOrderCommandHandler(c.orderUoWFactory(), c.dispatcher)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() commands.CancelOrderCommandHandler {
	return commands.NewCancelOrderCommandHandler(c.orderUoWFactory(), c.dispatcher)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetIncompleteOrdersQueryHandler() queries.GetIncompleteOrdersQueryHandler {
	return queries.NewGetIncompleteOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateHTTPServer() *adapterhttp.Server {
	return adapterhttp.NewServer(
		c.CreateCreateOrderCommandHandler(),
		c.CreatePayOrderCommandHandler(),
		c.CreateShipOrderCommandHandler(),
		c.CreateDeliverOrderCommandHandler(),
		c.CreateCancelOrderCommandHandler(),
		c.CreateGetOrderQueryHandler(),
		c.CreateGetIncompleteOrdersQueryHandler(),
	)
}

func (c *CompositionRoot) Consumer() *inkafka.Consumer {
	return c.consumer
}

func (c *CompositionRoot) JobManager() *jobs.JobManager {
	return c.jobManager
}

// Close releases the broker and cache connections.
func (c *CompositionRoot) Close() error {
	if err := c.producer.Close(); err != nil {
		return err
	}
	return c.redisClient.Close()
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}
