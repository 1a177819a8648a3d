package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/sergeybelanov/shop/internal/domain"
	"github.com/sergeybelanov/shop/internal/messaging/kafka"
	"github.com/sergeybelanov/shop/internal/metrics"
	"github.com/sergeybelanov/shop/internal/service/catalog"
	"github.com/sergeybelanov/shop/internal/service/order"
	"github.com/sergeybelanov/shop/internal/storage/memory"
	"github.com/sergeybelanov/shop/internal/storage/postgres"
)

// Dependencies — собранный граф зависимостей приложения.
type Dependencies struct {
	Products    domain.ProductRepository
	Orders      domain.OrderRepository
	Outbox      domain.OutboxRepository
	History     domain.StatusHistoryRepository
	Idempotency domain.IdempotencyRepository

	Catalog   *catalog.Service
	OrderSvc  *order.Service
	Metrics   *metrics.ShopMetrics
	Publisher domain.EventPublisher
	DLQ       domain.EventPublisher

	// Store равен nil при in-memory хранилище.
	Store *postgres.Store

	// Producer равен nil, когда Kafka не настроен.
	Producer *kafka.Producer
}

// Close освобождает внешние ресурсы в обратном порядке инициализации.
func (d *Dependencies) Close(logger *log.Entry) {
	if d.Producer != nil {
		if err := d.Producer.Close(); err != nil {
			logger.WithError(err).Warn("failed to close kafka producer")
		}
	}
	if d.Store != nil {
		if err := d.Store.Close(); err != nil {
			logger.WithError(err).Warn("failed to close postgres store")
		}
	}
}

// buildDependencies поднимает хранилище, брокер и application-сервисы
// согласно конфигурации.
func buildDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	deps := &Dependencies{Metrics: metrics.NewShopMetrics()}

	if cfg.DatabaseURL != "" {
		store, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		deps.Store = store
		deps.Products = postgres.NewProductRepository(store)
		deps.Orders = postgres.NewOrderRepository(store)
		deps.Outbox = postgres.NewOutboxRepository(store)
		deps.History = postgres.NewStatusHistoryRepository(store)
		deps.Idempotency = postgres.NewIdempotencyRepository(store)
		logger.Info("postgres storage initialized")
	} else {
		deps.Products = memory.NewProductRepository()
		deps.Orders = memory.NewOrderRepository()
		deps.Outbox = memory.NewOutboxRepository()
		deps.History = memory.NewStatusHistoryRepository()
		deps.Idempotency = memory.NewIdempotencyRepository()
		logger.Info("in-memory storage initialized")
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			deps.Close(logger)
			return nil, fmt.Errorf("create kafka producer: %w", err)
		}
		deps.Producer = producer
		deps.Publisher = kafka.NewEventPublisher(producer)
		deps.DLQ = kafka.NewTopicPublisher(producer, kafka.TopicDeadLetter)
		logger.WithField("brokers", cfg.KafkaBrokers).Info("kafka producer initialized")
	} else {
		deps.Publisher = newLogPublisher(logger)
		logger.Info("kafka brokers are not configured, events will be logged")
	}

	minOrder, err := minOrderPolicy(cfg)
	if err != nil {
		deps.Close(logger)
		return nil, err
	}
	shipping, err := shippingPolicy(cfg)
	if err != nil {
		deps.Close(logger)
		return nil, err
	}

	deps.Catalog = catalog.NewService(
		deps.Products,
		deps.Outbox,
		logger.WithField("component", "catalog-service"),
		deps.Metrics,
	)
	deps.OrderSvc = order.NewService(
		deps.Orders,
		catalog.NewProductGateway(deps.Products),
		deps.Outbox,
		deps.History,
		minOrder,
		shipping,
		logger.WithField("component", "order-service"),
		deps.Metrics,
	)
	return deps, nil
}

func minOrderPolicy(cfg Config) (*order.MinOrderPolicy, error) {
	if cfg.MinOrderAmount == "" || cfg.MinOrderAmount == "0" {
		return nil, nil
	}
	threshold, err := domain.NewMoneyFromString(cfg.MinOrderAmount, cfg.MinOrderCurrency)
	if err != nil {
		return nil, fmt.Errorf("parse min order amount: %w", err)
	}
	return order.NewMinOrderPolicy(threshold), nil
}

func shippingPolicy(cfg Config) (order.ShippingCalculator, error) {
	base, err := domain.NewMoneyFromString(cfg.ShippingBaseFee, cfg.MinOrderCurrency)
	if err != nil {
		return nil, fmt.Errorf("parse shipping base fee: %w", err)
	}
	perItem, err := domain.NewMoneyFromString(cfg.ShippingPerItemFee, cfg.MinOrderCurrency)
	if err != nil {
		return nil, fmt.Errorf("parse shipping per-item fee: %w", err)
	}
	free, err := domain.NewMoneyFromString(cfg.ShippingFreeThreshold, cfg.MinOrderCurrency)
	if err != nil {
		return nil, fmt.Errorf("parse shipping free threshold: %w", err)
	}
	return order.NewFlatRateShipping(base, perItem, free), nil
}

// logPublisher — замена брокера для локального запуска: публикуемые события
// попадают в лог и помечаются отправленными.
type logPublisher struct {
	logger *log.Entry
}

func newLogPublisher(logger *log.Entry) *logPublisher {
	return &logPublisher{logger: logger.WithField("component", "log-publisher")}
}

func (p *logPublisher) Publish(msg domain.OutboxMessage) error {
	p.logger.WithFields(log.Fields{
		"event_type":   msg.EventType,
		"aggregate_id": msg.AggregateID,
	}).Info("event published")
	return nil
}
