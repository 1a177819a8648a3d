package domain

import "time"

// ProductSnapshot — данные товара, которые Order-контекст копирует в позицию
// заказа на момент добавления.
type ProductSnapshot struct {
	ProductID            ProductID
	Name                 string
	Price                Money
	AvailableForPurchase bool
}

// ProductPort — порт Order-контекста в Catalog-контекст. Единственная
// межконтекстная зависимость: сервис заказов снимает snapshot имени/цены
// и перепроверяет доступность товара перед submit.
type ProductPort interface {
	// FindProduct возвращает snapshot товара или ErrProductNotFound.
	FindProduct(id ProductID) (ProductSnapshot, error)
	// IsProductAvailable сообщает, доступен ли товар для покупки.
	// "Не найден" и "недоступен" — разные отказы: первый даёт ErrProductNotFound.
	IsProductAvailable(id ProductID) (bool, error)
	// GetProductPrice возвращает текущую цену или ErrProductNotFound.
	GetProductPrice(id ProductID) (Money, error)
}

// OutboxMessage хранит сериализованное доменное событие для публикации.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}

// EventPublisher публикует события из outbox наружу; должен быть идемпотентным,
// доставка at-least-once.
type EventPublisher interface {
	Publish(msg OutboxMessage) error
}

// OutboxRepository сохраняет события для последующей асинхронной публикации.
// Публикация отделена от транзакции, породившей событие: сбой подписчика
// не откатывает сохранение агрегата.
type OutboxRepository interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}

// StatusChange — запись истории статусов заказа.
type StatusChange struct {
	OrderID  OrderID
	From     OrderStatus
	To       OrderStatus
	Reason   string
	Occurred time.Time
}

// StatusHistoryRepository хранит историю переходов заказа.
type StatusHistoryRepository interface {
	Append(change StatusChange) error
	List(orderID OrderID) ([]StatusChange, error)
}

// IdempotencyRepository хранит состояние обработки запросов по idempotency-key.
type IdempotencyRepository interface {
	CreateProcessing(key, requestHash string, ttlAt time.Time) (IdempotencyRecord, error)
	Get(key string) (IdempotencyRecord, error)
	MarkDone(key string, responseBody []byte, httpStatus int) error
	MarkFailed(key string, responseBody []byte, httpStatus int) error
	DeleteExpired(before time.Time, limit int) (int, error)
}
