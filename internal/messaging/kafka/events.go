package kafka

// Topics для событий магазина.
const (
	// TopicCatalogEvents — события товаров каталога.
	TopicCatalogEvents = "shop.catalog.events"
	// TopicOrderEvents — события жизненного цикла заказов.
	TopicOrderEvents = "shop.order.events"
	// TopicDeadLetter — сообщения, не доставленные после всех retry.
	TopicDeadLetter = "shop.dlq"
)

// Типы агрегатов в outbox-сообщениях; определяют целевой topic.
const (
	AggregateTypeProduct = "product"
	AggregateTypeOrder   = "order"
)

// TopicFor возвращает topic для типа агрегата. Неизвестные типы уходят
// в topic заказов: терять события хуже, чем смешать их.
func TopicFor(aggregateType string) string {
	switch aggregateType {
	case AggregateTypeProduct:
		return TopicCatalogEvents
	case AggregateTypeOrder:
		return TopicOrderEvents
	default:
		return TopicOrderEvents
	}
}
