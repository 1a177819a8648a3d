package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sergeybelanov/shop/internal/domain"
)

// EventPublisher публикует outbox-сообщения в Kafka, выбирая topic по типу
// агрегата. Ключ партиционирования — aggregate_id: события одного агрегата
// попадают в одну партицию и сохраняют порядок.
type EventPublisher struct {
	producer *Producer
	// topic переопределяет маршрутизацию; пустая строка — маршрут по агрегату.
	topic string
}

// NewEventPublisher создаёт паблишер с маршрутизацией по типу агрегата.
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// NewTopicPublisher создаёт паблишер, пишущий всё в один topic. Используется
// для DLQ.
func NewTopicPublisher(producer *Producer, topic string) *EventPublisher {
	return &EventPublisher{producer: producer, topic: topic}
}

type eventEnvelope struct {
	ID            string          `json:"id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	PublishedAt   time.Time       `json:"published_at"`
}

// Publish отправляет сообщение в Kafka.
func (p *EventPublisher) Publish(msg domain.OutboxMessage) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("kafka event publisher is not initialized")
	}

	key := msg.AggregateID
	if key == "" {
		key = msg.ID
	}

	value, err := json.Marshal(eventEnvelope{
		ID:            msg.ID,
		AggregateType: msg.AggregateType,
		AggregateID:   msg.AggregateID,
		EventType:     msg.EventType,
		Payload:       json.RawMessage(msg.Payload),
		PublishedAt:   time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	topic := p.topic
	if topic == "" {
		topic = TopicFor(msg.AggregateType)
	}
	return p.producer.Send(topic, key, value)
}

var _ domain.EventPublisher = (*EventPublisher)(nil)
