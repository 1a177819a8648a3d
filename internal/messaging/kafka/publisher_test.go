package kafka

import (
	"encoding/json"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"

	"github.com/sergeybelanov/shop/internal/domain"
)

func newMockedProducer(t *testing.T) (*Producer, *mocks.SyncProducer) {
	t.Helper()
	mock := mocks.NewSyncProducer(t, nil)
	producer := &Producer{
		producer: mock,
		logger:   log.WithField("component", "kafka-test"),
	}
	return producer, mock
}

func TestEventPublisherRoutesByAggregateType(t *testing.T) {
	t.Parallel()

	producer, mock := newMockedProducer(t)
	mock.ExpectSendMessageWithCheckerFunctionAndSucceed(func(value []byte) error {
		var envelope eventEnvelope
		if err := json.Unmarshal(value, &envelope); err != nil {
			return err
		}
		if envelope.EventType != domain.EventOrderSubmitted {
			t.Errorf("envelope event_type = %s, want %s", envelope.EventType, domain.EventOrderSubmitted)
		}
		if string(envelope.Payload) != `{"order_number":"ORD-20260828-CAFEBABE"}` {
			t.Errorf("envelope payload = %s, want original payload", envelope.Payload)
		}
		return nil
	})

	publisher := NewEventPublisher(producer)
	err := publisher.Publish(domain.OutboxMessage{
		ID:            "outbox-1",
		AggregateType: AggregateTypeOrder,
		AggregateID:   "order-123",
		EventType:     domain.EventOrderSubmitted,
		Payload:       []byte(`{"order_number":"ORD-20260828-CAFEBABE"}`),
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if err := mock.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestEventPublisherProducerError(t *testing.T) {
	t.Parallel()

	producer, mock := newMockedProducer(t)
	mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	publisher := NewEventPublisher(producer)
	err := publisher.Publish(domain.OutboxMessage{
		ID:            "outbox-2",
		AggregateType: AggregateTypeProduct,
		AggregateID:   "product-1",
		EventType:     domain.EventProductActivated,
	})
	if err == nil {
		t.Fatal("Publish succeeded, want error")
	}

	if err := mock.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestEventPublisherNilProducer(t *testing.T) {
	t.Parallel()

	publisher := NewEventPublisher(nil)
	if err := publisher.Publish(domain.OutboxMessage{ID: "outbox-3"}); err == nil {
		t.Fatal("Publish with nil producer succeeded, want error")
	}
}

func TestTopicFor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		aggregateType string
		want          string
	}{
		{AggregateTypeProduct, TopicCatalogEvents},
		{AggregateTypeOrder, TopicOrderEvents},
		{"unknown", TopicOrderEvents},
	}
	for _, tc := range cases {
		if got := TopicFor(tc.aggregateType); got != tc.want {
			t.Errorf("TopicFor(%q) = %s, want %s", tc.aggregateType, got, tc.want)
		}
	}
}
