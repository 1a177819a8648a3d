package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// ShopMetrics содержит счётчики операций над агрегатами каталога и заказов.
type ShopMetrics struct {
	ordersCreated   prometheus.Counter
	ordersSubmitted prometheus.Counter
	ordersCancelled prometheus.Counter
	orderTransitions *prometheus.CounterVec

	productsCreated      prometheus.Counter
	productStatusChanges *prometheus.CounterVec

	outboxEvents prometheus.Counter
}

// NewShopMetrics создаёт метрики, зарегистрированные в default registerer.
func NewShopMetrics() *ShopMetrics {
	return newShopMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newShopMetricsWithRegisterer(registerer prometheus.Registerer) *ShopMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &ShopMetrics{
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shop_orders_created_total",
			Help: "Total number of orders created",
		}),
		ordersSubmitted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shop_orders_submitted_total",
			Help: "Total number of orders submitted",
		}),
		ordersCancelled: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shop_orders_cancelled_total",
			Help: "Total number of orders cancelled",
		}),
		orderTransitions: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "shop_order_status_transitions_total",
			Help: "Total number of order status transitions by source and target",
		}, []string{"from", "to"}),
		productsCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shop_products_created_total",
			Help: "Total number of products created",
		}),
		productStatusChanges: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "shop_product_status_changes_total",
			Help: "Total number of product status changes by target status",
		}, []string{"to"}),
		outboxEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shop_outbox_events_enqueued_total",
			Help: "Total number of domain events enqueued to the outbox",
		}),
	}
}

// OrderCreated увеличивает счётчик созданных заказов.
func (m *ShopMetrics) OrderCreated() {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
}

// OrderSubmitted увеличивает счётчик отправленных заказов.
func (m *ShopMetrics) OrderSubmitted() {
	if m == nil {
		return
	}
	m.ordersSubmitted.Inc()
}

// OrderCancelled увеличивает счётчик отменённых заказов.
func (m *ShopMetrics) OrderCancelled() {
	if m == nil {
		return
	}
	m.ordersCancelled.Inc()
}

// OrderTransition фиксирует переход статуса заказа.
func (m *ShopMetrics) OrderTransition(from, to string) {
	if m == nil {
		return
	}
	m.orderTransitions.WithLabelValues(from, to).Inc()
}

// ProductCreated увеличивает счётчик созданных товаров.
func (m *ShopMetrics) ProductCreated() {
	if m == nil {
		return
	}
	m.productsCreated.Inc()
}

// ProductStatusChanged фиксирует смену статуса товара.
func (m *ShopMetrics) ProductStatusChanged(to string) {
	if m == nil {
		return
	}
	m.productStatusChanges.WithLabelValues(to).Inc()
}

// OutboxEventEnqueued увеличивает счётчик поставленных в outbox событий.
func (m *ShopMetrics) OutboxEventEnqueued() {
	if m == nil {
		return
	}
	m.outboxEvents.Inc()
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}
