package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewShopMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newShopMetricsWithRegisterer(registry)

	if m.ordersCreated == nil || m.ordersSubmitted == nil || m.ordersCancelled == nil {
		t.Fatal("order counters must be initialized")
	}
	if m.productsCreated == nil || m.productStatusChanges == nil {
		t.Fatal("product counters must be initialized")
	}
}

func TestShopMetrics_Counters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newShopMetricsWithRegisterer(registry)

	m.OrderCreated()
	m.OrderCreated()
	m.OrderSubmitted()
	m.OrderTransition("pending", "confirmed")
	m.ProductStatusChanged("active")

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	got := make(map[string]float64)
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			got[family.GetName()+labelSuffix(metric)] = metric.GetCounter().GetValue()
		}
	}

	cases := map[string]float64{
		"shop_orders_created_total":                                    2,
		"shop_orders_submitted_total":                                  1,
		"shop_order_status_transitions_total{from=pending,to=confirmed}": 1,
		"shop_product_status_changes_total{to=active}":                 1,
	}
	for name, want := range cases {
		if got[name] != want {
			t.Fatalf("%s: expected %v, got %v", name, want, got[name])
		}
	}
}

func labelSuffix(metric *dto.Metric) string {
	labels := metric.GetLabel()
	if len(labels) == 0 {
		return ""
	}
	s := "{"
	for i, label := range labels {
		if i > 0 {
			s += ","
		}
		s += label.GetName() + "=" + label.GetValue()
	}
	return s + "}"
}

// Повторная регистрация в одном registerer должна переиспользовать коллекторы.
func TestShopMetrics_AlreadyRegistered(t *testing.T) {
	registry := prometheus.NewRegistry()
	first := newShopMetricsWithRegisterer(registry)
	second := newShopMetricsWithRegisterer(registry)

	first.OrderCreated()
	second.OrderCreated()

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, family := range families {
		if family.GetName() != "shop_orders_created_total" {
			continue
		}
		if v := family.GetMetric()[0].GetCounter().GetValue(); v != 2 {
			t.Fatalf("expected shared counter value 2, got %v", v)
		}
		return
	}
	t.Fatal("shop_orders_created_total not found")
}

// Nil-метрики должны быть безопасны: сервисы могут работать без наблюдаемости.
func TestShopMetrics_NilSafe(t *testing.T) {
	var m *ShopMetrics
	m.OrderCreated()
	m.OrderSubmitted()
	m.OrderCancelled()
	m.OrderTransition("draft", "cancelled")
	m.ProductCreated()
	m.ProductStatusChanged("inactive")
	m.OutboxEventEnqueued()
}
