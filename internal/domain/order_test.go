package domain_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/sergeybelanov/shop/internal/domain"
)

func testAddress(t *testing.T) domain.Address {
	t.Helper()
	addr, err := domain.NewAddress("1 Main St", "Springfield", "IL", "62701", "USA")
	if err != nil {
		t.Fatalf("new address: %v", err)
	}
	return addr
}

func makeItem(t *testing.T, productID, name, price string, qty int) domain.OrderItem {
	t.Helper()
	quantity, err := domain.NewQuantity(qty)
	if err != nil {
		t.Fatalf("new quantity: %v", err)
	}
	item, err := domain.NewOrderItem(domain.ProductID(productID), name, mustMoney(t, price, "USD"), quantity)
	if err != nil {
		t.Fatalf("new order item: %v", err)
	}
	return item
}

func makeDraftOrder(t *testing.T, items ...domain.OrderItem) *domain.Order {
	t.Helper()
	order, err := domain.NewOrder("customer-1", testAddress(t), items)
	if err != nil {
		t.Fatalf("new order: %v", err)
	}
	order.PullEvents() // сбрасываем OrderCreated, тесты смотрят на последующие события
	return order
}

func TestNewOrder_Validation(t *testing.T) {
	if _, err := domain.NewOrder("", testAddress(t), nil); !errors.Is(err, domain.ErrCustomerRequired) {
		t.Fatalf("expected ErrCustomerRequired, got %v", err)
	}
	if _, err := domain.NewOrder("customer-1", domain.Address{}, nil); !errors.Is(err, domain.ErrShippingAddressRequired) {
		t.Fatalf("expected ErrShippingAddressRequired, got %v", err)
	}

	dup := makeItem(t, "p1", "Widget", "10.00", 1)
	if _, err := domain.NewOrder("customer-1", testAddress(t), []domain.OrderItem{dup, dup}); !errors.Is(err, domain.ErrDuplicateItem) {
		t.Fatalf("expected ErrDuplicateItem, got %v", err)
	}

	// Пустой список позиций допустим на создании.
	order, err := domain.NewOrder("customer-1", testAddress(t), nil)
	if err != nil {
		t.Fatalf("new empty order: %v", err)
	}
	if order.Status != domain.OrderStatusDraft {
		t.Fatalf("expected draft, got %s", order.Status)
	}
	events := order.PullEvents()
	if len(events) != 1 || events[0].EventName() != domain.EventOrderCreated {
		t.Fatalf("expected single OrderCreated event, got %v", events)
	}
}

func TestOrder_AddItem(t *testing.T) {
	order := makeDraftOrder(t, makeItem(t, "p1", "Widget", "10.00", 2))

	if err := order.AddItem(makeItem(t, "p2", "Gadget", "5.00", 1)); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(order.Items))
	}

	// Повторный product_id запрещён, состав заказа не меняется.
	err := order.AddItem(makeItem(t, "p1", "Widget", "10.00", 1))
	if !errors.Is(err, domain.ErrDuplicateItem) {
		t.Fatalf("expected ErrDuplicateItem, got %v", err)
	}
	if len(order.Items) != 2 {
		t.Fatalf("item count must be unchanged after failed add, got %d", len(order.Items))
	}

	events := order.PullEvents()
	if len(events) != 1 || events[0].EventName() != domain.EventOrderItemAdded {
		t.Fatalf("expected single OrderItemAdded event, got %v", events)
	}
}

func TestOrder_RemoveItem(t *testing.T) {
	order := makeDraftOrder(t,
		makeItem(t, "p1", "Widget", "10.00", 2),
		makeItem(t, "p2", "Gadget", "5.00", 1),
	)

	if err := order.RemoveItem("p1"); err != nil {
		t.Fatalf("remove item: %v", err)
	}
	if len(order.Items) != 1 || order.Items[0].ProductID != "p2" {
		t.Fatalf("unexpected items after remove: %+v", order.Items)
	}

	if err := order.RemoveItem("p1"); !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}

	events := order.PullEvents()
	if len(events) != 1 {
		t.Fatalf("expected single event, got %d", len(events))
	}
	removed, ok := events[0].(domain.OrderItemRemoved)
	if !ok {
		t.Fatalf("expected OrderItemRemoved, got %T", events[0])
	}
	if removed.QuantityRemoved != 2 || !removed.AmountRemoved.Equals(mustMoney(t, "20.00", "USD")) {
		t.Fatalf("unexpected removal payload: %+v", removed)
	}
}

func TestOrder_UpdateItemQuantity(t *testing.T) {
	order := makeDraftOrder(t, makeItem(t, "p1", "Widget", "10.00", 2))

	five, _ := domain.NewQuantity(5)
	if err := order.UpdateItemQuantity("p1", five); err != nil {
		t.Fatalf("update quantity: %v", err)
	}
	if order.Items[0].Quantity.Value() != 5 {
		t.Fatalf("expected quantity 5, got %d", order.Items[0].Quantity.Value())
	}

	zero, _ := domain.NewQuantity(0)
	if err := order.UpdateItemQuantity("p1", zero); !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if err := order.UpdateItemQuantity("missing", five); !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}

	events := order.PullEvents()
	if len(events) != 1 {
		t.Fatalf("expected single event, got %d", len(events))
	}
	changed, ok := events[0].(domain.OrderItemQuantityChanged)
	if !ok {
		t.Fatalf("expected OrderItemQuantityChanged, got %T", events[0])
	}
	if changed.OldQuantity != 2 || changed.NewQuantity != 5 {
		t.Fatalf("unexpected quantity change payload: %+v", changed)
	}
}

func TestOrder_TotalAmount(t *testing.T) {
	order := makeDraftOrder(t,
		makeItem(t, "p1", "Widget", "10.00", 2),
		makeItem(t, "p2", "Gadget", "5.00", 1),
	)

	total, err := order.TotalAmount()
	if err != nil {
		t.Fatalf("total amount: %v", err)
	}
	if !total.Equals(mustMoney(t, "25.00", "USD")) {
		t.Fatalf("expected 25.00 USD, got %s", total)
	}
}

func TestOrder_TotalAmount_CurrencyMismatch(t *testing.T) {
	eurQty, _ := domain.NewQuantity(1)
	eurItem, err := domain.NewOrderItem("p2", "Gadget", mustMoney(t, "5.00", "EUR"), eurQty)
	if err != nil {
		t.Fatalf("new eur item: %v", err)
	}

	order := makeDraftOrder(t, makeItem(t, "p1", "Widget", "10.00", 1))
	if err := order.AddItem(eurItem); err != nil {
		t.Fatalf("add eur item: %v", err)
	}

	if _, err := order.TotalAmount(); !errors.Is(err, domain.ErrCurrencyMismatch) {
		t.Fatalf("expected ErrCurrencyMismatch, got %v", err)
	}
}

func TestOrder_Submit(t *testing.T) {
	order := makeDraftOrder(t, makeItem(t, "p1", "Widget", "10.00", 2))

	if err := order.Submit(); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if order.Status != domain.OrderStatusPending {
		t.Fatalf("expected pending, got %s", order.Status)
	}
	if order.OrderNumber == "" || !strings.HasPrefix(order.OrderNumber, "ORD-") {
		t.Fatalf("unexpected order number %q", order.OrderNumber)
	}

	events := order.PullEvents()
	if len(events) != 1 {
		t.Fatalf("expected single event, got %d", len(events))
	}
	submitted, ok := events[0].(domain.OrderSubmitted)
	if !ok {
		t.Fatalf("expected OrderSubmitted, got %T", events[0])
	}
	if submitted.OrderNumber != order.OrderNumber || submitted.ItemCount != 1 {
		t.Fatalf("unexpected submit payload: %+v", submitted)
	}
	if !submitted.TotalAmount.Equals(mustMoney(t, "20.00", "USD")) {
		t.Fatalf("expected total 20.00 USD, got %s", submitted.TotalAmount)
	}
}

func TestOrder_SubmitEmptyFails(t *testing.T) {
	order := makeDraftOrder(t)
	if err := order.Submit(); !errors.Is(err, domain.ErrEmptyOrder) {
		t.Fatalf("expected ErrEmptyOrder, got %v", err)
	}
	if order.Status != domain.OrderStatusDraft || order.OrderNumber != "" {
		t.Fatal("failed submit must leave order untouched")
	}
}

// После отправки любая мутация состава и данных клиента запрещена.
func TestOrder_NotModifiableAfterSubmit(t *testing.T) {
	order := makeDraftOrder(t, makeItem(t, "p1", "Widget", "10.00", 2))
	if err := order.Submit(); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := order.AddItem(makeItem(t, "p2", "Gadget", "5.00", 1)); !errors.Is(err, domain.ErrOrderNotModifiable) {
		t.Fatalf("add: expected ErrOrderNotModifiable, got %v", err)
	}
	if err := order.RemoveItem("p1"); !errors.Is(err, domain.ErrOrderNotModifiable) {
		t.Fatalf("remove: expected ErrOrderNotModifiable, got %v", err)
	}
	five, _ := domain.NewQuantity(5)
	if err := order.UpdateItemQuantity("p1", five); !errors.Is(err, domain.ErrOrderNotModifiable) {
		t.Fatalf("update quantity: expected ErrOrderNotModifiable, got %v", err)
	}

	info, _ := domain.NewCustomerInfo("John Doe", "john@example.com", "")
	if err := order.SetCustomerInfo(info); !errors.Is(err, domain.ErrCustomerInfoNotModifiable) {
		t.Fatalf("set customer info: expected ErrCustomerInfoNotModifiable, got %v", err)
	}

	if err := order.Submit(); !errors.Is(err, domain.ErrInvalidStatusTransition) {
		t.Fatalf("second submit: expected ErrInvalidStatusTransition, got %v", err)
	}
}

func TestOrder_SetCustomerInfo(t *testing.T) {
	order := makeDraftOrder(t, makeItem(t, "p1", "Widget", "10.00", 1))

	info, err := domain.NewCustomerInfo("John Doe", "john@example.com", "+15550100")
	if err != nil {
		t.Fatalf("new customer info: %v", err)
	}
	if err := order.SetCustomerInfo(info); err != nil {
		t.Fatalf("set customer info: %v", err)
	}
	if order.CustomerInfo == nil || order.CustomerInfo.Email != "john@example.com" {
		t.Fatalf("unexpected customer info: %+v", order.CustomerInfo)
	}
}

func TestOrder_LifecycleTransitions(t *testing.T) {
	order := makeDraftOrder(t, makeItem(t, "p1", "Widget", "10.00", 1))

	steps := []struct {
		name string
		op   func() error
		want domain.OrderStatus
	}{
		{"submit", order.Submit, domain.OrderStatusPending},
		{"confirm", order.Confirm, domain.OrderStatusConfirmed},
		{"start processing", order.StartProcessing, domain.OrderStatusProcessing},
		{"ship", order.Ship, domain.OrderStatusShipped},
		{"deliver", order.Deliver, domain.OrderStatusDelivered},
	}
	for _, step := range steps {
		if err := step.op(); err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}
		if order.Status != step.want {
			t.Fatalf("%s: expected %s, got %s", step.name, step.want, order.Status)
		}
	}

	// Из терминального статуса пути нет.
	if err := order.Cancel("too late"); !errors.Is(err, domain.ErrInvalidStatusTransition) {
		t.Fatalf("cancel delivered: expected ErrInvalidStatusTransition, got %v", err)
	}
}

func TestOrder_CancelMatrix(t *testing.T) {
	advance := map[domain.OrderStatus]func(o *domain.Order) error{
		domain.OrderStatusDraft:      func(o *domain.Order) error { return nil },
		domain.OrderStatusPending:    func(o *domain.Order) error { return o.Submit() },
		domain.OrderStatusConfirmed: func(o *domain.Order) error {
			if err := o.Submit(); err != nil {
				return err
			}
			return o.Confirm()
		},
		domain.OrderStatusProcessing: func(o *domain.Order) error {
			if err := o.Submit(); err != nil {
				return err
			}
			if err := o.Confirm(); err != nil {
				return err
			}
			return o.StartProcessing()
		},
		domain.OrderStatusShipped: func(o *domain.Order) error {
			if err := o.Submit(); err != nil {
				return err
			}
			if err := o.Confirm(); err != nil {
				return err
			}
			if err := o.StartProcessing(); err != nil {
				return err
			}
			return o.Ship()
		},
	}

	cancellable := map[domain.OrderStatus]bool{
		domain.OrderStatusDraft:      true,
		domain.OrderStatusPending:    true,
		domain.OrderStatusConfirmed:  true,
		domain.OrderStatusProcessing: true,
		domain.OrderStatusShipped:    false,
	}

	for status, setup := range advance {
		t.Run(string(status), func(t *testing.T) {
			order := makeDraftOrder(t, makeItem(t, "p1", "Widget", "10.00", 2))
			if err := setup(order); err != nil {
				t.Fatalf("setup: %v", err)
			}
			order.PullEvents()

			err := order.Cancel("customer request")
			if !cancellable[status] {
				if !errors.Is(err, domain.ErrInvalidStatusTransition) {
					t.Fatalf("expected ErrInvalidStatusTransition, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("cancel from %s: %v", status, err)
			}
			if order.Status != domain.OrderStatusCancelled {
				t.Fatalf("expected cancelled, got %s", order.Status)
			}
			if order.CancellationReason != "customer request" {
				t.Fatalf("unexpected cancellation reason %q", order.CancellationReason)
			}

			events := order.PullEvents()
			if len(events) != 1 {
				t.Fatalf("expected single event, got %d", len(events))
			}
			cancelled, ok := events[0].(domain.OrderCancelled)
			if !ok {
				t.Fatalf("expected OrderCancelled, got %T", events[0])
			}
			if !cancelled.RefundAmount.Equals(mustMoney(t, "20.00", "USD")) {
				t.Fatalf("expected refund 20.00 USD, got %s", cancelled.RefundAmount)
			}
		})
	}
}

// Generic-обновление статуса не может выполнить draft → pending: этот переход
// обязан идти через Submit вместе с присвоением номера заказа.
func TestOrder_ApplyStatusRejectsPending(t *testing.T) {
	order := makeDraftOrder(t, makeItem(t, "p1", "Widget", "10.00", 1))

	if err := order.ApplyStatus(domain.OrderStatusPending); !errors.Is(err, domain.ErrSubmitRequired) {
		t.Fatalf("expected ErrSubmitRequired, got %v", err)
	}
	if order.Status != domain.OrderStatusDraft || order.OrderNumber != "" {
		t.Fatal("rejected generic transition must leave order untouched")
	}
}

func TestOrder_ApplyStatus(t *testing.T) {
	order := makeDraftOrder(t, makeItem(t, "p1", "Widget", "10.00", 1))
	if err := order.Submit(); err != nil {
		t.Fatalf("submit: %v", err)
	}
	order.PullEvents()

	if err := order.ApplyStatus(domain.OrderStatusConfirmed); err != nil {
		t.Fatalf("apply confirmed: %v", err)
	}
	if order.Status != domain.OrderStatusConfirmed {
		t.Fatalf("expected confirmed, got %s", order.Status)
	}

	if err := order.ApplyStatus(domain.OrderStatusDelivered); !errors.Is(err, domain.ErrInvalidStatusTransition) {
		t.Fatalf("expected ErrInvalidStatusTransition, got %v", err)
	}

	if err := order.ApplyStatus(domain.OrderStatusCancelled); err != nil {
		t.Fatalf("apply cancelled: %v", err)
	}
	if order.Status != domain.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", order.Status)
	}
}

func TestOrder_PullEventsClears(t *testing.T) {
	order := makeDraftOrder(t, makeItem(t, "p1", "Widget", "10.00", 1))
	if err := order.AddItem(makeItem(t, "p2", "Gadget", "5.00", 1)); err != nil {
		t.Fatalf("add item: %v", err)
	}

	if events := order.PullEvents(); len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events := order.PullEvents(); len(events) != 0 {
		t.Fatalf("expected no events after pull, got %d", len(events))
	}
}
