package postgres

import (
	"errors"
	"testing"

	"github.com/sergeybelanov/shop/internal/domain"
)

func TestOrderRepositoryPostgresRoundTrip(t *testing.T) {
	store := openStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	order := integrationOrder(t,
		integrationOrderItem(t, "Keyboard", "49.90", 1),
		integrationOrderItem(t, "Mouse", "19.90", 2),
	)
	if err := repo.Create(order); err != nil {
		t.Fatalf("create order: %v", err)
	}

	got, err := repo.Get(order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if got.CustomerID != order.CustomerID || got.Status != domain.OrderStatusDraft {
		t.Fatalf("unexpected order payload: %+v", got)
	}
	if len(got.Items) != 2 {
		t.Fatalf("items count = %d, want 2", len(got.Items))
	}
	if got.Items[0].ProductName != "Keyboard" || got.Items[1].ProductName != "Mouse" {
		t.Fatalf("item order not preserved: %+v", got.Items)
	}
	if got.ShippingAddress != order.ShippingAddress {
		t.Fatalf("address round trip: got %+v, want %+v", got.ShippingAddress, order.ShippingAddress)
	}

	total, err := got.TotalAmount()
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if !total.Equals(integrationMoney(t, "89.70", "USD")) {
		t.Fatalf("total = %s, want 89.70 USD", total)
	}

	// Мутация: контакт клиента + удаление позиции, затем save.
	info, err := domain.NewCustomerInfo("Jane Doe", "jane@example.com", "+15550100")
	if err != nil {
		t.Fatalf("NewCustomerInfo: %v", err)
	}
	if err := got.SetCustomerInfo(info); err != nil {
		t.Fatalf("set customer info: %v", err)
	}
	if err := got.RemoveItem(got.Items[0].ProductID); err != nil {
		t.Fatalf("remove item: %v", err)
	}
	got.PullEvents()
	if err := repo.Save(got); err != nil {
		t.Fatalf("save order: %v", err)
	}

	updated, err := repo.Get(order.ID)
	if err != nil {
		t.Fatalf("get updated order: %v", err)
	}
	if updated.Version != got.Version+1 {
		t.Fatalf("version = %d, want %d", updated.Version, got.Version+1)
	}
	if len(updated.Items) != 1 || updated.Items[0].ProductName != "Mouse" {
		t.Fatalf("items after save: %+v", updated.Items)
	}
	if updated.CustomerInfo == nil || updated.CustomerInfo.Email != "jane@example.com" {
		t.Fatalf("customer info after save: %+v", updated.CustomerInfo)
	}
}

func TestOrderRepositoryPostgresListAndErrors(t *testing.T) {
	store := openStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	first := integrationOrder(t, integrationOrderItem(t, "Keyboard", "49.90", 1))
	second := integrationOrder(t)
	second.CustomerID = first.CustomerID

	if err := repo.Create(first); err != nil {
		t.Fatalf("create first: %v", err)
	}
	if err := repo.Create(second); err != nil {
		t.Fatalf("create second: %v", err)
	}

	byCustomer, err := repo.ListByCustomer(first.CustomerID, 0)
	if err != nil {
		t.Fatalf("list by customer: %v", err)
	}
	if len(byCustomer) != 2 {
		t.Fatalf("customer orders = %d, want 2", len(byCustomer))
	}

	limited, err := repo.ListByCustomer(first.CustomerID, 1)
	if err != nil {
		t.Fatalf("list by customer with limit: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("limited orders = %d, want 1", len(limited))
	}

	drafts, err := repo.ListByStatus(domain.OrderStatusDraft)
	if err != nil {
		t.Fatalf("list by status: %v", err)
	}
	if len(drafts) != 2 {
		t.Fatalf("draft orders = %d, want 2", len(drafts))
	}

	exists, err := repo.Exists(first.ID)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !exists {
		t.Fatal("existing order reported as missing")
	}

	if _, err := repo.Get(domain.NewOrderID()); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("missing order: err = %v, want ErrOrderNotFound", err)
	}

	if err := repo.Create(first); !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("duplicate create: err = %v, want ErrVersionConflict", err)
	}

	stale := first
	stale.Version = 42
	if err := repo.Save(stale); !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("stale save: err = %v, want ErrVersionConflict", err)
	}

	if err := repo.Delete(first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(first.ID); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("delete missing: err = %v, want ErrOrderNotFound", err)
	}
}
