package domain_test

import (
	"errors"
	"testing"

	"github.com/sergeybelanov/shop/internal/domain"
)

func makeProduct(t *testing.T) *domain.Product {
	t.Helper()
	product, err := domain.NewProduct("Widget", "A useful widget", mustMoney(t, "9.99", "USD"), "W-1")
	if err != nil {
		t.Fatalf("new product: %v", err)
	}
	product.PullEvents()
	return product
}

func TestNewProduct(t *testing.T) {
	product, err := domain.NewProduct("Widget", "A useful widget", mustMoney(t, "9.99", "USD"), "W-1")
	if err != nil {
		t.Fatalf("new product: %v", err)
	}
	if product.Status != domain.ProductStatusDraft {
		t.Fatalf("expected draft, got %s", product.Status)
	}
	if product.ID.IsEmpty() {
		t.Fatal("expected generated product id")
	}

	events := product.PullEvents()
	if len(events) != 1 || events[0].EventName() != domain.EventProductCreated {
		t.Fatalf("expected single ProductCreated event, got %v", events)
	}

	if _, err := domain.NewProduct("", "desc", mustMoney(t, "1.00", "USD"), "W-2"); !errors.Is(err, domain.ErrProductNameRequired) {
		t.Fatalf("expected ErrProductNameRequired, got %v", err)
	}
	if _, err := domain.NewProduct("Widget", "desc", mustMoney(t, "1.00", "USD"), "  "); !errors.Is(err, domain.ErrSKURequired) {
		t.Fatalf("expected ErrSKURequired, got %v", err)
	}
}

func TestProduct_ActivateDeactivate(t *testing.T) {
	product := makeProduct(t)

	if err := product.Activate(); err != nil {
		t.Fatalf("activate from draft: %v", err)
	}
	if product.Status != domain.ProductStatusActive {
		t.Fatalf("expected active, got %s", product.Status)
	}

	// Повторная активация из active запрещена: active не входит в исходные
	// статусы перехода.
	if err := product.Activate(); !errors.Is(err, domain.ErrInvalidStatusTransition) {
		t.Fatalf("expected ErrInvalidStatusTransition, got %v", err)
	}

	if err := product.Deactivate(); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if product.Status != domain.ProductStatusInactive {
		t.Fatalf("expected inactive, got %s", product.Status)
	}

	if err := product.Deactivate(); !errors.Is(err, domain.ErrInvalidStatusTransition) {
		t.Fatalf("expected ErrInvalidStatusTransition on double deactivate, got %v", err)
	}

	// Из inactive путь обратно в active открыт.
	if err := product.Activate(); err != nil {
		t.Fatalf("activate from inactive: %v", err)
	}

	events := product.PullEvents()
	wantNames := []string{
		domain.EventProductActivated,
		domain.EventProductDeactivated,
		domain.EventProductActivated,
	}
	if len(events) != len(wantNames) {
		t.Fatalf("expected %d events, got %d", len(wantNames), len(events))
	}
	for i, e := range events {
		if e.EventName() != wantNames[i] {
			t.Fatalf("event[%d]: expected %s, got %s", i, wantNames[i], e.EventName())
		}
	}
}

func TestProduct_UpdatePrice(t *testing.T) {
	product := makeProduct(t)

	newPrice := mustMoney(t, "12.50", "USD")
	if err := product.UpdatePrice(newPrice); err != nil {
		t.Fatalf("update price: %v", err)
	}
	if !product.Price.Equals(newPrice) {
		t.Fatalf("expected price %s, got %s", newPrice, product.Price)
	}

	events := product.PullEvents()
	if len(events) != 1 {
		t.Fatalf("expected single event, got %d", len(events))
	}
	changed, ok := events[0].(domain.ProductPriceChanged)
	if !ok {
		t.Fatalf("expected ProductPriceChanged, got %T", events[0])
	}
	if !changed.OldPrice.Equals(mustMoney(t, "9.99", "USD")) || !changed.NewPrice.Equals(newPrice) {
		t.Fatalf("unexpected price change payload: %+v", changed)
	}

	// Цена меняется в любом статусе.
	if err := product.Activate(); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if err := product.UpdatePrice(mustMoney(t, "15.00", "USD")); err != nil {
		t.Fatalf("update price while active: %v", err)
	}
}

func TestProduct_UpdateInfo(t *testing.T) {
	product := makeProduct(t)

	if err := product.UpdateInfo("Widget Pro", "An even better widget"); err != nil {
		t.Fatalf("update info: %v", err)
	}
	if product.Name != "Widget Pro" {
		t.Fatalf("expected updated name, got %q", product.Name)
	}

	if err := product.UpdateInfo("   ", "desc"); !errors.Is(err, domain.ErrProductNameRequired) {
		t.Fatalf("expected ErrProductNameRequired, got %v", err)
	}

	events := product.PullEvents()
	if len(events) != 1 || events[0].EventName() != domain.EventProductInfoUpdated {
		t.Fatalf("expected single ProductInfoUpdated event, got %v", events)
	}
}

func TestProduct_AvailableForPurchase(t *testing.T) {
	product := makeProduct(t)
	if product.AvailableForPurchase() {
		t.Fatal("draft product must not be available")
	}
	if err := product.Activate(); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if !product.AvailableForPurchase() {
		t.Fatal("active product must be available")
	}
}
