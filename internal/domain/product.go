package domain

import (
	"fmt"
	"strings"
	"time"
)

// ProductStatus описывает жизненный цикл товара в каталоге.
type ProductStatus string

const (
	// ProductStatusDraft — товар создан, но не виден покупателям.
	ProductStatusDraft ProductStatus = "draft"
	// ProductStatusActive — товар доступен для покупки.
	ProductStatusActive ProductStatus = "active"
	// ProductStatusInactive — товар снят с продажи.
	ProductStatusInactive ProductStatus = "inactive"
)

// Valid проверяет, что статус относится к поддерживаемым значениям.
func (s ProductStatus) Valid() bool {
	switch s {
	case ProductStatusDraft, ProductStatusActive, ProductStatusInactive:
		return true
	default:
		return false
	}
}

// CanActivate сообщает, разрешён ли переход в active.
func (s ProductStatus) CanActivate() bool {
	return s == ProductStatusDraft || s == ProductStatusInactive
}

// CanDeactivate сообщает, разрешён ли переход в inactive.
func (s ProductStatus) CanDeactivate() bool {
	return s == ProductStatusActive
}

// Product — корень агрегата каталога. Все изменения проходят через методы,
// которые соблюдают инварианты и накапливают события в pending-списке.
type Product struct {
	ID          ProductID
	Name        string
	Description string
	Price       Money
	SKU         string
	Status      ProductStatus
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time

	pendingEvents []Event
}

// NewProduct создаёт товар в статусе draft и записывает ProductCreated.
// Уникальность SKU проверяет application-сервис через репозиторий.
func NewProduct(name, description string, price Money, sku string) (*Product, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrProductNameRequired
	}
	if strings.TrimSpace(sku) == "" {
		return nil, ErrSKURequired
	}

	now := time.Now().UTC()
	p := &Product{
		ID:          NewProductID(),
		Name:        name,
		Description: description,
		Price:       price,
		SKU:         sku,
		Status:      ProductStatusDraft,
		Version:     0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	p.record(ProductCreated{ProductID: p.ID, Name: p.Name, SKU: p.SKU, Occurred: now})
	return p, nil
}

// UpdateInfo обновляет имя и описание; допустимо в любом статусе.
func (p *Product) UpdateInfo(name, description string) error {
	if strings.TrimSpace(name) == "" {
		return ErrProductNameRequired
	}
	p.Name = name
	p.Description = description
	p.touch()
	p.record(ProductInfoUpdated{ProductID: p.ID, Name: p.Name, Occurred: p.UpdatedAt})
	return nil
}

// UpdatePrice заменяет цену; допустимо в любом статусе.
func (p *Product) UpdatePrice(newPrice Money) error {
	old := p.Price
	p.Price = newPrice
	p.touch()
	p.record(ProductPriceChanged{
		ProductID: p.ID,
		OldPrice:  old,
		NewPrice:  newPrice,
		Occurred:  p.UpdatedAt,
	})
	return nil
}

// Activate переводит товар в active из draft или inactive.
func (p *Product) Activate() error {
	if !p.Status.CanActivate() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, p.Status, ProductStatusActive)
	}
	p.Status = ProductStatusActive
	p.touch()
	p.record(ProductActivated{ProductID: p.ID, Name: p.Name, Occurred: p.UpdatedAt})
	return nil
}

// Deactivate переводит товар в inactive из active.
func (p *Product) Deactivate() error {
	if !p.Status.CanDeactivate() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, p.Status, ProductStatusInactive)
	}
	p.Status = ProductStatusInactive
	p.touch()
	p.record(ProductDeactivated{ProductID: p.ID, Name: p.Name, Occurred: p.UpdatedAt})
	return nil
}

// AvailableForPurchase сообщает, можно ли добавлять товар в заказы.
func (p *Product) AvailableForPurchase() bool {
	return p.Status == ProductStatusActive
}

// PullEvents возвращает накопленные события и очищает pending-список.
// Вызывается после успешного сохранения агрегата.
func (p *Product) PullEvents() []Event {
	events := p.pendingEvents
	p.pendingEvents = nil
	return events
}

func (p *Product) record(e Event) {
	p.pendingEvents = append(p.pendingEvents, e)
}

func (p *Product) touch() {
	p.UpdatedAt = time.Now().UTC()
}
