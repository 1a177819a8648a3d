package catalog

import (
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/sergeybelanov/shop/internal/domain"
	"github.com/sergeybelanov/shop/internal/metrics"
)

const aggregateTypeProduct = "product"

// Service — application-сервис Catalog-контекста. Оркестрирует цикл
// "загрузить агрегат → мутировать → сохранить → поставить события в outbox".
type Service struct {
	products domain.ProductRepository
	outbox   domain.OutboxRepository
	logger   *log.Entry
	metrics  *metrics.ShopMetrics
}

// NewService создаёт сервис каталога.
func NewService(
	products domain.ProductRepository,
	outbox domain.OutboxRepository,
	logger *log.Entry,
	m *metrics.ShopMetrics,
) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "catalog-service")
	}
	return &Service{
		products: products,
		outbox:   outbox,
		logger:   logger,
		metrics:  m,
	}
}

// CreateProduct создаёт товар в статусе draft, проверяя уникальность SKU.
func (s *Service) CreateProduct(name, description string, price domain.Money, sku string) (domain.Product, error) {
	exists, err := s.products.ExistsBySKU(sku)
	if err != nil {
		return domain.Product{}, fmt.Errorf("check sku: %w", err)
	}
	if exists {
		return domain.Product{}, domain.ErrSKUAlreadyExists
	}

	product, err := domain.NewProduct(name, description, price, sku)
	if err != nil {
		return domain.Product{}, err
	}

	events := product.PullEvents()
	if err := s.products.Create(*product); err != nil {
		s.logger.WithError(err).WithField("sku", sku).Error("failed to create product")
		return domain.Product{}, err
	}
	s.publishEvents(events)
	s.metrics.ProductCreated()

	s.logger.WithFields(log.Fields{
		"product_id": product.ID,
		"sku":        sku,
	}).Info("product created")
	return *product, nil
}

// GetProduct возвращает товар по идентификатору.
func (s *Service) GetProduct(id domain.ProductID) (domain.Product, error) {
	return s.products.Get(id)
}

// GetProductBySKU возвращает товар по SKU.
func (s *Service) GetProductBySKU(sku string) (domain.Product, error) {
	return s.products.GetBySKU(sku)
}

// ListProducts возвращает товары; при непустом status — только в этом статусе.
func (s *Service) ListProducts(status domain.ProductStatus) ([]domain.Product, error) {
	if status == "" {
		return s.products.List()
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown product status %q", domain.ErrInvalidStatusTransition, status)
	}
	return s.products.ListByStatus(status)
}

// UpdateInfo обновляет имя и описание товара.
func (s *Service) UpdateInfo(id domain.ProductID, name, description string) (domain.Product, error) {
	return s.mutate(id, func(p *domain.Product) error {
		return p.UpdateInfo(name, description)
	})
}

// UpdatePrice заменяет цену товара.
func (s *Service) UpdatePrice(id domain.ProductID, newPrice domain.Money) (domain.Product, error) {
	return s.mutate(id, func(p *domain.Product) error {
		return p.UpdatePrice(newPrice)
	})
}

// Activate переводит товар в статус active.
func (s *Service) Activate(id domain.ProductID) (domain.Product, error) {
	product, err := s.mutate(id, func(p *domain.Product) error {
		return p.Activate()
	})
	if err == nil {
		s.metrics.ProductStatusChanged(string(domain.ProductStatusActive))
	}
	return product, err
}

// Deactivate переводит товар в статус inactive.
func (s *Service) Deactivate(id domain.ProductID) (domain.Product, error) {
	product, err := s.mutate(id, func(p *domain.Product) error {
		return p.Deactivate()
	})
	if err == nil {
		s.metrics.ProductStatusChanged(string(domain.ProductStatusInactive))
	}
	return product, err
}

// DeleteProduct удаляет товар из каталога.
func (s *Service) DeleteProduct(id domain.ProductID) error {
	if err := s.products.Delete(id); err != nil {
		return err
	}
	s.logger.WithField("product_id", id).Info("product deleted")
	return nil
}

// mutate выполняет цикл load → op → save → publish для одного товара.
func (s *Service) mutate(id domain.ProductID, op func(*domain.Product) error) (domain.Product, error) {
	product, err := s.products.Get(id)
	if err != nil {
		return domain.Product{}, err
	}

	if err := op(&product); err != nil {
		return domain.Product{}, err
	}

	events := product.PullEvents()
	if err := s.products.Save(product); err != nil {
		s.logger.WithError(err).WithField("product_id", id).Error("failed to save product")
		return domain.Product{}, err
	}
	s.publishEvents(events)

	// Версия растёт при сохранении; отражаем это в возвращаемом значении.
	product.Version++
	return product, nil
}

// publishEvents ставит события в outbox. Сбой постановки не откатывает
// уже сохранённый агрегат: события доставляются best-effort, at-least-once.
func (s *Service) publishEvents(events []domain.Event) {
	if s.outbox == nil {
		return
	}
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			s.logger.WithError(err).WithField("event", event.EventName()).Warn("failed to marshal event")
			continue
		}
		if _, err := s.outbox.Enqueue(domain.OutboxMessage{
			AggregateType: aggregateTypeProduct,
			AggregateID:   event.AggregateID(),
			EventType:     event.EventName(),
			Payload:       payload,
		}); err != nil {
			s.logger.WithError(err).WithField("event", event.EventName()).Warn("failed to enqueue event")
			continue
		}
		s.metrics.OutboxEventEnqueued()
	}
}
