package order

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sergeybelanov/shop/internal/domain"
	"github.com/sergeybelanov/shop/internal/metrics"
)

const aggregateTypeOrder = "order"

// ItemSpec — запрошенная позиция заказа: имя и цена подставляются
// из snapshot каталога на стороне сервиса.
type ItemSpec struct {
	ProductID domain.ProductID
	Quantity  int
}

// Service — application-сервис Order-контекста. Разрешает позиции через
// ProductPort, держит историю статусов и ставит доменные события в outbox.
type Service struct {
	orders   domain.OrderRepository
	products domain.ProductPort
	outbox   domain.OutboxRepository
	history  domain.StatusHistoryRepository
	minOrder *MinOrderPolicy
	shipping ShippingCalculator
	logger   *log.Entry
	metrics  *metrics.ShopMetrics
}

// NewService создаёт сервис заказов.
func NewService(
	orders domain.OrderRepository,
	products domain.ProductPort,
	outbox domain.OutboxRepository,
	history domain.StatusHistoryRepository,
	minOrder *MinOrderPolicy,
	shipping ShippingCalculator,
	logger *log.Entry,
	m *metrics.ShopMetrics,
) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "order-service")
	}
	return &Service{
		orders:   orders,
		products: products,
		outbox:   outbox,
		history:  history,
		minOrder: minOrder,
		shipping: shipping,
		logger:   logger,
		metrics:  m,
	}
}

// CreateOrder создаёт черновик заказа, разрешая каждую позицию через каталог.
// Пустой список позиций допустим: заказ наполняется до submit.
func (s *Service) CreateOrder(customerID domain.CustomerID, shippingAddress domain.Address, specs []ItemSpec) (domain.Order, error) {
	items := make([]domain.OrderItem, 0, len(specs))
	for _, spec := range specs {
		item, err := s.resolveItem(spec)
		if err != nil {
			return domain.Order{}, err
		}
		items = append(items, item)
	}

	order, err := domain.NewOrder(customerID, shippingAddress, items)
	if err != nil {
		return domain.Order{}, err
	}

	events := order.PullEvents()
	if err := s.orders.Create(*order); err != nil {
		s.logger.WithError(err).WithField("customer_id", customerID).Error("failed to create order")
		return domain.Order{}, err
	}
	s.publishEvents(events)
	s.metrics.OrderCreated()

	s.logger.WithFields(log.Fields{
		"order_id":    order.ID,
		"customer_id": customerID,
		"items":       len(items),
	}).Info("order created")
	return *order, nil
}

// GetOrder возвращает заказ по идентификатору.
func (s *Service) GetOrder(id domain.OrderID) (domain.Order, error) {
	return s.orders.Get(id)
}

// ListOrders возвращает заказы; при непустом status — только в этом статусе.
func (s *Service) ListOrders(status domain.OrderStatus) ([]domain.Order, error) {
	if status == "" {
		return s.orders.List()
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown order status %q", domain.ErrInvalidStatusTransition, status)
	}
	return s.orders.ListByStatus(status)
}

// ListCustomerOrders возвращает заказы клиента.
func (s *Service) ListCustomerOrders(customerID domain.CustomerID, limit int) ([]domain.Order, error) {
	return s.orders.ListByCustomer(customerID, limit)
}

// AddItem добавляет позицию в черновик, снимая имя и цену из каталога.
func (s *Service) AddItem(orderID domain.OrderID, productID domain.ProductID, quantity int) (domain.Order, error) {
	item, err := s.resolveItem(ItemSpec{ProductID: productID, Quantity: quantity})
	if err != nil {
		return domain.Order{}, err
	}
	return s.mutate(orderID, func(o *domain.Order) error {
		return o.AddItem(item)
	})
}

// RemoveItem удаляет позицию из черновика.
func (s *Service) RemoveItem(orderID domain.OrderID, productID domain.ProductID) (domain.Order, error) {
	return s.mutate(orderID, func(o *domain.Order) error {
		return o.RemoveItem(productID)
	})
}

// UpdateItemQuantity заменяет количество в позиции черновика.
func (s *Service) UpdateItemQuantity(orderID domain.OrderID, productID domain.ProductID, quantity int) (domain.Order, error) {
	qty, err := domain.NewQuantity(quantity)
	if err != nil {
		return domain.Order{}, err
	}
	return s.mutate(orderID, func(o *domain.Order) error {
		return o.UpdateItemQuantity(productID, qty)
	})
}

// SetCustomerInfo задаёт контактные данные клиента в черновике.
func (s *Service) SetCustomerInfo(orderID domain.OrderID, info domain.CustomerInfo) (domain.Order, error) {
	return s.mutate(orderID, func(o *domain.Order) error {
		return o.SetCustomerInfo(info)
	})
}

// Submit переводит заказ в pending: перепроверяет доступность каждого товара
// в каталоге и минимальную сумму заказа, затем выполняет доменный submit.
func (s *Service) Submit(orderID domain.OrderID) (domain.Order, error) {
	order, err := s.orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}

	for _, item := range order.Items {
		available, err := s.products.IsProductAvailable(item.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrProductNotFound) {
				return domain.Order{}, fmt.Errorf("%w: product %s", domain.ErrProductNotFound, item.ProductID)
			}
			return domain.Order{}, fmt.Errorf("check availability: %w", err)
		}
		if !available {
			return domain.Order{}, fmt.Errorf("%w: product %s", domain.ErrProductNotAvailable, item.ProductID)
		}
	}

	if err := s.minOrder.Validate(&order); err != nil {
		return domain.Order{}, err
	}

	prev := order.Status
	if err := order.Submit(); err != nil {
		return domain.Order{}, err
	}

	events := order.PullEvents()
	if err := s.orders.Save(order); err != nil {
		s.logger.WithError(err).WithField("order_id", orderID).Error("failed to save order")
		return domain.Order{}, err
	}
	s.publishEvents(events)
	s.recordTransition(order, prev, "submit")
	s.metrics.OrderSubmitted()
	s.metrics.OrderTransition(string(prev), string(order.Status))

	order.Version++
	s.logger.WithFields(log.Fields{
		"order_id":     orderID,
		"order_number": order.OrderNumber,
	}).Info("order submitted")
	return order, nil
}

// Confirm подтверждает оплаченный заказ.
func (s *Service) Confirm(orderID domain.OrderID) (domain.Order, error) {
	return s.advance(orderID, "confirm", func(o *domain.Order) error { return o.Confirm() })
}

// StartProcessing переводит заказ в сборку.
func (s *Service) StartProcessing(orderID domain.OrderID) (domain.Order, error) {
	return s.advance(orderID, "start processing", func(o *domain.Order) error { return o.StartProcessing() })
}

// Ship отмечает заказ отгруженным.
func (s *Service) Ship(orderID domain.OrderID) (domain.Order, error) {
	return s.advance(orderID, "ship", func(o *domain.Order) error { return o.Ship() })
}

// Deliver отмечает заказ доставленным.
func (s *Service) Deliver(orderID domain.OrderID) (domain.Order, error) {
	return s.advance(orderID, "deliver", func(o *domain.Order) error { return o.Deliver() })
}

// Cancel отменяет заказ с указанием причины.
func (s *Service) Cancel(orderID domain.OrderID, reason string) (domain.Order, error) {
	order, err := s.advance(orderID, reason, func(o *domain.Order) error { return o.Cancel(reason) })
	if err == nil {
		s.metrics.OrderCancelled()
	}
	return order, err
}

// UpdateStatus применяет произвольный целевой статус с проверкой допустимости
// перехода. Переход в pending через эту операцию запрещён: только submit.
func (s *Service) UpdateStatus(orderID domain.OrderID, target domain.OrderStatus) (domain.Order, error) {
	if !target.Valid() {
		return domain.Order{}, fmt.Errorf("%w: unknown order status %q", domain.ErrInvalidStatusTransition, target)
	}
	return s.advance(orderID, "status update", func(o *domain.Order) error { return o.ApplyStatus(target) })
}

// DeleteOrder удаляет заказ.
func (s *Service) DeleteOrder(id domain.OrderID) error {
	if err := s.orders.Delete(id); err != nil {
		return err
	}
	s.logger.WithField("order_id", id).Info("order deleted")
	return nil
}

// StatusHistory возвращает историю переходов статусов заказа.
func (s *Service) StatusHistory(orderID domain.OrderID) ([]domain.StatusChange, error) {
	exists, err := s.orders.Exists(orderID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrOrderNotFound
	}
	if s.history == nil {
		return nil, nil
	}
	return s.history.List(orderID)
}

// ShippingQuote считает стоимость доставки для текущего состава заказа.
func (s *Service) ShippingQuote(orderID domain.OrderID) (domain.Money, error) {
	if s.shipping == nil {
		return domain.Money{}, errors.New("shipping calculator is not configured")
	}
	order, err := s.orders.Get(orderID)
	if err != nil {
		return domain.Money{}, err
	}
	return s.shipping.Calculate(&order)
}

// resolveItem строит позицию заказа из snapshot каталога.
func (s *Service) resolveItem(spec ItemSpec) (domain.OrderItem, error) {
	snapshot, err := s.products.FindProduct(spec.ProductID)
	if err != nil {
		return domain.OrderItem{}, err
	}
	if !snapshot.AvailableForPurchase {
		return domain.OrderItem{}, fmt.Errorf("%w: product %s", domain.ErrProductNotAvailable, spec.ProductID)
	}
	qty, err := domain.NewQuantity(spec.Quantity)
	if err != nil {
		return domain.OrderItem{}, err
	}
	return domain.NewOrderItem(snapshot.ProductID, snapshot.Name, snapshot.Price, qty)
}

// mutate выполняет цикл load → op → save → publish для одного заказа.
func (s *Service) mutate(orderID domain.OrderID, op func(*domain.Order) error) (domain.Order, error) {
	order, err := s.orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}

	if err := op(&order); err != nil {
		return domain.Order{}, err
	}

	events := order.PullEvents()
	if err := s.orders.Save(order); err != nil {
		s.logger.WithError(err).WithField("order_id", orderID).Error("failed to save order")
		return domain.Order{}, err
	}
	s.publishEvents(events)

	order.Version++
	return order, nil
}

// advance — mutate со сменой статуса: дополнительно пишет историю и метрику.
func (s *Service) advance(orderID domain.OrderID, reason string, op func(*domain.Order) error) (domain.Order, error) {
	order, err := s.orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}

	prev := order.Status
	if err := op(&order); err != nil {
		return domain.Order{}, err
	}

	events := order.PullEvents()
	if err := s.orders.Save(order); err != nil {
		s.logger.WithError(err).WithField("order_id", orderID).Error("failed to save order")
		return domain.Order{}, err
	}
	s.publishEvents(events)
	if order.Status != prev {
		s.recordTransition(order, prev, reason)
		s.metrics.OrderTransition(string(prev), string(order.Status))
	}

	order.Version++
	return order, nil
}

// recordTransition пишет запись истории статусов; сбой не фатален.
func (s *Service) recordTransition(order domain.Order, from domain.OrderStatus, reason string) {
	if s.history == nil {
		return
	}
	change := domain.StatusChange{
		OrderID:  order.ID,
		From:     from,
		To:       order.Status,
		Reason:   reason,
		Occurred: time.Now().UTC(),
	}
	if err := s.history.Append(change); err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to append status history")
	}
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
			AggregateType: aggregateTypeOrder,
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
