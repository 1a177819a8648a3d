package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OrderItem — позиция заказа. Принадлежит исключительно заказу и хранит
// snapshot имени и цены товара на момент добавления: последующие изменения
// в каталоге на заказ не влияют.
type OrderItem struct {
	ID          OrderItemID
	ProductID   ProductID
	ProductName string
	UnitPrice   Money
	Quantity    Quantity
}

// NewOrderItem создаёт позицию; количество должно быть больше нуля.
func NewOrderItem(productID ProductID, productName string, unitPrice Money, quantity Quantity) (OrderItem, error) {
	if productID.IsEmpty() {
		return OrderItem{}, fmt.Errorf("%w: product_id is required", ErrItemNotFound)
	}
	if quantity.IsZero() {
		return OrderItem{}, fmt.Errorf("%w: must be greater than zero", ErrInvalidQuantity)
	}
	return OrderItem{
		ID:          NewOrderItemID(),
		ProductID:   productID,
		ProductName: productName,
		UnitPrice:   unitPrice,
		Quantity:    quantity,
	}, nil
}

// Subtotal возвращает unitPrice * quantity.
func (i OrderItem) Subtotal() Money {
	subtotal, err := i.UnitPrice.Multiply(int64(i.Quantity.Value()))
	if err != nil {
		// Множитель всегда >= 0, сюда попасть нельзя.
		return ZeroMoney(i.UnitPrice.Currency())
	}
	return subtotal
}

// Order — корень агрегата заказа. Позиции изменяемы только в статусе draft,
// все мутации идут через методы агрегата и накапливают события.
type Order struct {
	ID                 OrderID
	CustomerID         CustomerID
	OrderNumber        string
	CustomerInfo       *CustomerInfo
	ShippingAddress    Address
	Items              []OrderItem
	Status             OrderStatus
	CancellationReason string
	Version            int64
	CreatedAt          time.Time
	UpdatedAt          time.Time

	pendingEvents []Event
}

// NewOrder создаёт заказ в статусе draft. Пустой список позиций допустим,
// дубликаты product_id — нет.
func NewOrder(customerID CustomerID, shippingAddress Address, items []OrderItem) (*Order, error) {
	if customerID.IsEmpty() {
		return nil, ErrCustomerRequired
	}
	if shippingAddress.IsZero() {
		return nil, ErrShippingAddressRequired
	}

	seen := make(map[ProductID]struct{}, len(items))
	for _, item := range items {
		if _, dup := seen[item.ProductID]; dup {
			return nil, fmt.Errorf("%w: product %s", ErrDuplicateItem, item.ProductID)
		}
		seen[item.ProductID] = struct{}{}
	}

	now := time.Now().UTC()
	o := &Order{
		ID:              NewOrderID(),
		CustomerID:      customerID,
		ShippingAddress: shippingAddress,
		Items:           append([]OrderItem(nil), items...),
		Status:          OrderStatusDraft,
		Version:         0,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	o.record(OrderCreated{
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		ItemCount:  len(o.Items),
		Occurred:   now,
	})
	return o, nil
}

// AddItem добавляет позицию. Разрешено только в draft; product_id в заказе
// должен быть уникален.
func (o *Order) AddItem(item OrderItem) error {
	if !o.Status.IsModifiable() {
		return fmt.Errorf("%w: status is %s", ErrOrderNotModifiable, o.Status)
	}
	if o.findItem(item.ProductID) >= 0 {
		return fmt.Errorf("%w: product %s", ErrDuplicateItem, item.ProductID)
	}

	o.Items = append(o.Items, item)
	o.touch()
	o.record(OrderItemAdded{
		OrderID:     o.ID,
		ProductID:   item.ProductID,
		ProductName: item.ProductName,
		Quantity:    item.Quantity.Value(),
		UnitPrice:   item.UnitPrice,
		Subtotal:    item.Subtotal(),
		Occurred:    o.UpdatedAt,
	})
	return nil
}

// RemoveItem удаляет позицию по product_id. Разрешено только в draft.
func (o *Order) RemoveItem(productID ProductID) error {
	if !o.Status.IsModifiable() {
		return fmt.Errorf("%w: status is %s", ErrOrderNotModifiable, o.Status)
	}
	idx := o.findItem(productID)
	if idx < 0 {
		return fmt.Errorf("%w: product %s", ErrItemNotFound, productID)
	}

	removed := o.Items[idx]
	o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
	o.touch()
	o.record(OrderItemRemoved{
		OrderID:         o.ID,
		ProductID:       removed.ProductID,
		QuantityRemoved: removed.Quantity.Value(),
		AmountRemoved:   removed.Subtotal(),
		Occurred:        o.UpdatedAt,
	})
	return nil
}

// UpdateItemQuantity заменяет количество в позиции. Разрешено только в draft,
// новое количество должно быть больше нуля.
func (o *Order) UpdateItemQuantity(productID ProductID, newQuantity Quantity) error {
	if !o.Status.IsModifiable() {
		return fmt.Errorf("%w: status is %s", ErrOrderNotModifiable, o.Status)
	}
	if newQuantity.IsZero() {
		return fmt.Errorf("%w: must be greater than zero", ErrInvalidQuantity)
	}
	idx := o.findItem(productID)
	if idx < 0 {
		return fmt.Errorf("%w: product %s", ErrItemNotFound, productID)
	}

	old := o.Items[idx].Quantity
	o.Items[idx].Quantity = newQuantity
	o.touch()
	o.record(OrderItemQuantityChanged{
		OrderID:     o.ID,
		ProductID:   productID,
		OldQuantity: old.Value(),
		NewQuantity: newQuantity.Value(),
		Occurred:    o.UpdatedAt,
	})
	return nil
}

// SetCustomerInfo устанавливает контактные данные клиента. Разрешено только в draft.
func (o *Order) SetCustomerInfo(info CustomerInfo) error {
	if !o.Status.CanUpdateCustomerInfo() {
		return fmt.Errorf("%w: status is %s", ErrCustomerInfoNotModifiable, o.Status)
	}
	o.CustomerInfo = &info
	o.touch()
	o.record(OrderCustomerInfoSet{OrderID: o.ID, Email: info.Email, Occurred: o.UpdatedAt})
	return nil
}

// Submit отправляет заказ: присваивает номер и переводит draft → pending.
// Это единственный путь в pending; generic-обновление статуса его не выполняет.
// Пустой заказ отправить нельзя.
func (o *Order) Submit() error {
	if !o.Status.CanSubmit() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, o.Status, OrderStatusPending)
	}
	if len(o.Items) == 0 {
		return ErrEmptyOrder
	}

	total, err := o.TotalAmount()
	if err != nil {
		return err
	}

	next, err := o.Status.TransitionTo(OrderStatusPending)
	if err != nil {
		return err
	}

	o.OrderNumber = newOrderNumber(time.Now().UTC())
	o.Status = next
	o.touch()

	var email string
	if o.CustomerInfo != nil {
		email = o.CustomerInfo.Email
	}
	o.record(OrderSubmitted{
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		CustomerID:    o.CustomerID,
		CustomerEmail: email,
		TotalAmount:   total,
		ItemCount:     len(o.Items),
		Occurred:      o.UpdatedAt,
	})
	return nil
}

// Confirm переводит pending → confirmed.
func (o *Order) Confirm() error { return o.transition(OrderStatusConfirmed) }

// StartProcessing переводит confirmed → processing.
func (o *Order) StartProcessing() error { return o.transition(OrderStatusProcessing) }

// Ship переводит processing → shipped.
func (o *Order) Ship() error { return o.transition(OrderStatusShipped) }

// Deliver переводит shipped → delivered.
func (o *Order) Deliver() error { return o.transition(OrderStatusDelivered) }

// Cancel отменяет заказ из любого не-терминального статуса до shipped,
// фиксирует причину и сумму к возврату.
func (o *Order) Cancel(reason string) error {
	next, err := o.Status.TransitionTo(OrderStatusCancelled)
	if err != nil {
		return err
	}

	// Для заказа со смешанными валютами сумму возврата посчитать нельзя,
	// отдаём ноль и оставляем сверку оператору.
	refund, totalErr := o.TotalAmount()
	if totalErr != nil {
		refund = Money{}
	}

	o.Status = next
	o.CancellationReason = reason
	o.touch()
	o.record(OrderCancelled{
		OrderID:      o.ID,
		Reason:       reason,
		RefundAmount: refund,
		Occurred:     o.UpdatedAt,
	})
	return nil
}

// ApplyStatus выполняет generic-переход по таблице. Переход в pending
// отклоняется: он обязан идти через Submit, чтобы присвоение номера заказа
// было атомарно с переходом.
func (o *Order) ApplyStatus(target OrderStatus) error {
	if target == OrderStatusPending {
		return ErrSubmitRequired
	}
	if target == OrderStatusCancelled {
		return o.Cancel("")
	}
	return o.transition(target)
}

// TotalAmount суммирует subtotal всех позиций. Для пустого заказа возвращает
// нулевое значение без валюты; смешанные валюты — ошибка.
func (o *Order) TotalAmount() (Money, error) {
	if len(o.Items) == 0 {
		return Money{}, nil
	}

	total := ZeroMoney(o.Items[0].UnitPrice.Currency())
	for _, item := range o.Items {
		sum, err := total.Add(item.Subtotal())
		if err != nil {
			return Money{}, err
		}
		total = sum
	}
	return total, nil
}

// PullEvents возвращает накопленные события и очищает pending-список.
func (o *Order) PullEvents() []Event {
	events := o.pendingEvents
	o.pendingEvents = nil
	return events
}

func (o *Order) transition(target OrderStatus) error {
	previous := o.Status
	next, err := o.Status.TransitionTo(target)
	if err != nil {
		return err
	}
	o.Status = next
	o.touch()
	o.record(OrderStatusChanged{
		OrderID:  o.ID,
		Previous: previous,
		Next:     next,
		Occurred: o.UpdatedAt,
	})
	return nil
}

func (o *Order) findItem(productID ProductID) int {
	for i, item := range o.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func (o *Order) record(e Event) {
	o.pendingEvents = append(o.pendingEvents, e)
}

func (o *Order) touch() {
	o.UpdatedAt = time.Now().UTC()
}

// newOrderNumber генерирует человекочитаемый номер вида ORD-20260828-1A2B3C4D.
func newOrderNumber(now time.Time) string {
	token := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), token)
}
