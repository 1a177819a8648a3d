package domain

import "time"

// Event — факт, произошедший с агрегатом. Агрегат накапливает события в
// pending-списке; приложение публикует их после успешного сохранения и
// очищает список через PullEvents.
type Event interface {
	// EventName возвращает стабильное имя типа события, например "order.item_added".
	EventName() string
	// AggregateID возвращает идентификатор агрегата-источника.
	AggregateID() string
}

// Имена событий. Используются и как event_type в outbox/Kafka.
const (
	EventProductCreated           = "product.created"
	EventProductActivated         = "product.activated"
	EventProductDeactivated       = "product.deactivated"
	EventProductPriceChanged      = "product.price_changed"
	EventProductInfoUpdated       = "product.info_updated"
	EventOrderCreated             = "order.created"
	EventOrderItemAdded           = "order.item_added"
	EventOrderItemRemoved         = "order.item_removed"
	EventOrderItemQuantityChanged = "order.item_quantity_changed"
	EventOrderCustomerInfoSet     = "order.customer_info_set"
	EventOrderSubmitted           = "order.submitted"
	EventOrderStatusChanged       = "order.status_changed"
	EventOrderCancelled           = "order.cancelled"
)

// ProductCreated фиксирует появление товара в каталоге.
type ProductCreated struct {
	ProductID ProductID `json:"product_id"`
	Name      string    `json:"name"`
	SKU       string    `json:"sku"`
	Occurred  time.Time `json:"occurred_at"`
}

func (e ProductCreated) EventName() string   { return EventProductCreated }
func (e ProductCreated) AggregateID() string { return e.ProductID.String() }

// ProductActivated фиксирует перевод товара в статус active.
type ProductActivated struct {
	ProductID ProductID `json:"product_id"`
	Name      string    `json:"name"`
	Occurred  time.Time `json:"occurred_at"`
}

func (e ProductActivated) EventName() string   { return EventProductActivated }
func (e ProductActivated) AggregateID() string { return e.ProductID.String() }

// ProductDeactivated фиксирует перевод товара в статус inactive.
type ProductDeactivated struct {
	ProductID ProductID `json:"product_id"`
	Name      string    `json:"name"`
	Occurred  time.Time `json:"occurred_at"`
}

func (e ProductDeactivated) EventName() string   { return EventProductDeactivated }
func (e ProductDeactivated) AggregateID() string { return e.ProductID.String() }

// ProductPriceChanged фиксирует смену цены товара.
type ProductPriceChanged struct {
	ProductID ProductID `json:"product_id"`
	OldPrice  Money     `json:"old_price"`
	NewPrice  Money     `json:"new_price"`
	Occurred  time.Time `json:"occurred_at"`
}

func (e ProductPriceChanged) EventName() string   { return EventProductPriceChanged }
func (e ProductPriceChanged) AggregateID() string { return e.ProductID.String() }

// ProductInfoUpdated фиксирует смену имени/описания товара.
type ProductInfoUpdated struct {
	ProductID ProductID `json:"product_id"`
	Name      string    `json:"name"`
	Occurred  time.Time `json:"occurred_at"`
}

func (e ProductInfoUpdated) EventName() string   { return EventProductInfoUpdated }
func (e ProductInfoUpdated) AggregateID() string { return e.ProductID.String() }

// OrderCreated фиксирует создание заказа в статусе draft.
type OrderCreated struct {
	OrderID    OrderID    `json:"order_id"`
	CustomerID CustomerID `json:"customer_id"`
	ItemCount  int        `json:"item_count"`
	Occurred   time.Time  `json:"occurred_at"`
}

func (e OrderCreated) EventName() string   { return EventOrderCreated }
func (e OrderCreated) AggregateID() string { return e.OrderID.String() }

// OrderItemAdded фиксирует добавление позиции в заказ.
type OrderItemAdded struct {
	OrderID     OrderID   `json:"order_id"`
	ProductID   ProductID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	UnitPrice   Money     `json:"unit_price"`
	Subtotal    Money     `json:"subtotal"`
	Occurred    time.Time `json:"occurred_at"`
}

func (e OrderItemAdded) EventName() string   { return EventOrderItemAdded }
func (e OrderItemAdded) AggregateID() string { return e.OrderID.String() }

// OrderItemRemoved фиксирует удаление позиции из заказа.
type OrderItemRemoved struct {
	OrderID         OrderID   `json:"order_id"`
	ProductID       ProductID `json:"product_id"`
	QuantityRemoved int       `json:"quantity_removed"`
	AmountRemoved   Money     `json:"amount_removed"`
	Occurred        time.Time `json:"occurred_at"`
}

func (e OrderItemRemoved) EventName() string   { return EventOrderItemRemoved }
func (e OrderItemRemoved) AggregateID() string { return e.OrderID.String() }

// OrderItemQuantityChanged фиксирует смену количества в позиции.
type OrderItemQuantityChanged struct {
	OrderID     OrderID   `json:"order_id"`
	ProductID   ProductID `json:"product_id"`
	OldQuantity int       `json:"old_quantity"`
	NewQuantity int       `json:"new_quantity"`
	Occurred    time.Time `json:"occurred_at"`
}

func (e OrderItemQuantityChanged) EventName() string   { return EventOrderItemQuantityChanged }
func (e OrderItemQuantityChanged) AggregateID() string { return e.OrderID.String() }

// OrderCustomerInfoSet фиксирует установку контактных данных клиента.
type OrderCustomerInfoSet struct {
	OrderID  OrderID   `json:"order_id"`
	Email    string    `json:"email"`
	Occurred time.Time `json:"occurred_at"`
}

func (e OrderCustomerInfoSet) EventName() string   { return EventOrderCustomerInfoSet }
func (e OrderCustomerInfoSet) AggregateID() string { return e.OrderID.String() }

// OrderSubmitted фиксирует отправку заказа: draft → pending, номер присвоен.
type OrderSubmitted struct {
	OrderID       OrderID    `json:"order_id"`
	OrderNumber   string     `json:"order_number"`
	CustomerID    CustomerID `json:"customer_id"`
	CustomerEmail string     `json:"customer_email"`
	TotalAmount   Money      `json:"total_amount"`
	ItemCount     int        `json:"item_count"`
	Occurred      time.Time  `json:"occurred_at"`
}

func (e OrderSubmitted) EventName() string   { return EventOrderSubmitted }
func (e OrderSubmitted) AggregateID() string { return e.OrderID.String() }

// OrderStatusChanged фиксирует переход по таблице статусов.
type OrderStatusChanged struct {
	OrderID  OrderID     `json:"order_id"`
	Previous OrderStatus `json:"previous"`
	Next     OrderStatus `json:"next"`
	Occurred time.Time   `json:"occurred_at"`
}

func (e OrderStatusChanged) EventName() string   { return EventOrderStatusChanged }
func (e OrderStatusChanged) AggregateID() string { return e.OrderID.String() }

// OrderCancelled фиксирует отмену заказа.
type OrderCancelled struct {
	OrderID      OrderID   `json:"order_id"`
	Reason       string    `json:"reason"`
	RefundAmount Money     `json:"refund_amount"`
	Occurred     time.Time `json:"occurred_at"`
}

func (e OrderCancelled) EventName() string   { return EventOrderCancelled }
func (e OrderCancelled) AggregateID() string { return e.OrderID.String() }
