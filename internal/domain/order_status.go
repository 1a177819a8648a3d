package domain

import "fmt"

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusDraft — заказ создан и может свободно изменяться.
	OrderStatusDraft OrderStatus = "draft"
	// OrderStatusPending — заказ отправлен, номер присвоен, изменения запрещены.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusConfirmed — заказ подтверждён магазином.
	OrderStatusConfirmed OrderStatus = "confirmed"
	// OrderStatusProcessing — заказ собирается на складе.
	OrderStatusProcessing OrderStatus = "processing"
	// OrderStatusShipped — заказ передан в доставку.
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusDelivered — заказ доставлен клиенту (терминальный статус).
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled — заказ отменён (терминальный статус).
	OrderStatusCancelled OrderStatus = "cancelled"
)

// orderTransitions — таблица допустимых переходов. Храним её как данные,
// а не как методы на статусах: таблица закрытая и проверяется целиком в тестах.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusDraft:      {OrderStatusPending, OrderStatusCancelled},
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

// Valid проверяет, что статус относится к поддерживаемым значениям.
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// CanTransitionTo — чистый предикат по таблице переходов.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// TransitionTo возвращает целевой статус или ErrInvalidStatusTransition,
// если перехода нет в таблице.
func (s OrderStatus) TransitionTo(target OrderStatus) (OrderStatus, error) {
	if !s.CanTransitionTo(target) {
		return s, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, s, target)
	}
	return target, nil
}

// IsModifiable сообщает, можно ли менять состав заказа.
func (s OrderStatus) IsModifiable() bool { return s == OrderStatusDraft }

// CanSubmit сообщает, можно ли отправить заказ.
func (s OrderStatus) CanSubmit() bool { return s == OrderStatusDraft }

// CanUpdateCustomerInfo сообщает, можно ли менять данные клиента.
func (s OrderStatus) CanUpdateCustomerInfo() bool { return s == OrderStatusDraft }

// IsTerminal сообщает, что дальнейшие переходы невозможны.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}
