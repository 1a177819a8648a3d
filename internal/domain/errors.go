package domain

import "errors"

var (
	// ErrInvalidStatusTransition — попытка перехода, которого нет в таблице переходов.
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	// ErrOrderNotModifiable — изменение позиций заказа вне статуса draft.
	ErrOrderNotModifiable = errors.New("order is not modifiable")
	// ErrCustomerInfoNotModifiable — изменение данных клиента вне статуса draft.
	ErrCustomerInfoNotModifiable = errors.New("customer info is not modifiable")
	// ErrDuplicateItem — позиция с таким product_id уже есть в заказе.
	ErrDuplicateItem = errors.New("order already contains item for this product")
	// ErrItemNotFound — позиция с таким product_id в заказе отсутствует.
	ErrItemNotFound = errors.New("order item not found")
	// ErrInvalidMoney — нарушение инвариантов денежного значения.
	ErrInvalidMoney = errors.New("invalid money value")
	// ErrCurrencyMismatch — операция над суммами в разных валютах.
	ErrCurrencyMismatch = errors.New("currency mismatch")
	// ErrInvalidQuantity — недопустимое количество.
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrInvalidAddress — неполный адрес доставки.
	ErrInvalidAddress = errors.New("invalid address")
	// ErrInvalidCustomerInfo — неполные данные клиента.
	ErrInvalidCustomerInfo = errors.New("invalid customer info")
	// ErrProductNameRequired — пустое имя товара при создании или обновлении.
	ErrProductNameRequired = errors.New("product name is required")
	// ErrCustomerRequired — заказ без идентификатора клиента.
	ErrCustomerRequired = errors.New("customer_id is required")
	// ErrShippingAddressRequired — заказ без адреса доставки.
	ErrShippingAddressRequired = errors.New("shipping address is required")
	// ErrEmptyOrder — попытка отправить заказ без позиций.
	ErrEmptyOrder = errors.New("order must contain at least one item")
	// ErrSubmitRequired — переход draft → pending разрешён только через submit;
	// generic-обновление статуса его выполнять не может.
	ErrSubmitRequired = errors.New("transition to pending is allowed only via submit")
	// ErrBelowMinimumOrderAmount — сумма заказа ниже настроенного порога.
	ErrBelowMinimumOrderAmount = errors.New("order total is below minimum order amount")
	// ErrProductNotFound — товар не найден (в репозитории или через ProductPort).
	ErrProductNotFound = errors.New("product not found")
	// ErrProductNotAvailable — товар найден, но недоступен для покупки.
	ErrProductNotAvailable = errors.New("product is not available for purchase")
	// ErrOrderNotFound — заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrSKURequired — пустой SKU при создании товара.
	ErrSKURequired = errors.New("product sku is required")
	// ErrSKUAlreadyExists — нарушение глобальной уникальности SKU.
	ErrSKUAlreadyExists = errors.New("product sku already exists")
	// ErrVersionConflict — конфликт optimistic locking при сохранении агрегата.
	ErrVersionConflict = errors.New("aggregate version conflict")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// IsVersionConflict проверяет, является ли ошибка конфликтом версий.
// Это единственный retryable-класс: вызывающий может перечитать агрегат
// и повторить операцию.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrVersionConflict)
}

// IsNotFound проверяет, является ли ошибка промахом поиска агрегата.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound) || errors.Is(err, ErrProductNotFound)
}

var validationErrors = []error{
	ErrInvalidStatusTransition,
	ErrOrderNotModifiable,
	ErrCustomerInfoNotModifiable,
	ErrDuplicateItem,
	ErrItemNotFound,
	ErrInvalidMoney,
	ErrCurrencyMismatch,
	ErrInvalidQuantity,
	ErrInvalidAddress,
	ErrInvalidCustomerInfo,
	ErrProductNameRequired,
	ErrCustomerRequired,
	ErrShippingAddressRequired,
	ErrEmptyOrder,
	ErrSubmitRequired,
	ErrBelowMinimumOrderAmount,
	ErrProductNotAvailable,
	ErrSKURequired,
	ErrSKUAlreadyExists,
}

// IsDomainValidation сообщает, относится ли ошибка к детерминированным доменным
// отказам. Такие ошибки не ретраятся и доходят до вызывающего без изменений.
func IsDomainValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
