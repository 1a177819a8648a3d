package domain

// ProductRepository описывает требования к хранилищу товаров.
type ProductRepository interface {
	// Create сохраняет новый товар. ErrSKUAlreadyExists при конфликте SKU,
	// ErrVersionConflict если ID уже занят.
	Create(product Product) error
	// Get возвращает товар или ErrProductNotFound.
	Get(id ProductID) (Product, error)
	// GetBySKU возвращает товар по SKU или ErrProductNotFound.
	GetBySKU(sku string) (Product, error)
	// List возвращает все товары.
	List() ([]Product, error)
	// ListByStatus возвращает товары в заданном статусе.
	ListByStatus(status ProductStatus) ([]Product, error)
	// ExistsBySKU проверяет занятость SKU.
	ExistsBySKU(sku string) (bool, error)
	// Save применяет обновления с учётом optimistic locking.
	Save(product Product) error
	// Delete удаляет товар по ID; ErrProductNotFound если записи нет.
	Delete(id ProductID) error
}

// OrderRepository описывает требования к хранилищу заказов.
// Save атомарен на уровне агрегата: строка заказа и позиции сохраняются вместе.
type OrderRepository interface {
	// Create сохраняет новый заказ вместе с позициями.
	Create(order Order) error
	// Get возвращает заказ или ErrOrderNotFound.
	Get(id OrderID) (Order, error)
	// List возвращает все заказы.
	List() ([]Order, error)
	// ListByCustomer возвращает заказы клиента, ограничивая выборку limit (если > 0).
	ListByCustomer(customerID CustomerID, limit int) ([]Order, error)
	// ListByStatus возвращает заказы в заданном статусе.
	ListByStatus(status OrderStatus) ([]Order, error)
	// Exists проверяет существование заказа.
	Exists(id OrderID) (bool, error)
	// Save применяет обновления с учётом optimistic locking.
	Save(order Order) error
	// Delete удаляет заказ вместе с позициями; ErrOrderNotFound если записи нет.
	Delete(id OrderID) error
}
