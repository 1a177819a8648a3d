package domain

import "github.com/google/uuid"

// ProductID — идентификатор товара в каталоге.
type ProductID string

// OrderID — идентификатор заказа.
type OrderID string

// OrderItemID — идентификатор позиции внутри заказа.
type OrderItemID string

// CustomerID — идентификатор клиента.
type CustomerID string

// NewProductID генерирует новый уникальный идентификатор товара.
func NewProductID() ProductID { return ProductID(uuid.NewString()) }

// NewOrderID генерирует новый уникальный идентификатор заказа.
func NewOrderID() OrderID { return OrderID(uuid.NewString()) }

// NewOrderItemID генерирует новый уникальный идентификатор позиции заказа.
func NewOrderItemID() OrderItemID { return OrderItemID(uuid.NewString()) }

// NewCustomerID генерирует новый уникальный идентификатор клиента.
func NewCustomerID() CustomerID { return CustomerID(uuid.NewString()) }

func (id ProductID) String() string   { return string(id) }
func (id OrderID) String() string     { return string(id) }
func (id OrderItemID) String() string { return string(id) }
func (id CustomerID) String() string  { return string(id) }

func (id ProductID) IsEmpty() bool  { return id == "" }
func (id OrderID) IsEmpty() bool    { return id == "" }
func (id CustomerID) IsEmpty() bool { return id == "" }
