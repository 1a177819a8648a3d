package http

import (
	"time"

	"github.com/sergeybelanov/shop/internal/domain"
)

// MoneyDTO передаёт денежные значения строками, чтобы клиенты не теряли
// точность на float-представлении.
type MoneyDTO struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

func moneyDTO(m domain.Money) MoneyDTO {
	return MoneyDTO{
		Amount:   m.Amount().StringFixed(2),
		Currency: m.Currency(),
	}
}

// AddressDTO — адрес доставки в запросах и ответах.
type AddressDTO struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}

func addressDTO(a domain.Address) AddressDTO {
	return AddressDTO{
		Street:  a.Street,
		City:    a.City,
		State:   a.State,
		ZipCode: a.ZipCode,
		Country: a.Country,
	}
}

// CustomerInfoDTO — контактные данные клиента.
type CustomerInfoDTO struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// ProductResponse — представление товара в API.
type ProductResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       MoneyDTO `json:"price"`
	SKU         string   `json:"sku"`
	Status      string   `json:"status"`
	Version     int64    `json:"version"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

func productResponse(p domain.Product) ProductResponse {
	return ProductResponse{
		ID:          string(p.ID),
		Name:        p.Name,
		Description: p.Description,
		Price:       moneyDTO(p.Price),
		SKU:         p.SKU,
		Status:      string(p.Status),
		Version:     p.Version,
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// OrderItemResponse — позиция заказа в API.
type OrderItemResponse struct {
	ID          string   `json:"id"`
	ProductID   string   `json:"product_id"`
	ProductName string   `json:"product_name"`
	UnitPrice   MoneyDTO `json:"unit_price"`
	Quantity    int      `json:"quantity"`
	Subtotal    MoneyDTO `json:"subtotal"`
}

// OrderResponse — представление заказа в API.
type OrderResponse struct {
	ID                 string              `json:"id"`
	CustomerID         string              `json:"customer_id"`
	OrderNumber        string              `json:"order_number,omitempty"`
	Customer           *CustomerInfoDTO    `json:"customer,omitempty"`
	ShippingAddress    AddressDTO          `json:"shipping_address"`
	Items              []OrderItemResponse `json:"items"`
	Status             string              `json:"status"`
	TotalAmount        MoneyDTO            `json:"total_amount"`
	CancellationReason string              `json:"cancellation_reason,omitempty"`
	Version            int64               `json:"version"`
	CreatedAt          string              `json:"created_at"`
	UpdatedAt          string              `json:"updated_at"`
}

func orderResponse(o domain.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemResponse{
			ID:          string(item.ID),
			ProductID:   string(item.ProductID),
			ProductName: item.ProductName,
			UnitPrice:   moneyDTO(item.UnitPrice),
			Quantity:    item.Quantity.Value(),
			Subtotal:    moneyDTO(item.Subtotal()),
		})
	}

	var customer *CustomerInfoDTO
	if o.CustomerInfo != nil {
		customer = &CustomerInfoDTO{
			Name:  o.CustomerInfo.Name,
			Email: o.CustomerInfo.Email,
			Phone: o.CustomerInfo.Phone,
		}
	}

	total, err := o.TotalAmount()
	if err != nil {
		// Позиции заказа всегда в одной валюте, сюда попасть нельзя.
		total = domain.Money{}
	}

	return OrderResponse{
		ID:                 string(o.ID),
		CustomerID:         string(o.CustomerID),
		OrderNumber:        o.OrderNumber,
		Customer:           customer,
		ShippingAddress:    addressDTO(o.ShippingAddress),
		Items:              items,
		Status:             string(o.Status),
		TotalAmount:        moneyDTO(total),
		CancellationReason: o.CancellationReason,
		Version:            o.Version,
		CreatedAt:          o.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:          o.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// StatusChangeResponse — запись истории переходов заказа.
type StatusChangeResponse struct {
	From       string `json:"from"`
	To         string `json:"to"`
	Reason     string `json:"reason,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

func statusHistoryResponse(changes []domain.StatusChange) []StatusChangeResponse {
	out := make([]StatusChangeResponse, 0, len(changes))
	for _, c := range changes {
		out = append(out, StatusChangeResponse{
			From:       string(c.From),
			To:         string(c.To),
			Reason:     c.Reason,
			OccurredAt: c.Occurred.UTC().Format(time.RFC3339),
		})
	}
	return out
}
