package domain

import (
	"fmt"
	"strings"
)

// CustomerInfo — контактные данные клиента, зафиксированные в заказе.
type CustomerInfo struct {
	Name  string
	Email string
	Phone string
}

// NewCustomerInfo создаёт данные клиента; имя и корректный email обязательны.
func NewCustomerInfo(name, email, phone string) (CustomerInfo, error) {
	if strings.TrimSpace(name) == "" {
		return CustomerInfo{}, fmt.Errorf("%w: name is required", ErrInvalidCustomerInfo)
	}
	if !strings.Contains(email, "@") {
		return CustomerInfo{}, fmt.Errorf("%w: email is malformed", ErrInvalidCustomerInfo)
	}
	return CustomerInfo{Name: name, Email: email, Phone: phone}, nil
}
