package domain

import (
	"fmt"
	"strings"
)

// Address — иммутабельный адрес доставки.
type Address struct {
	Street  string
	City    string
	State   string
	ZipCode string
	Country string
}

// NewAddress создаёт адрес; улица, город, индекс и страна обязательны.
func NewAddress(street, city, state, zipCode, country string) (Address, error) {
	for name, v := range map[string]string{
		"street":  street,
		"city":    city,
		"zipCode": zipCode,
		"country": country,
	} {
		if strings.TrimSpace(v) == "" {
			return Address{}, fmt.Errorf("%w: %s is required", ErrInvalidAddress, name)
		}
	}
	return Address{
		Street:  street,
		City:    city,
		State:   state,
		ZipCode: zipCode,
		Country: country,
	}, nil
}

// IsZero сообщает, что адрес не задан.
func (a Address) IsZero() bool { return a == Address{} }

// FullAddress собирает адрес в одну строку.
func (a Address) FullAddress() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{a.Street, a.City, a.State, a.ZipCode, a.Country} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
