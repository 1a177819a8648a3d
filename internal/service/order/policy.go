package order

import (
	"fmt"

	"github.com/sergeybelanov/shop/internal/domain"
)

// MinOrderPolicy — доменный сервис минимальной суммы заказа.
// Порог приходит из конфигурации приложения.
type MinOrderPolicy struct {
	threshold domain.Money
}

// NewMinOrderPolicy создаёт политику с заданным порогом.
func NewMinOrderPolicy(threshold domain.Money) *MinOrderPolicy {
	return &MinOrderPolicy{threshold: threshold}
}

// Validate проверяет, что сумма заказа не ниже порога.
func (p *MinOrderPolicy) Validate(order *domain.Order) error {
	if p == nil || p.threshold.IsZero() {
		return nil
	}

	total, err := order.TotalAmount()
	if err != nil {
		return err
	}
	if total.Currency() == "" {
		// Пустой заказ: нулевая сумма в валюте порога.
		total = domain.ZeroMoney(p.threshold.Currency())
	}

	below, err := total.LessThan(p.threshold)
	if err != nil {
		return err
	}
	if below {
		return fmt.Errorf("%w: total %s, minimum %s", domain.ErrBelowMinimumOrderAmount, total, p.threshold)
	}
	return nil
}

// ShippingCalculator считает стоимость доставки заказа. Политика подключаемая:
// приложение может заменить реализацию без изменения сервиса заказов.
type ShippingCalculator interface {
	Calculate(order *domain.Order) (domain.Money, error)
}

// FlatRateShipping — базовая ставка плюс надбавка за каждую позицию;
// бесплатная доставка начиная с порога.
type FlatRateShipping struct {
	baseFee       domain.Money
	perItemFee    domain.Money
	freeThreshold domain.Money
}

// NewFlatRateShipping создаёт тарифную политику доставки.
func NewFlatRateShipping(baseFee, perItemFee, freeThreshold domain.Money) *FlatRateShipping {
	return &FlatRateShipping{
		baseFee:       baseFee,
		perItemFee:    perItemFee,
		freeThreshold: freeThreshold,
	}
}

// Calculate возвращает стоимость доставки для заказа.
func (c *FlatRateShipping) Calculate(order *domain.Order) (domain.Money, error) {
	total, err := order.TotalAmount()
	if err != nil {
		return domain.Money{}, err
	}
	if total.Currency() == "" {
		total = domain.ZeroMoney(c.baseFee.Currency())
	}

	if !c.freeThreshold.IsZero() {
		free, err := c.freeThreshold.LessThan(total)
		if err != nil {
			return domain.Money{}, err
		}
		if free || c.freeThreshold.Equals(total) {
			return domain.ZeroMoney(total.Currency()), nil
		}
	}

	var itemCount int64
	for _, item := range order.Items {
		itemCount += int64(item.Quantity.Value())
	}

	perItems, err := c.perItemFee.Multiply(itemCount)
	if err != nil {
		return domain.Money{}, err
	}
	return c.baseFee.Add(perItems)
}

var _ ShippingCalculator = (*FlatRateShipping)(nil)
