package domain

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// moneyScale — число знаков после запятой для всех денежных значений.
const moneyScale = 2

// Money — иммутабельное денежное значение: неотрицательная сумма с двумя
// знаками после запятой и код валюты ISO 4217. Сравнивается по значению.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// NewMoney создаёт Money, округляя сумму до двух знаков (half-up).
func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	if err := validateCurrency(currency); err != nil {
		return Money{}, err
	}
	rounded := amount.Round(moneyScale)
	if rounded.IsNegative() {
		return Money{}, fmt.Errorf("%w: amount must be non-negative", ErrInvalidMoney)
	}
	return Money{amount: rounded, currency: currency}, nil
}

// NewMoneyFromString парсит десятичную строку вида "10.99".
func NewMoneyFromString(amount, currency string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %v", ErrInvalidMoney, err)
	}
	return NewMoney(d, currency)
}

// NewMoneyFromFloat создаёт Money из float64 с округлением half-up до двух знаков.
func NewMoneyFromFloat(amount float64, currency string) (Money, error) {
	return NewMoney(decimal.NewFromFloat(amount), currency)
}

// ZeroMoney возвращает нулевую сумму в заданной валюте.
func ZeroMoney(currency string) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

func validateCurrency(currency string) error {
	if len(currency) != 3 {
		return fmt.Errorf("%w: currency must be a 3-letter ISO 4217 code", ErrInvalidMoney)
	}
	for _, r := range currency {
		if r < 'A' || r > 'Z' {
			return fmt.Errorf("%w: currency must be a 3-letter ISO 4217 code", ErrInvalidMoney)
		}
	}
	return nil
}

// Amount возвращает сумму как decimal.
func (m Money) Amount() decimal.Decimal { return m.amount }

// Currency возвращает код валюты.
func (m Money) Currency() string { return m.currency }

// IsZero сообщает, что значение нулевое или не инициализировано.
func (m Money) IsZero() bool { return m.amount.IsZero() }

// Add складывает суммы одной валюты.
func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Subtract вычитает сумму; отрицательный результат запрещён.
func (m Money) Subtract(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	result := m.amount.Sub(other.amount)
	if result.IsNegative() {
		return Money{}, fmt.Errorf("%w: subtraction result must be non-negative", ErrInvalidMoney)
	}
	return Money{amount: result, currency: m.currency}, nil
}

// Multiply умножает сумму на неотрицательный целый множитель.
func (m Money) Multiply(factor int64) (Money, error) {
	if factor < 0 {
		return Money{}, fmt.Errorf("%w: multiplier must be non-negative", ErrInvalidMoney)
	}
	product := m.amount.Mul(decimal.NewFromInt(factor)).Round(moneyScale)
	return Money{amount: product, currency: m.currency}, nil
}

// Equals сравнивает сумму и валюту.
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// LessThan сравнивает суммы одной валюты.
func (m Money) LessThan(other Money) (bool, error) {
	if err := m.sameCurrency(other); err != nil {
		return false, err
	}
	return m.amount.LessThan(other.amount), nil
}

func (m Money) sameCurrency(other Money) error {
	if m.currency != other.currency {
		return fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	return nil
}

// String форматирует значение как "10.50 USD".
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(moneyScale), m.currency)
}

type moneyJSON struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// MarshalJSON сериализует сумму как строку, чтобы не терять точность.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{
		Amount:   m.amount.StringFixed(moneyScale),
		Currency: m.currency,
	})
}

// UnmarshalJSON восстанавливает значение с проверкой инвариантов.
func (m *Money) UnmarshalJSON(data []byte) error {
	var raw moneyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewMoneyFromString(raw.Amount, raw.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
