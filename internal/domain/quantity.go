package domain

import "fmt"

// Quantity — неотрицательное целое количество. Иммутабельно: арифметика
// возвращает новое значение.
type Quantity struct {
	value int
}

// NewQuantity создаёт количество; отрицательные значения запрещены.
func NewQuantity(value int) (Quantity, error) {
	if value < 0 {
		return Quantity{}, fmt.Errorf("%w: must be non-negative", ErrInvalidQuantity)
	}
	return Quantity{value: value}, nil
}

// Value возвращает числовое значение.
func (q Quantity) Value() int { return q.value }

// IsZero сообщает, что количество нулевое.
func (q Quantity) IsZero() bool { return q.value == 0 }

// Add возвращает сумму количеств.
func (q Quantity) Add(other Quantity) Quantity {
	return Quantity{value: q.value + other.value}
}

// Subtract возвращает разность; уход в минус запрещён.
func (q Quantity) Subtract(other Quantity) (Quantity, error) {
	if other.value > q.value {
		return Quantity{}, fmt.Errorf("%w: result must be non-negative", ErrInvalidQuantity)
	}
	return Quantity{value: q.value - other.value}, nil
}

func (q Quantity) String() string { return fmt.Sprintf("%d", q.value) }
