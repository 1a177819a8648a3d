package domain

import (
	"errors"
	"time"
)

// Ошибки идемпотентной обработки запросов.
var (
	// ErrIdempotencyConflict — ключ уже занят запросом с другим содержимым.
	ErrIdempotencyConflict = errors.New("idempotency key conflict")
	// ErrIdempotencyInProgress — запрос с этим ключом ещё обрабатывается.
	ErrIdempotencyInProgress = errors.New("idempotency key is being processed")
	// ErrIdempotencyNotFound — записи по ключу нет.
	ErrIdempotencyNotFound = errors.New("idempotency record not found")
)

// IdempotencyStatus описывает жизненный цикл ключа идемпотентности.
type IdempotencyStatus string

const (
	// IdempotencyStatusProcessing — запрос принят и обрабатывается.
	IdempotencyStatusProcessing IdempotencyStatus = "processing"
	// IdempotencyStatusDone — запрос завершён, ответ сохранён.
	IdempotencyStatusDone IdempotencyStatus = "done"
	// IdempotencyStatusFailed — обработка завершилась ошибкой.
	IdempotencyStatusFailed IdempotencyStatus = "failed"
)

// Valid проверяет, что статус относится к поддерживаемым значениям.
func (s IdempotencyStatus) Valid() bool {
	switch s {
	case IdempotencyStatusProcessing, IdempotencyStatusDone, IdempotencyStatusFailed:
		return true
	default:
		return false
	}
}

// IdempotencyRecord хранит состояние обработки запроса с idempotency-key.
// Используется HTTP-слоем для безопасных повторов создающих запросов.
type IdempotencyRecord struct {
	Key          string
	RequestHash  string
	ResponseBody []byte
	HTTPStatus   int
	Status       IdempotencyStatus
	TTLAt        time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
