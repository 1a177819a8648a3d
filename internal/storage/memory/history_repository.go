package memory

import (
	"sync"

	"github.com/sergeybelanov/shop/internal/domain"
)

// historyRepositoryInMemory хранит историю переходов статусов по заказам.
type historyRepositoryInMemory struct {
	mu      sync.RWMutex
	entries map[domain.OrderID][]domain.StatusChange
}

// NewStatusHistoryRepository создаёт in-memory реализацию истории статусов.
func NewStatusHistoryRepository() domain.StatusHistoryRepository {
	return &historyRepositoryInMemory{
		entries: make(map[domain.OrderID][]domain.StatusChange),
	}
}

// Append добавляет запись в конец истории заказа.
func (r *historyRepositoryInMemory) Append(change domain.StatusChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[change.OrderID] = append(r.entries[change.OrderID], change)
	return nil
}

// List возвращает историю заказа в порядке добавления.
func (r *historyRepositoryInMemory) List(orderID domain.OrderID) ([]domain.StatusChange, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.entries[orderID]
	result := make([]domain.StatusChange, len(entries))
	copy(result, entries)
	return result, nil
}

var _ domain.StatusHistoryRepository = (*historyRepositoryInMemory)(nil)
