package memory

import (
	"sort"
	"sync"

	"github.com/sergeybelanov/shop/internal/domain"
)

// productRepositoryInMemory — in-memory реализация ProductRepository
// для локальной разработки и тестов.
type productRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[domain.ProductID]domain.Product
	// skuIndex поддерживает глобальную уникальность SKU.
	skuIndex map[string]domain.ProductID
}

// NewProductRepository возвращает in-memory репозиторий товаров.
func NewProductRepository() domain.ProductRepository {
	return &productRepositoryInMemory{
		items:    make(map[domain.ProductID]domain.Product),
		skuIndex: make(map[string]domain.ProductID),
	}
}

// Create сохраняет новый товар, проверяя занятость ID и SKU.
func (r *productRepositoryInMemory) Create(product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[product.ID]; exists {
		return domain.ErrVersionConflict
	}
	if _, taken := r.skuIndex[product.SKU]; taken {
		return domain.ErrSKUAlreadyExists
	}

	r.items[product.ID] = cloneProduct(product)
	r.skuIndex[product.SKU] = product.ID
	return nil
}

// Get возвращает товар или ErrProductNotFound.
func (r *productRepositoryInMemory) Get(id domain.ProductID) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.items[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return cloneProduct(product), nil
}

// GetBySKU возвращает товар по SKU или ErrProductNotFound.
func (r *productRepositoryInMemory) GetBySKU(sku string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.skuIndex[sku]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return cloneProduct(r.items[id]), nil
}

// List возвращает все товары, отсортированные по дате создания.
func (r *productRepositoryInMemory) List() ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Product, 0, len(r.items))
	for _, product := range r.items {
		result = append(result, cloneProduct(product))
	}
	sortProducts(result)
	return result, nil
}

// ListByStatus возвращает товары в заданном статусе.
func (r *productRepositoryInMemory) ListByStatus(status domain.ProductStatus) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Product, 0)
	for _, product := range r.items {
		if product.Status != status {
			continue
		}
		result = append(result, cloneProduct(product))
	}
	sortProducts(result)
	return result, nil
}

// ExistsBySKU проверяет занятость SKU.
func (r *productRepositoryInMemory) ExistsBySKU(sku string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.skuIndex[sku]
	return ok, nil
}

// Save применяет обновления с optimistic locking: версия в хранилище должна
// совпадать с версией сохраняемого агрегата.
func (r *productRepositoryInMemory) Save(product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[product.ID]
	if !ok {
		return domain.ErrProductNotFound
	}
	if existing.Version != product.Version {
		return domain.ErrVersionConflict
	}

	stored := cloneProduct(product)
	stored.Version++
	r.items[product.ID] = stored
	return nil
}

// Delete удаляет товар вместе с записью в SKU-индексе.
func (r *productRepositoryInMemory) Delete(id domain.ProductID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.items[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	delete(r.items, id)
	delete(r.skuIndex, product.SKU)
	return nil
}

func sortProducts(products []domain.Product) {
	sort.Slice(products, func(i, j int) bool {
		if products[i].CreatedAt.Equal(products[j].CreatedAt) {
			return products[i].ID < products[j].ID
		}
		return products[i].CreatedAt.Before(products[j].CreatedAt)
	})
}

// cloneProduct возвращает копию без накопленных событий, чтобы избежать
// непредсказуемых мутаций извне.
func cloneProduct(product domain.Product) domain.Product {
	clone := product
	clone.PullEvents()
	return clone
}

var _ domain.ProductRepository = (*productRepositoryInMemory)(nil)
