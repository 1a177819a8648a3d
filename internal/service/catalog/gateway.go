package catalog

import "github.com/sergeybelanov/shop/internal/domain"

// ProductGateway реализует ProductPort поверх репозитория каталога.
// Это in-process граница между контекстами: Order-контекст видит только
// snapshot товара, а не агрегат.
type ProductGateway struct {
	products domain.ProductRepository
}

// NewProductGateway создаёт адаптер ProductPort.
func NewProductGateway(products domain.ProductRepository) *ProductGateway {
	return &ProductGateway{products: products}
}

// FindProduct возвращает snapshot товара или ErrProductNotFound.
func (g *ProductGateway) FindProduct(id domain.ProductID) (domain.ProductSnapshot, error) {
	product, err := g.products.Get(id)
	if err != nil {
		return domain.ProductSnapshot{}, err
	}
	return domain.ProductSnapshot{
		ProductID:            product.ID,
		Name:                 product.Name,
		Price:                product.Price,
		AvailableForPurchase: product.AvailableForPurchase(),
	}, nil
}

// IsProductAvailable сообщает доступность товара; промах поиска — ошибка,
// а не false: вызывающий обязан различать эти случаи.
func (g *ProductGateway) IsProductAvailable(id domain.ProductID) (bool, error) {
	product, err := g.products.Get(id)
	if err != nil {
		return false, err
	}
	return product.AvailableForPurchase(), nil
}

// GetProductPrice возвращает текущую цену товара.
func (g *ProductGateway) GetProductPrice(id domain.ProductID) (domain.Money, error) {
	product, err := g.products.Get(id)
	if err != nil {
		return domain.Money{}, err
	}
	return product.Price, nil
}

var _ domain.ProductPort = (*ProductGateway)(nil)
