package catalog

import (
	"context"

	"storefront-core/internal/models"
)

// Provider supplies the product list. The state engine treats the catalog
// as read-only and joins against it by product ID at read time.
type Provider interface {
	List(ctx context.Context) ([]models.Product, error)
}

// StaticProvider serves a fixed in-memory product list.
type StaticProvider struct {
	products []models.Product
}

// NewStaticProvider creates a provider over the given products. The slice
// is copied so later caller mutations cannot leak into the catalog.
func NewStaticProvider(products []models.Product) *StaticProvider {
	cp := make([]models.Product, len(products))
	copy(cp, products)
	return &StaticProvider{products: cp}
}

// List returns the catalog in its fixed order.
func (p *StaticProvider) List(_ context.Context) ([]models.Product, error) {
	cp := make([]models.Product, len(p.products))
	copy(cp, p.products)
	return cp, nil
}

// ByID builds a product index keyed by ID for join operations.
func ByID(products []models.Product) map[int64]models.Product {
	index := make(map[int64]models.Product, len(products))
	for _, p := range products {
		index[p.ID] = p
	}
	return index
}
