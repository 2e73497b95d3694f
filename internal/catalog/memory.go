package catalog

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/domain/product"
)

// Memory is a read-only product repository over a loaded catalog. It keeps
// the order of the catalog file.
type Memory struct {
	products []product.Product
	byID     map[string]int
}

var _ product.Repository = (*Memory)(nil)

// NewMemory indexes products. Later duplicates shadow earlier ones.
func NewMemory(products []product.Product) *Memory {
	m := &Memory{
		products: products,
		byID:     make(map[string]int, len(products)),
	}
	for i, p := range products {
		m.byID[p.ID] = i
	}
	return m
}

// List returns every product in catalog order.
func (m *Memory) List(_ context.Context) ([]product.Product, error) {
	out := make([]product.Product, len(m.products))
	copy(out, m.products)
	return out, nil
}

// GetByID returns the product with id or product.ErrNotFound.
func (m *Memory) GetByID(_ context.Context, id string) (*product.Product, error) {
	i, ok := m.byID[id]
	if !ok {
		return nil, errors.Wrapf(product.ErrNotFound, "id %q", id)
	}
	p := m.products[i]
	return &p, nil
}
