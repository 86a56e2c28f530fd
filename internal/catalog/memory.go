package catalog

import (
	"context"
	"fmt"

	"github.com/fjod/matcha-storefront/internal/domain"
)

// Memory serves a fixed product list held in memory.
type Memory struct {
	categories []domain.Category
	products   []domain.Product
	byID       map[string]domain.Product
}

func NewMemory(categories []domain.Category, products []domain.Product) *Memory {
	m := &Memory{
		categories: append([]domain.Category(nil), categories...),
		products:   append([]domain.Product(nil), products...),
		byID:       make(map[string]domain.Product, len(products)),
	}
	for _, p := range m.products {
		m.byID[p.ID] = p
	}
	return m
}

// NewDefault returns the storefront's own catalog.
func NewDefault() *Memory {
	return NewMemory(SeedCategories(), SeedProducts())
}

func (m *Memory) GetProductByID(_ context.Context, id string) (domain.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return domain.Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	return p, nil
}

func (m *Memory) GetAllProducts(_ context.Context) ([]domain.Product, error) {
	return append([]domain.Product(nil), m.products...), nil
}

func (m *Memory) GetProductsByCategory(_ context.Context, categoryID string) ([]domain.Product, error) {
	return append([]domain.Product(nil), filterByCategory(m.products, categoryID)...), nil
}

func (m *Memory) GetFeaturedProducts(_ context.Context) ([]domain.Product, error) {
	return filterFeatured(m.products), nil
}

func (m *Memory) GetCategories(_ context.Context) ([]domain.Category, error) {
	return append([]domain.Category(nil), m.categories...), nil
}
