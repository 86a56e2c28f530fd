// Package catalog supplies the read-only product and category records the cart validates against.
package catalog

import (
	"context"
	"errors"

	"github.com/fjod/matcha-storefront/internal/domain"
)

// CategoryAll selects every product in GetProductsByCategory.
const CategoryAll = "all"

var ErrProductNotFound = errors.New("product not found")

// Provider is the catalog as seen by the cart and checkout. Records never change during a session.
type Provider interface {
	// GetProductByID returns ErrProductNotFound for unknown ids.
	GetProductByID(ctx context.Context, id string) (domain.Product, error)
	GetAllProducts(ctx context.Context) ([]domain.Product, error)
	// GetProductsByCategory returns every product for CategoryAll or an empty id.
	GetProductsByCategory(ctx context.Context, categoryID string) ([]domain.Product, error)
	GetFeaturedProducts(ctx context.Context) ([]domain.Product, error)
	GetCategories(ctx context.Context) ([]domain.Category, error)
}

func filterByCategory(products []domain.Product, categoryID string) []domain.Product {
	if categoryID == "" || categoryID == CategoryAll {
		return products
	}
	out := make([]domain.Product, 0)
	for _, p := range products {
		if p.Category == categoryID {
			out = append(out, p)
		}
	}
	return out
}

func filterFeatured(products []domain.Product) []domain.Product {
	out := make([]domain.Product, 0)
	for _, p := range products {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out
}
