package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/matcha-storefront/internal/catalog"
	"github.com/fjod/matcha-storefront/internal/domain"
	"github.com/go-chi/chi/v5"
)

type CatalogHandler struct {
	catalog catalog.Provider
	timeout time.Duration
}

func NewCatalogHandler(c catalog.Provider, timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{catalog: c, timeout: timeout}
}

type ProductDTO struct {
	domain.Product
	DisplayPrice string `json:"display_price"`
}

func toProductDTOs(products []domain.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		out = append(out, ProductDTO{Product: p, DisplayPrice: domain.FormatPrice(p.Price)})
	}
	return out
}

// ListProducts honours ?category=, where "all" or an empty value means every product.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	category := r.URL.Query().Get("category")
	var (
		products []domain.Product
		err      error
	)
	if category == "" {
		products, err = h.catalog.GetAllProducts(ctx)
	} else {
		products, err = h.catalog.GetProductsByCategory(ctx, category)
	}
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toProductDTOs(products))
}

func (h *CatalogHandler) Featured(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.catalog.GetFeaturedProducts(ctx)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toProductDTOs(products))
}

func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	product, err := h.catalog.GetProductByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ProductDTO{Product: product, DisplayPrice: domain.FormatPrice(product.Price)})
}

func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	categories, err := h.catalog.GetCategories(ctx)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}
