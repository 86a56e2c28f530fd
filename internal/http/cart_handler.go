package http

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/matcha-storefront/internal/service"
	"github.com/go-chi/chi/v5"
)

const maxSetQuantity = 99

type CartHandler struct {
	storefront Storefront
	timeout    time.Duration
}

func NewCartHandler(s Storefront, timeout time.Duration) *CartHandler {
	return &CartHandler{storefront: s, timeout: timeout}
}

type AddItemRequestDTO struct {
	ProductID string          `json:"product_id"`
	Quantity  json.RawMessage `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity json.RawMessage `json:"quantity"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.storefront.View())
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErrorDetails(w, http.StatusBadRequest, "invalid_request", "invalid JSON body", err.Error())
		return
	}
	if strings.TrimSpace(req.ProductID) == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	quantity, ok := parseQuantity(req.Quantity)
	if !ok {
		quantity = 1
	}

	view, err := h.storefront.Dispatch(ctx, service.AddItem{ProductID: req.ProductID, Quantity: quantity})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, view)
}

// UpdateQuantity sets an absolute quantity. A number of zero or less removes the
// line; a missing or non-numeric quantity is read as 1.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID := chi.URLParam(r, "product_id")

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErrorDetails(w, http.StatusBadRequest, "invalid_request", "invalid JSON body", err.Error())
		return
	}

	quantity, ok := parseQuantity(req.Quantity)
	if !ok {
		quantity = 1
	}
	if quantity > maxSetQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	view, err := h.storefront.Dispatch(ctx, service.SetQuantity{ProductID: productID, Quantity: quantity})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	view, err := h.storefront.Dispatch(ctx, service.RemoveItem{ProductID: chi.URLParam(r, "product_id")})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// parseQuantity reads a JSON number, truncating fractions, or the leading integer
// of a string ("3 bags" is 3, "1e2" is 1). ok is false when the value is absent
// or carries no number at all.
func parseQuantity(raw json.RawMessage) (quantity int, ok bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		return leadingInt(strings.TrimSpace(s))
	}

	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return clampInt(f), true
}

func leadingInt(s string) (int, bool) {
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return clampInt(n), true
}

func clampInt(f float64) int {
	switch {
	case f > math.MaxInt32:
		return math.MaxInt32
	case f < math.MinInt32:
		return math.MinInt32
	}
	return int(f)
}
