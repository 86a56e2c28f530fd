package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/matcha-storefront/internal/cart"
	"github.com/fjod/matcha-storefront/internal/catalog"
	"github.com/fjod/matcha-storefront/internal/checkout"
	"github.com/fjod/matcha-storefront/internal/orders"
	"github.com/fjod/matcha-storefront/internal/store"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondErrorDetails(w, status, code, message, "")
}

// respondErrorDetails adds the underlying error text next to the shopper-facing message.
func respondErrorDetails(w http.ResponseWriter, status int, code, message, details string) {
	respondJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}

// handleDomainError maps core errors to HTTP status codes.
func handleDomainError(w http.ResponseWriter, err error) {
	var verr *checkout.ValidationError
	if errors.As(err, &verr) {
		respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:  "please correct the highlighted fields",
			Code:   "validation_failed",
			Fields: verr.Fields,
		})
		return
	}

	var (
		status  int
		code    string
		message string
	)
	switch {
	case errors.Is(err, cart.ErrInvalidProduct), errors.Is(err, catalog.ErrProductNotFound):
		status, code, message = http.StatusNotFound, "product_not_found", "product not found"
	case errors.Is(err, orders.ErrOrderNotFound):
		status, code, message = http.StatusNotFound, "order_not_found", "order not found"
	case errors.Is(err, checkout.ErrEmptyCart):
		status, code, message = http.StatusConflict, "empty_cart", "your cart is empty"
	case errors.Is(err, checkout.ErrIllegalTransition):
		status, code, message = http.StatusConflict, "illegal_transition", "this checkout step is not available now"
	case errors.Is(err, checkout.ErrNoOrder):
		status, code, message = http.StatusConflict, "no_order", "there is no order in progress"
	case errors.Is(err, store.ErrStoreUnavailable):
		status, code, message = http.StatusServiceUnavailable, "store_unavailable", "storage is unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		status, code, message = http.StatusGatewayTimeout, "timeout", "request timed out"
	default:
		zap.L().Error("unhandled error", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	respondErrorDetails(w, status, code, message, err.Error())
}
