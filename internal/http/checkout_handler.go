package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/fjod/matcha-storefront/internal/checkout"
	"github.com/fjod/matcha-storefront/internal/service"
)

type CheckoutHandler struct {
	storefront Storefront
	timeout    time.Duration
}

func NewCheckoutHandler(s Storefront, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{storefront: s, timeout: timeout}
}

type SubmitRequestDTO struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Notes string `json:"notes"`
}

type CopyOrderResponseDTO struct {
	OrderID string `json:"order_id"`
}

func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.storefront.View())
}

func (h *CheckoutHandler) Begin(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, service.BeginCheckout{})
}

func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondErrorDetails(w, http.StatusBadRequest, "invalid_request", "invalid JSON body", err.Error())
		return
	}

	h.dispatch(w, r, service.SubmitCheckout{Form: checkout.CustomerForm{
		Name:  req.Name,
		Email: req.Email,
		Notes: req.Notes,
	}})
}

func (h *CheckoutHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, service.ConfirmPayment{})
}

func (h *CheckoutHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, service.CloseCheckout{})
}

func (h *CheckoutHandler) CopyOrderNumber(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	view, err := h.storefront.Dispatch(ctx, service.CopyOrderNumber{})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, CopyOrderResponseDTO{OrderID: view.CopiedOrderID})
}

func (h *CheckoutHandler) dispatch(w http.ResponseWriter, r *http.Request, cmd service.Command) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	view, err := h.storefront.Dispatch(ctx, cmd)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}
