// Package http exposes the storefront over a local JSON API.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/matcha-storefront/internal/catalog"
	"github.com/fjod/matcha-storefront/internal/domain"
	"github.com/fjod/matcha-storefront/internal/events"
	"github.com/fjod/matcha-storefront/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Storefront is the dispatcher surface the handlers drive.
type Storefront interface {
	Dispatch(ctx context.Context, cmd service.Command) (service.View, error)
	View() service.View
	Orders(ctx context.Context) ([]domain.Order, error)
	Order(ctx context.Context, id string) (domain.Order, error)
}

type Notifications interface {
	Active() []events.Notification
}

type Deps struct {
	Storefront    Storefront
	Catalog       catalog.Provider
	Notifications Notifications
	Log           *zap.Logger
	Timeout       time.Duration
}

func NewRouter(d Deps) http.Handler {
	if d.Timeout <= 0 {
		d.Timeout = 30 * time.Second
	}

	catalogHandler := NewCatalogHandler(d.Catalog, d.Timeout)
	cartHandler := NewCartHandler(d.Storefront, d.Timeout)
	checkoutHandler := NewCheckoutHandler(d.Storefront, d.Timeout)
	ordersHandler := NewOrdersHandler(d.Storefront, d.Timeout)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(RequestLogger(d.Log))
	r.Use(middleware.Timeout(d.Timeout))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/products", catalogHandler.ListProducts)
			r.Get("/products/featured", catalogHandler.Featured)
			r.Get("/products/{id}", catalogHandler.GetProduct)
			r.Get("/categories", catalogHandler.Categories)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", checkoutHandler.Get)
			r.Post("/", checkoutHandler.Begin)
			r.Post("/submit", checkoutHandler.Submit)
			r.Post("/confirm", checkoutHandler.Confirm)
			r.Post("/close", checkoutHandler.Close)
			r.Post("/order/copy", checkoutHandler.CopyOrderNumber)
		})

		r.Get("/orders", ordersHandler.List)
		r.Get("/orders/{id}", ordersHandler.Get)

		r.Get("/notifications", func(w http.ResponseWriter, r *http.Request) {
			active := []events.Notification{}
			if d.Notifications != nil {
				active = d.Notifications.Active()
			}
			respondJSON(w, http.StatusOK, active)
		})
	})

	return otelhttp.NewHandler(r, "storefront")
}
