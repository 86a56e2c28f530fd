// Package cart owns the session's shopping cart: its lines, their totals and their persistence.
package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fjod/matcha-storefront/internal/catalog"
	"github.com/fjod/matcha-storefront/internal/domain"
	"github.com/fjod/matcha-storefront/internal/events"
	"github.com/fjod/matcha-storefront/internal/store"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Engine is the single owner of the cart. Every mutation builds a new slice and
// swaps it in, so a snapshot taken earlier is never changed afterwards.
// Engine does no locking; callers serialize access.
type Engine struct {
	catalog catalog.Provider
	store   store.Store
	events  events.Publisher
	log     *zap.Logger

	lines []domain.CartLine
}

func NewEngine(c catalog.Provider, s store.Store, p events.Publisher, log *zap.Logger) *Engine {
	if p == nil {
		p = events.Discard{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		catalog: c,
		store:   s,
		events:  p,
		log:     log,
		lines:   []domain.CartLine{},
	}
}

// NormalizeQuantity coerces a non-positive quantity to 1.
func NormalizeQuantity(quantity int) int {
	if quantity <= 0 {
		return 1
	}
	return quantity
}

// Load replaces the in-memory cart with the stored one. A missing, unreadable or
// unparsable value leaves an empty cart.
func (e *Engine) Load(ctx context.Context) {
	e.lines = []domain.CartLine{}

	data, err := e.store.Get(ctx, store.KeyCart)
	if errors.Is(err, store.ErrNotFound) {
		return
	}
	if err != nil {
		e.log.Warn("cart load failed, starting empty", zap.Error(err))
		return
	}

	lines, dropped, err := decodeLines(data)
	if err != nil {
		e.log.Warn("stored cart is unparsable, starting empty", zap.Error(err))
		return
	}
	if dropped > 0 {
		e.log.Warn("invalid cart lines removed", zap.Int("dropped", dropped))
	}
	e.lines = lines
}

// Save writes the whole cart under the cart key.
func (e *Engine) Save(ctx context.Context) error {
	data, err := encodeLines(e.lines)
	if err != nil {
		return err
	}
	if err := e.store.Set(ctx, store.KeyCart, data); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// AddItem adds quantity units of a catalog product. An unknown product leaves the
// cart untouched, raises a notification and returns ErrInvalidProduct.
func (e *Engine) AddItem(ctx context.Context, productID string, quantity int) error {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		e.notify(MsgAddFailed)
		return fmt.Errorf("%w: product id is required", ErrInvalidProduct)
	}

	product, err := e.catalog.GetProductByID(ctx, productID)
	if err != nil {
		e.notify(MsgAddFailed)
		if errors.Is(err, catalog.ErrProductNotFound) {
			e.log.Info("add item rejected", zap.String("product_id", productID))
			return fmt.Errorf("%w: %s", ErrInvalidProduct, productID)
		}
		e.log.Error("catalog lookup failed", zap.String("product_id", productID), zap.Error(err))
		return fmt.Errorf("catalog lookup failed: %w", err)
	}

	quantity = NormalizeQuantity(quantity)
	next := domain.CloneLines(e.lines)
	if i := indexOf(next, productID); i >= 0 {
		next[i].Quantity += quantity
	} else {
		next = append(next, domain.CartLine{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  quantity,
			Image:     product.Image,
		})
	}
	e.lines = next

	e.persist(ctx)
	e.notify(fmt.Sprintf(msgAdded, quantity, product.Name))
	e.publishChanged()
	return nil
}

// RemoveItem drops the line for productID. It reports whether a line was removed;
// removing an absent product is a no-op and does not write to the store.
func (e *Engine) RemoveItem(ctx context.Context, productID string) bool {
	i := indexOf(e.lines, productID)
	if i < 0 {
		return false
	}

	next := make([]domain.CartLine, 0, len(e.lines)-1)
	next = append(next, e.lines[:i]...)
	next = append(next, e.lines[i+1:]...)
	e.lines = next

	e.persist(ctx)
	e.publishChanged()
	return true
}

// SetQuantity replaces a line's quantity. A quantity of zero or less removes the line.
// It reports whether the cart changed.
func (e *Engine) SetQuantity(ctx context.Context, productID string, quantity int) bool {
	if quantity <= 0 {
		return e.RemoveItem(ctx, productID)
	}

	i := indexOf(e.lines, productID)
	if i < 0 {
		return false
	}

	next := domain.CloneLines(e.lines)
	next[i].Quantity = quantity
	e.lines = next

	e.persist(ctx)
	e.publishChanged()
	return true
}

// Clear empties the cart and persists the empty cart.
func (e *Engine) Clear(ctx context.Context) {
	e.lines = []domain.CartLine{}
	e.persist(ctx)
	e.publishChanged()
}

// Validate reconciles the cart with the catalog. It drops lines without a product id
// or name and lines whose product is gone, merges duplicate lines, and coerces bad
// quantities to 1. Price, name and image are refreshed from the catalog. The result
// is always saved. If the catalog cannot be read, the cart is reset to empty.
func (e *Engine) Validate(ctx context.Context) {
	next := make([]domain.CartLine, 0, len(e.lines))
	for _, line := range e.lines {
		if line.ProductID == "" || line.Name == "" {
			e.log.Warn("invalid cart line removed", zap.String("product_id", line.ProductID))
			continue
		}

		product, err := e.catalog.GetProductByID(ctx, line.ProductID)
		if errors.Is(err, catalog.ErrProductNotFound) {
			e.log.Warn("product no longer exists, removing from cart", zap.String("product_id", line.ProductID))
			continue
		}
		if err != nil {
			e.log.Error("cart validation failed, resetting cart", zap.Error(err))
			e.Clear(ctx)
			return
		}

		line.Quantity = NormalizeQuantity(line.Quantity)
		line.Price = product.Price
		line.Name = product.Name
		line.Image = product.Image

		if i := indexOf(next, line.ProductID); i >= 0 {
			next[i].Quantity += line.Quantity
			continue
		}
		next = append(next, line)
	}
	e.lines = next

	e.persist(ctx)
	e.publishChanged()
}

func (e *Engine) Total() decimal.Decimal {
	return domain.TotalOf(e.lines)
}

// ItemCount is the number of units in the cart, not the number of lines.
func (e *Engine) ItemCount() int {
	return domain.CountOf(e.lines)
}

func (e *Engine) IsEmpty() bool {
	return len(e.lines) == 0
}

// Lines returns a copy of the cart lines in insertion order.
func (e *Engine) Lines() []domain.CartLine {
	return domain.CloneLines(e.lines)
}

func (e *Engine) Snapshot() domain.CartSnapshot {
	return domain.CartSnapshot{
		Lines:     e.Lines(),
		Total:     e.Total(),
		ItemCount: e.ItemCount(),
	}
}

// persist saves and logs a failure; the in-memory cart stays authoritative.
func (e *Engine) persist(ctx context.Context) {
	if err := e.Save(ctx); err != nil {
		e.log.Warn("cart save failed", zap.Error(err))
	}
}

func (e *Engine) notify(message string) {
	e.events.Publish(events.NewNotification(message))
}

func (e *Engine) publishChanged() {
	e.events.Publish(events.CartChanged{Total: e.Total(), ItemCount: e.ItemCount()})
}

func indexOf(lines []domain.CartLine, productID string) int {
	for i, l := range lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}
