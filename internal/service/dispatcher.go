// Package service is the single entry point presentation uses to drive the cart and checkout.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fjod/matcha-storefront/internal/cart"
	"github.com/fjod/matcha-storefront/internal/checkout"
	"github.com/fjod/matcha-storefront/internal/domain"
	"github.com/fjod/matcha-storefront/internal/logger"
	"github.com/fjod/matcha-storefront/internal/orders"
	"go.uber.org/zap"
)

var ErrUnknownCommand = errors.New("unknown command type")

// View is what presentation renders after a command.
type View struct {
	Cart          domain.CartSnapshot   `json:"cart"`
	CheckoutState domain.CheckoutStatus `json:"checkout_state"`
	Order         *domain.Order         `json:"order,omitempty"`
	CopiedOrderID string                `json:"copied_order_id,omitempty"`
}

// Dispatcher runs one command at a time against the session's cart and checkout,
// so each command completes before the next one starts.
type Dispatcher struct {
	mu       sync.Mutex
	cart     *cart.Engine
	pipeline *checkout.Pipeline
	orders   *orders.Log
	log      *zap.Logger
}

func NewDispatcher(c *cart.Engine, p *checkout.Pipeline, o *orders.Log, log *zap.Logger) *Dispatcher {
	return &Dispatcher{cart: c, pipeline: p, orders: o, log: logger.OrNop(log)}
}

// Start restores the stored cart and reconciles it with the catalog.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cart.Load(ctx)
	d.cart.Validate(ctx)
	d.log.Info("cart restored",
		zap.Int("item_count", d.cart.ItemCount()),
		zap.String("total", d.cart.Total().StringFixed(2)))
}

// Dispatch applies cmd and returns the resulting view. The view is returned even
// when the command fails, so callers can re-render.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) (View, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	log := logger.WithTrace(ctx, d.log)
	var (
		err    error
		copied string
	)

	switch c := cmd.(type) {
	case AddItem:
		log.Info("adding item", zap.String("product_id", c.ProductID), zap.Int("quantity", c.Quantity))
		err = d.cart.AddItem(ctx, c.ProductID, c.Quantity)
	case RemoveItem:
		log.Info("removing item", zap.String("product_id", c.ProductID))
		d.cart.RemoveItem(ctx, c.ProductID)
	case SetQuantity:
		log.Info("updating quantity", zap.String("product_id", c.ProductID), zap.Int("quantity", c.Quantity))
		d.cart.SetQuantity(ctx, c.ProductID, c.Quantity)
	case BeginCheckout:
		log.Info("starting checkout")
		err = d.pipeline.Begin(ctx)
	case SubmitCheckout:
		log.Info("submitting checkout")
		_, err = d.pipeline.Submit(ctx, c.Form)
	case ConfirmPayment:
		log.Info("confirming payment")
		_, err = d.pipeline.ConfirmPayment(ctx)
	case CloseCheckout:
		log.Info("closing checkout")
		d.pipeline.Close(ctx)
	case CopyOrderNumber:
		copied, err = d.pipeline.CopyOrderNumber()
	default:
		err = fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
	}

	if err != nil {
		log.Info("command rejected", zap.String("command", commandName(cmd)), zap.Error(err))
	}

	v := d.view()
	v.CopiedOrderID = copied
	return v, err
}

// View returns the current state without changing anything.
func (d *Dispatcher) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.view()
}

func (d *Dispatcher) Orders(ctx context.Context) ([]domain.Order, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.orders.List(ctx)
}

func (d *Dispatcher) Order(ctx context.Context, id string) (domain.Order, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.orders.Find(ctx, id)
}

func (d *Dispatcher) view() View {
	v := View{
		Cart:          d.cart.Snapshot(),
		CheckoutState: d.pipeline.State(),
	}
	if o, ok := d.pipeline.CurrentOrder(); ok {
		v.Order = &o
	}
	return v
}

func commandName(cmd Command) string {
	if cmd == nil {
		return "<nil>"
	}
	return cmd.commandName()
}
