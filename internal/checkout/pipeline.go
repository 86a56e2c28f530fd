// Package checkout drives a shopper from cart review to a confirmed, manually paid order.
package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/fjod/matcha-storefront/internal/domain"
	"github.com/fjod/matcha-storefront/internal/events"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	MsgOrderNotSaved = "Could not save your order. Please try again."
	MsgOrderCopied   = "Order number copied to clipboard"
)

// Cart is the part of the cart engine the pipeline reads and resets.
type Cart interface {
	IsEmpty() bool
	Lines() []domain.CartLine
	Total() decimal.Decimal
	Clear(ctx context.Context)
}

type OrderLog interface {
	Append(ctx context.Context, order domain.Order) error
}

// Pipeline is the checkout state machine:
// Idle -> CartReview -> OrderCaptured -> PaymentPending -> Confirmed.
// Close returns to Idle from any state. Pipeline does no locking; callers serialize access.
type Pipeline struct {
	cart   Cart
	orders OrderLog
	events events.Publisher
	log    *zap.Logger

	now   func() time.Time
	newID func(time.Time) string

	status  domain.CheckoutStatus
	current *domain.Order
}

type Option func(*Pipeline)

func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func WithIDGenerator(gen func(time.Time) string) Option {
	return func(p *Pipeline) { p.newID = gen }
}

func NewPipeline(cart Cart, orders OrderLog, pub events.Publisher, log *zap.Logger, opts ...Option) *Pipeline {
	if pub == nil {
		pub = events.Discard{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	p := &Pipeline{
		cart:   cart,
		orders: orders,
		events: pub,
		log:    log,
		now:    time.Now,
		newID:  NewOrderID,
		status: domain.CheckoutStatusIdle,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) State() domain.CheckoutStatus {
	return p.status
}

// CurrentOrder returns the order captured in this checkout, if any.
func (p *Pipeline) CurrentOrder() (domain.Order, bool) {
	if p.current == nil {
		return domain.Order{}, false
	}
	return p.current.Clone(), true
}

// Begin opens cart review. An empty cart blocks checkout. Starting again after a
// confirmed order begins a fresh checkout.
func (p *Pipeline) Begin(ctx context.Context) error {
	switch p.status {
	case domain.CheckoutStatusCartReview:
		return nil
	case domain.CheckoutStatusConfirmed:
		p.Close(ctx)
	}

	if p.cart.IsEmpty() {
		return ErrEmptyCart
	}
	return p.transition(domain.CheckoutStatusCartReview)
}

// Submit captures an order from the cart. Invalid input returns a *ValidationError
// and leaves the pipeline in CartReview. On success the order is appended to the
// order log and the pipeline waits for payment. The cart is not touched.
func (p *Pipeline) Submit(ctx context.Context, form CustomerForm) (domain.Order, error) {
	if p.status != domain.CheckoutStatusCartReview {
		return domain.Order{}, fmt.Errorf("%w: cannot submit in %s", ErrIllegalTransition, p.status)
	}

	form = form.Normalized()
	if err := form.Validate(); err != nil {
		return domain.Order{}, err
	}
	if p.cart.IsEmpty() {
		return domain.Order{}, ErrEmptyCart
	}

	now := p.now()
	order := domain.Order{
		ID:            p.newID(now),
		CustomerName:  form.Name,
		CustomerEmail: form.Email,
		Notes:         form.Notes,
		Lines:         p.cart.Lines(),
		TotalPrice:    p.cart.Total(),
		CreatedAt:     now.UTC(),
	}

	if err := p.orders.Append(ctx, order); err != nil {
		p.log.Error("order append failed", zap.String("order_id", order.ID), zap.Error(err))
		p.events.Publish(events.NewNotification(MsgOrderNotSaved))
		return domain.Order{}, fmt.Errorf("record order: %w", err)
	}

	p.current = &order
	if err := p.transition(domain.CheckoutStatusOrderCaptured); err != nil {
		return domain.Order{}, err
	}
	p.events.Publish(events.OrderCreated{Order: order.Clone()})

	if err := p.transition(domain.CheckoutStatusPaymentPending); err != nil {
		return domain.Order{}, err
	}
	return order.Clone(), nil
}

// ConfirmPayment records the shopper's word that the payment was sent. Nothing is
// verified. The cart is emptied.
func (p *Pipeline) ConfirmPayment(ctx context.Context) (domain.Order, error) {
	if p.status != domain.CheckoutStatusPaymentPending || p.current == nil {
		return domain.Order{}, fmt.Errorf("%w: cannot confirm payment in %s", ErrIllegalTransition, p.status)
	}

	p.cart.Clear(ctx)
	if err := p.transition(domain.CheckoutStatusConfirmed); err != nil {
		return domain.Order{}, err
	}

	order := p.current.Clone()
	p.events.Publish(events.OrderConfirmed{Order: order})
	return order, nil
}

// Close abandons the checkout. The cart and any appended order are kept.
func (p *Pipeline) Close(_ context.Context) {
	if p.status == domain.CheckoutStatusIdle {
		return
	}
	_ = p.transition(domain.CheckoutStatusIdle)
	p.current = nil
}

// CopyOrderNumber returns the current order id and tells the shopper it was copied.
func (p *Pipeline) CopyOrderNumber() (string, error) {
	if p.current == nil {
		return "", ErrNoOrder
	}
	p.events.Publish(events.NewNotification(MsgOrderCopied))
	return p.current.ID, nil
}

func (p *Pipeline) transition(to domain.CheckoutStatus) error {
	if !domain.CanTransitionTo(p.status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, p.status, to)
	}
	p.log.Info("checkout status changed",
		zap.String("from", p.status.String()),
		zap.String("to", to.String()))
	p.status = to
	return nil
}
