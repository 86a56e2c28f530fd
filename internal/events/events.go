package events

import (
	"github.com/fjod/matcha-storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeCartChanged    Type = "cart-changed"
	TypeNotification   Type = "notification"
	TypeOrderCreated   Type = "order-created"
	TypeOrderConfirmed Type = "order-confirmed"
)

type Event interface {
	Type() Type
}

// CartChanged follows every applied cart mutation.
type CartChanged struct {
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

// Notification is a short user-facing message.
type Notification struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

type OrderCreated struct {
	Order domain.Order `json:"order"`
}

type OrderConfirmed struct {
	Order domain.Order `json:"order"`
}

func (CartChanged) Type() Type    { return TypeCartChanged }
func (Notification) Type() Type   { return TypeNotification }
func (OrderCreated) Type() Type   { return TypeOrderCreated }
func (OrderConfirmed) Type() Type { return TypeOrderConfirmed }

func NewNotification(message string) Notification {
	return Notification{ID: uuid.NewString(), Message: message}
}
