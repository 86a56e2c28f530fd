package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is immutable once created. TotalPrice is fixed at creation and never recomputed.
type Order struct {
	ID            string          `json:"id"`
	CustomerName  string          `json:"customerName"`
	CustomerEmail string          `json:"customerEmail"`
	Notes         string          `json:"orderNotes,omitempty"`
	Lines         []CartLine      `json:"items"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	CreatedAt     time.Time       `json:"orderDate"`
}

// Clone returns a deep copy so the Lines slice is not shared.
func (o Order) Clone() Order {
	o.Lines = CloneLines(o.Lines)
	return o
}
