package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	ShortDescription string          `json:"short_description"`
	Description      string          `json:"description"`
	Price            decimal.Decimal `json:"price"`
	Image            string          `json:"image"`
	Category         string          `json:"category"`
	Featured         bool            `json:"featured"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FormatPrice renders an amount the way the storefront shows it, e.g. "$28.99".
func FormatPrice(amount decimal.Decimal) string {
	return fmt.Sprintf("$%s", amount.StringFixed(2))
}
