package service

import "github.com/fjod/matcha-storefront/internal/checkout"

// Command is a typed shopper intent.
type Command interface {
	commandName() string
}

type AddItem struct {
	ProductID string
	Quantity  int
}

type RemoveItem struct {
	ProductID string
}

type SetQuantity struct {
	ProductID string
	Quantity  int
}

type BeginCheckout struct{}

type SubmitCheckout struct {
	Form checkout.CustomerForm
}

type ConfirmPayment struct{}

type CloseCheckout struct{}

type CopyOrderNumber struct{}

func (AddItem) commandName() string         { return "AddItem" }
func (RemoveItem) commandName() string      { return "RemoveItem" }
func (SetQuantity) commandName() string     { return "SetQuantity" }
func (BeginCheckout) commandName() string   { return "BeginCheckout" }
func (SubmitCheckout) commandName() string  { return "SubmitCheckout" }
func (ConfirmPayment) commandName() string  { return "ConfirmPayment" }
func (CloseCheckout) commandName() string   { return "CloseCheckout" }
func (CopyOrderNumber) commandName() string { return "CopyOrderNumber" }
