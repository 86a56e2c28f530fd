package cart

import "errors"

var ErrInvalidProduct = errors.New("invalid product")

const (
	MsgAddFailed = "Failed to add item to cart. Please try again."
	msgAdded     = "Added %d %s to cart"
)
