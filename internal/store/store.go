package store

import (
	"context"
	"errors"
)

// Keys used by the storefront core.
const (
	KeyCart   = "cart"
	KeyOrders = "orders"
)

var (
	ErrNotFound         = errors.New("key not found")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Store is a key/value byte store. Every Set is a full overwrite of a single key.
// Consumers depend on this interface, never on a concrete backend.
type Store interface {
	// Get returns ErrNotFound when the key was never written or was removed.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}
