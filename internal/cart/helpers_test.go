package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/fjod/matcha-storefront/internal/domain"
	"github.com/fjod/matcha-storefront/internal/events"
	"github.com/fjod/matcha-storefront/internal/store"
)

// recorder captures published events for assertions
type recorder struct {
	mu     sync.RWMutex
	events []events.Event
}

func (r *recorder) Publish(e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) notifications() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for _, e := range r.events {
		if n, ok := e.(events.Notification); ok {
			out = append(out, n.Message)
		}
	}
	return out
}

func (r *recorder) count(t events.Type) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, e := range r.events {
		if e.Type() == t {
			n++
		}
	}
	return n
}

// countingStore wraps Memory and counts writes
type countingStore struct {
	*store.Memory
	sets int
}

func newCountingStore() *countingStore {
	return &countingStore{Memory: store.NewMemory()}
}

func (c *countingStore) Set(ctx context.Context, key string, value []byte) error {
	c.sets++
	return c.Memory.Set(ctx, key, value)
}

// brokenStore fails every call
type brokenStore struct{}

var errBroken = errors.New("disk on fire")

func (brokenStore) Get(context.Context, string) ([]byte, error) { return nil, errBroken }
func (brokenStore) Set(context.Context, string, []byte) error   { return errBroken }
func (brokenStore) Remove(context.Context, string) error        { return errBroken }

// brokenCatalog fails every lookup with a non not-found error
type brokenCatalog struct{}

func (brokenCatalog) GetProductByID(context.Context, string) (domain.Product, error) {
	return domain.Product{}, errBroken
}
func (brokenCatalog) GetAllProducts(context.Context) ([]domain.Product, error) { return nil, errBroken }
func (brokenCatalog) GetProductsByCategory(context.Context, string) ([]domain.Product, error) {
	return nil, errBroken
}
func (brokenCatalog) GetFeaturedProducts(context.Context) ([]domain.Product, error) {
	return nil, errBroken
}
func (brokenCatalog) GetCategories(context.Context) ([]domain.Category, error) { return nil, errBroken }
