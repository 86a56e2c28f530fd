// Package orders persists the append-only history of captured orders.
package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/fjod/matcha-storefront/internal/domain"
	"github.com/fjod/matcha-storefront/internal/store"
	"go.uber.org/zap"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrCorruptLog    = errors.New("stored order log is unparsable")
)

// Log is append-only: there is no way to change or delete an order once appended.
// The whole history is rewritten under the orders key on every append.
//
// While the store cannot be read, appended orders are held for the session and are
// written together with the stored history once a read succeeds again.
type Log struct {
	store store.Store
	log   *zap.Logger

	mu      sync.Mutex
	pending []domain.Order
}

func NewLog(s store.Store, log *zap.Logger) *Log {
	if log == nil {
		log = zap.NewNop()
	}
	return &Log{store: s, log: log}
}

// Append adds order to the end of the history. A history that cannot be parsed is
// never overwritten, so a corrupt log fails the append.
func (l *Log) Append(ctx context.Context, order domain.Order) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	history, err := l.read(ctx)
	if errors.Is(err, store.ErrStoreUnavailable) {
		l.pending = append(l.pending, order.Clone())
		l.log.Warn("order kept for this session only, store unreadable",
			zap.String("order_id", order.ID), zap.Int("pending", len(l.pending)), zap.Error(err))
		return nil
	}
	if err != nil {
		return fmt.Errorf("append order %s: %w", order.ID, err)
	}
	history = append(mergePending(history, l.pending), order.Clone())

	data, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshal orders failed: %w", err)
	}

	if err := l.store.Set(ctx, store.KeyOrders, data); err != nil {
		if errors.Is(err, store.ErrStoreUnavailable) {
			// the store kept the write in memory; it is not durable yet
			l.log.Warn("order kept in memory only", zap.String("order_id", order.ID), zap.Error(err))
			l.pending = nil
			return nil
		}
		return fmt.Errorf("append order %s: %w", order.ID, err)
	}
	l.pending = nil
	return nil
}

// List returns every order, oldest first. While the store is unreadable only the
// orders held for this session are returned.
func (l *Log) List(ctx context.Context) ([]domain.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	history, err := l.read(ctx)
	if errors.Is(err, store.ErrStoreUnavailable) {
		l.log.Warn("order history unreadable, listing session orders", zap.Error(err))
		return mergePending([]domain.Order{}, l.pending), nil
	}
	if err != nil {
		return nil, err
	}
	return mergePending(history, l.pending), nil
}

func (l *Log) read(ctx context.Context) ([]domain.Order, error) {
	data, err := l.store.Get(ctx, store.KeyOrders)
	if errors.Is(err, store.ErrNotFound) {
		return []domain.Order{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read orders: %w", err)
	}

	var history []domain.Order
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptLog, err)
	}
	if history == nil {
		history = []domain.Order{}
	}
	return history, nil
}

// mergePending appends the session-held orders that history does not contain yet.
func mergePending(history, pending []domain.Order) []domain.Order {
	if len(pending) == 0 {
		return history
	}
	seen := make(map[string]struct{}, len(history))
	for _, o := range history {
		seen[o.ID] = struct{}{}
	}
	for _, o := range pending {
		if _, ok := seen[o.ID]; !ok {
			history = append(history, o.Clone())
		}
	}
	return history
}

func (l *Log) Find(ctx context.Context, id string) (domain.Order, error) {
	history, err := l.List(ctx)
	if err != nil {
		return domain.Order{}, err
	}
	for _, o := range history {
		if o.ID == id {
			return o, nil
		}
	}
	return domain.Order{}, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
}

func (l *Log) Count(ctx context.Context) (int, error) {
	history, err := l.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(history), nil
}
