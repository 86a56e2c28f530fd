package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// Resilient puts a circuit breaker in front of a durable store and mirrors every
// write into memory. While the durable store is failing, writes land only in memory
// and reads of those keys are served from there, so the session keeps working.
type Resilient struct {
	primary  Store
	fallback *Memory
	cb       *gobreaker.CircuitBreaker[[]byte]
	log      *zap.Logger

	mu    sync.Mutex
	dirty map[string]struct{} // keys whose latest value exists only in memory
}

func NewResilient(primary Store, log *zap.Logger) *Resilient {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Resilient{
		primary:  primary,
		fallback: NewMemory(),
		log:      log,
		dirty:    make(map[string]struct{}),
	}
	r.cb = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "store",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return r
}

func (r *Resilient) Get(ctx context.Context, key string) ([]byte, error) {
	if r.isDirty(key) {
		return r.fallback.Get(ctx, key)
	}

	v, err := r.cb.Execute(func() ([]byte, error) {
		return r.primary.Get(ctx, key)
	})
	if err == nil {
		return v, nil
	}
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}

	r.log.Warn("durable store read failed, using memory copy", zap.String("key", key), zap.Error(err))
	v, errMem := r.fallback.Get(ctx, key)
	if errMem != nil {
		// memory has never seen this key, so the real value is unknown
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return v, nil
}

func (r *Resilient) Set(ctx context.Context, key string, value []byte) error {
	_ = r.fallback.Set(ctx, key, value)

	_, err := r.cb.Execute(func() ([]byte, error) {
		return nil, r.primary.Set(ctx, key, value)
	})
	r.markDirty(key, err != nil)
	if err != nil {
		r.log.Warn("durable store write failed, kept in memory", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (r *Resilient) Remove(ctx context.Context, key string) error {
	_ = r.fallback.Remove(ctx, key)

	_, err := r.cb.Execute(func() ([]byte, error) {
		return nil, r.primary.Remove(ctx, key)
	})
	r.markDirty(key, err != nil)
	if err != nil {
		r.log.Warn("durable store remove failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Degraded reports whether the breaker is not closed or some writes have not reached the durable store.
func (r *Resilient) Degraded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cb.State() != gobreaker.StateClosed || len(r.dirty) > 0
}

func (r *Resilient) isDirty(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.dirty[key]
	return ok
}

func (r *Resilient) markDirty(key string, dirty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if dirty {
		r.dirty[key] = struct{}{}
		return
	}
	delete(r.dirty, key)
}
