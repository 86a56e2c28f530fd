package events

import (
	"sync"

	"go.uber.org/zap"
)

type Handler func(Event)

// Publisher is what the cart and checkout need to announce changes.
type Publisher interface {
	Publish(e Event)
}

// Bus delivers each event synchronously to every subscriber, in subscription order.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	order    []int
	handlers map[int]Handler
	log      *zap.Logger
}

func NewBus(log *zap.Logger) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bus{handlers: make(map[int]Handler), log: log}
}

// Subscribe registers h and returns a func that removes it.
func (b *Bus) Subscribe(h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[id] = h
	b.order = append(b.order, id)

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers, id)
		for i, v := range b.order {
			if v == id {
				b.order = append(b.order[:i:i], b.order[i+1:]...)
				break
			}
		}
	}
}

func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.order))
	for _, id := range b.order {
		handlers = append(handlers, b.handlers[id])
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		b.deliver(h, e)
	}
}

// a panicking subscriber must not break the mutation that published the event
func (b *Bus) deliver(h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event handler panicked", zap.String("event", string(e.Type())), zap.Any("panic", r))
		}
	}()
	h(e)
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(Event) {}
