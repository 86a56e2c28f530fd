package notify

import (
	"sync"
	"time"

	"github.com/fjod/matcha-storefront/internal/events"
)

// DefaultTTL is how long a notification stays visible.
const DefaultTTL = 3 * time.Second

// Feed keeps the notifications that are currently visible. Each one is removed
// by its own timer once its TTL has passed.
type Feed struct {
	ttl time.Duration

	mu     sync.RWMutex
	items  []events.Notification
	timers map[string]*time.Timer
	closed bool
}

func NewFeed(ttl time.Duration) *Feed {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Feed{ttl: ttl, timers: make(map[string]*time.Timer)}
}

// Handle is an events.Handler; it ignores everything except notifications.
func (f *Feed) Handle(e events.Event) {
	n, ok := e.(events.Notification)
	if !ok {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}

	f.items = append(f.items, n)
	f.timers[n.ID] = time.AfterFunc(f.ttl, func() { f.dismiss(n.ID) })
}

// Active returns the visible notifications, oldest first.
func (f *Feed) Active() []events.Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]events.Notification{}, f.items...)
}

// Close stops all pending timers and drops the remaining notifications.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	for id, t := range f.timers {
		t.Stop()
		delete(f.timers, id)
	}
	f.items = nil
	f.closed = true
}

func (f *Feed) dismiss(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.timers, id)
	for i, n := range f.items {
		if n.ID == id {
			f.items = append(f.items[:i:i], f.items[i+1:]...)
			return
		}
	}
}
