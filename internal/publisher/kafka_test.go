package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fjod/matcha-storefront/internal/domain"
	"github.com/fjod/matcha-storefront/internal/events"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu       sync.Mutex
	failures int
	messages []kafka.Message
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failures > 0 {
		w.failures--
		return errors.New("broker not available")
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *fakeWriter) sent() []kafka.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]kafka.Message(nil), w.messages...)
}

func testOrder() domain.Order {
	return domain.Order{
		ID:            "MH123456789",
		CustomerName:  "Mei",
		CustomerEmail: "mei@example.com",
		Lines: []domain.CartLine{
			{ProductID: "matcha-tin", Name: "Matcha Storage Tin", Price: decimal.RequireFromString("9.99"), Quantity: 1},
		},
		TotalPrice: decimal.RequireFromString("9.99"),
		CreatedAt:  time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestOrderPublisher_PublishesOrderEvents(t *testing.T) {
	w := &fakeWriter{}
	p := NewOrderPublisher(w, nil)
	bus := events.NewBus(nil)
	bus.Subscribe(p.Handle)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = p.Run(ctx)
		close(done)
	}()

	order := testOrder()
	bus.Publish(events.NewNotification("ignored"))
	bus.Publish(events.OrderCreated{Order: order})
	bus.Publish(events.OrderConfirmed{Order: order})

	require.Eventually(t, func() bool { return len(w.sent()) == 2 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	<-done

	msgs := w.sent()
	assert.Equal(t, "MH123456789", string(msgs[0].Key))
	assert.Equal(t, "order-created", header(msgs[0], "event_type"))
	assert.Equal(t, "order-confirmed", header(msgs[1], "event_type"))
	assert.NotEmpty(t, header(msgs[0], "event_id"))
	assert.NotEqual(t, header(msgs[0], "event_id"), header(msgs[1], "event_id"))

	var payload struct {
		EventType string `json:"event_type"`
		Order     struct {
			ID         string `json:"id"`
			TotalPrice string `json:"totalPrice"`
		} `json:"order"`
	}
	require.NoError(t, json.Unmarshal(msgs[0].Value, &payload))
	assert.Equal(t, "order-created", payload.EventType)
	assert.Equal(t, "MH123456789", payload.Order.ID)
	assert.Equal(t, "9.99", payload.Order.TotalPrice)
}

func TestOrderPublisher_RetriesFailedWrites(t *testing.T) {
	w := &fakeWriter{failures: 2}
	p := NewOrderPublisher(w, nil)
	p.retryTick = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = p.Run(ctx) }()

	p.Handle(events.OrderCreated{Order: testOrder()})

	require.Eventually(t, func() bool { return len(w.sent()) == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestOrderPublisher_DropsWhenQueueFull(t *testing.T) {
	w := &fakeWriter{}
	p := NewOrderPublisher(w, nil)

	for i := 0; i < queueSize+10; i++ {
		p.Handle(events.OrderCreated{Order: testOrder()})
	}
	assert.Len(t, p.queue, queueSize)
}

func TestOrderPublisher_Close(t *testing.T) {
	w := &fakeWriter{}
	p := NewOrderPublisher(w, nil)
	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestNewKafkaWriter_DefaultTopic(t *testing.T) {
	w := NewKafkaWriter("", "localhost:9092")
	assert.Equal(t, DefaultTopic, w.Topic)
	assert.Equal(t, "localhost:9092", w.Addr.String())
}
