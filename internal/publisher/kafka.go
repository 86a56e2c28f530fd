// Package publisher forwards order events from the in-process bus to Kafka.
package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fjod/matcha-storefront/internal/domain"
	"github.com/fjod/matcha-storefront/internal/events"
	"github.com/fjod/matcha-storefront/internal/logger"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	DefaultTopic = "storefront-orders"

	queueSize    = 256
	maxRetryHeld = 1000
)

// MessageWriter is the part of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OrderPublisher queues OrderCreated and OrderConfirmed events and writes them to Kafka
// from Run. Bus delivery never blocks on the broker.
type OrderPublisher struct {
	writer    MessageWriter
	queue     chan kafka.Message
	retry     []kafka.Message
	retryTick time.Duration
	timeout   time.Duration
	log       *zap.Logger
}

type orderPayload struct {
	EventType string       `json:"event_type"`
	Order     domain.Order `json:"order"`
}

func NewKafkaWriter(topic string, brokers ...string) *kafka.Writer {
	if topic == "" {
		topic = DefaultTopic
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
}

func NewOrderPublisher(w MessageWriter, log *zap.Logger) *OrderPublisher {
	return &OrderPublisher{
		writer:    w,
		queue:     make(chan kafka.Message, queueSize),
		retryTick: 5 * time.Second,
		timeout:   5 * time.Second,
		log:       logger.OrNop(log),
	}
}

// Handle is an events.Handler. Events other than order events are ignored.
func (p *OrderPublisher) Handle(e events.Event) {
	var order domain.Order
	switch ev := e.(type) {
	case events.OrderCreated:
		order = ev.Order
	case events.OrderConfirmed:
		order = ev.Order
	default:
		return
	}

	msg, err := buildMessage(e.Type(), order)
	if err != nil {
		p.log.Error("failed to encode order event", zap.String("order_id", order.ID), zap.Error(err))
		return
	}

	select {
	case p.queue <- msg:
	default:
		p.log.Warn("order event queue full, dropping event",
			zap.String("order_id", order.ID), zap.String("event_type", string(e.Type())))
	}
}

// Run drains the queue until ctx is cancelled. Failed writes are retried on a ticker.
func (p *OrderPublisher) Run(ctx context.Context) error {
	retryTicker := time.NewTicker(p.retryTick)
	defer retryTicker.Stop()

	for {
		select {
		case msg := <-p.queue:
			if err := p.write(ctx, msg); err != nil {
				p.hold(msg, err)
			}
		case <-retryTicker.C:
			p.retryHeld(ctx)
		case <-ctx.Done():
			if n := len(p.retry) + len(p.queue); n > 0 {
				p.log.Warn("publisher stopped with unsent order events", zap.Int("count", n))
			}
			return nil
		}
	}
}

func (p *OrderPublisher) Close() error {
	return p.writer.Close()
}

func (p *OrderPublisher) write(ctx context.Context, msg kafka.Message) error {
	writeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.writer.WriteMessages(writeCtx, msg)
}

func (p *OrderPublisher) hold(msg kafka.Message, err error) {
	p.log.Warn("failed to publish order event, will retry", zap.String("key", string(msg.Key)), zap.Error(err))
	if len(p.retry) >= maxRetryHeld {
		p.retry = p.retry[1:]
	}
	p.retry = append(p.retry, msg)
}

func (p *OrderPublisher) retryHeld(ctx context.Context) {
	if len(p.retry) == 0 {
		return
	}
	pending := p.retry
	p.retry = nil
	for i, msg := range pending {
		if err := p.write(ctx, msg); err != nil {
			logger.WithTrace(ctx, p.log).Warn("retry failed", zap.String("key", string(msg.Key)), zap.Error(err))
			p.retry = append(p.retry, pending[i:]...)
			return
		}
	}
}

func buildMessage(eventType events.Type, order domain.Order) (kafka.Message, error) {
	payload, err := json.Marshal(orderPayload{EventType: string(eventType), Order: order})
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(order.ID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
			{Key: "event_id", Value: []byte(uuid.NewString())},
		},
	}, nil
}
