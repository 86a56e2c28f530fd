package publisher

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/fjod/matcha-storefront/internal/events"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
)

func setupKafka(t *testing.T) (string, func()) {
	t.Helper()
	ctx := context.Background()

	kafkaContainer, err := kafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err)

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers, "broker address should not be empty")

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate kafka container: %v", err)
		}
	}
	return brokers[0], cleanup
}

func TestOrderPublisher_KafkaIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping kafka integration test in short mode")
	}

	brokerAddr, cleanup := setupKafka(t)
	defer cleanup()

	const topic = "storefront-orders-test"
	p := NewOrderPublisher(NewKafkaWriter(topic, brokerAddr), nil)
	p.retryTick = 500 * time.Millisecond
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	go func() { _ = p.Run(ctx) }()

	p.Handle(events.OrderCreated{Order: testOrder()})

	reader := kafkaGo.NewReader(kafkaGo.ReaderConfig{
		Brokers:  []string{brokerAddr},
		Topic:    topic,
		GroupID:  "storefront-test",
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	msg, err := reader.ReadMessage(ctx)
	require.NoError(t, err)

	assert.Equal(t, "MH123456789", string(msg.Key))
	assert.Equal(t, "order-created", header(msg, "event_type"))

	var payload orderPayload
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.Equal(t, "order-created", payload.EventType)
	assert.Equal(t, "Mei", payload.Order.CustomerName)
}
