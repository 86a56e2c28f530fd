package events

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_DeliversInSubscriptionOrder(t *testing.T) {
	bus := NewBus(nil)
	var got []string

	bus.Subscribe(func(e Event) { got = append(got, "first:"+string(e.Type())) })
	bus.Subscribe(func(e Event) { got = append(got, "second:"+string(e.Type())) })

	bus.Publish(CartChanged{Total: decimal.NewFromInt(3), ItemCount: 1})

	assert.Equal(t, []string{"first:cart-changed", "second:cart-changed"}, got)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(nil)
	calls := 0

	unsubscribe := bus.Subscribe(func(Event) { calls++ })
	bus.Publish(NewNotification("one"))
	unsubscribe()
	bus.Publish(NewNotification("two"))

	assert.Equal(t, 1, calls)
}

func TestBus_PanickingHandlerDoesNotStopOthers(t *testing.T) {
	bus := NewBus(nil)
	var received []Event

	bus.Subscribe(func(Event) { panic("boom") })
	bus.Subscribe(func(e Event) { received = append(received, e) })

	require.NotPanics(t, func() { bus.Publish(NewNotification("hello")) })
	require.Len(t, received, 1)
	assert.Equal(t, "hello", received[0].(Notification).Message)
}

func TestNewNotification_HasID(t *testing.T) {
	a := NewNotification("x")
	b := NewNotification("x")

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, TypeNotification, a.Type())
}
