package syncbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcast_OrderAndExactlyOnce(t *testing.T) {
	bus := New()
	var calls []int
	for i := range 5 {
		bus.Subscribe(func(Event) { calls = append(calls, i) })
	}

	bus.Broadcast("state:selected", "TX", "panel-1")

	assert.Equal(t, []int{0, 1, 2, 3, 4}, calls)
}

func TestBroadcast_EventFields(t *testing.T) {
	bus := New()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	bus.now = func() time.Time { return fixed }

	var got Event
	bus.Subscribe(func(ev Event) { got = ev })
	bus.Broadcast("county:selected", map[string]any{"county": "Travis"}, "county-panel")

	assert.Equal(t, "county:selected", got.Type)
	assert.Equal(t, "county-panel", got.Source)
	assert.Equal(t, fixed, got.Timestamp)
	assert.Equal(t, map[string]any{"county": "Travis"}, got.Payload)
}

func TestBroadcast_DeliversToBroadcaster(t *testing.T) {
	bus := New()
	var own, others int
	bus.Subscribe(func(ev Event) {
		if ev.Source == "a" {
			own++
		}
	})
	bus.Subscribe(ExcludeSource("a", func(Event) { others++ }))

	bus.Broadcast("ping", nil, "a")
	bus.Broadcast("ping", nil, "b")

	assert.Equal(t, 1, own, "broadcaster's own listener sees its event")
	assert.Equal(t, 1, others, "ExcludeSource drops events from the given panel")
}

func TestUnsubscribe_StopsDeliveryAndIsIdempotent(t *testing.T) {
	bus := New()
	var a, b int
	unsubA := bus.Subscribe(func(Event) { a++ })
	bus.Subscribe(func(Event) { b++ })

	bus.Broadcast("x", nil, "p")
	unsubA()
	unsubA()
	bus.Broadcast("x", nil, "p")

	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
	assert.Equal(t, 1, bus.Len())
}

func TestUnsubscribe_DuringDelivery(t *testing.T) {
	bus := New()
	var second int
	var unsubSecond func()
	bus.Subscribe(func(Event) { unsubSecond() })
	unsubSecond = bus.Subscribe(func(Event) { second++ })

	bus.Broadcast("x", nil, "p")

	assert.Zero(t, second, "listener removed earlier in the pass must not run")
}

func TestSubscribeDuringDelivery_NotReplayed(t *testing.T) {
	bus := New()
	var late int
	bus.Subscribe(func(Event) {
		bus.Subscribe(func(Event) { late++ })
	})

	bus.Broadcast("x", nil, "p")
	assert.Zero(t, late, "listener added mid-broadcast does not see that broadcast")

	bus.Broadcast("y", nil, "p")
	assert.Equal(t, 1, late)
}

func TestNoReplayForLateSubscribers(t *testing.T) {
	bus := New()
	bus.Broadcast("x", nil, "p")

	var got int
	bus.Subscribe(func(Event) { got++ })
	assert.Zero(t, got)
}

func TestBroadcast_PanickingListenerIsIsolated(t *testing.T) {
	bus := New()
	var after int
	bus.Subscribe(func(Event) { panic("boom") })
	bus.Subscribe(func(Event) { after++ })

	require.NotPanics(t, func() { bus.Broadcast("x", nil, "p") })
	assert.Equal(t, 1, after)
}

func TestSubscribeType(t *testing.T) {
	bus := New()
	var got []string
	bus.SubscribeType("filters:changed", func(ev Event) { got = append(got, ev.Type) })

	bus.Broadcast("state:selected", nil, "p")
	bus.Broadcast("filters:changed", nil, "p")

	assert.Equal(t, []string{"filters:changed"}, got)
}

func TestSubscribe_NilListener(t *testing.T) {
	bus := New()
	unsub := bus.Subscribe(nil)
	unsub()
	assert.Zero(t, bus.Len())
}
