// Package syncbus is the workspace-scoped publish/subscribe channel panels use
// to tell each other about selections, filter changes and similar events.
//
// Delivery is synchronous: Broadcast returns only after every listener that was
// subscribed when the broadcast started has run, in subscription order. There
// is no queue and no replay, and the broadcasting panel's own listeners are
// delivered to like any other. Panels that want to ignore their own events
// compare Event.Source with their id (see ExcludeSource).
package syncbus

import (
	"log"
	"sync"
	"time"
)

// Event is one broadcast. It lives only for the duration of a delivery pass.
type Event struct {
	Type      string
	Payload   any
	Source    string // panel id of the broadcaster
	Timestamp time.Time
}

// Listener receives events.
type Listener func(Event)

type subscription struct {
	id       uint64
	listener Listener
}

// Bus delivers events to subscribers. One Bus exists per workspace.
// Safe for concurrent use; listeners run outside the internal lock so they
// may subscribe, unsubscribe or broadcast re-entrantly.
type Bus struct {
	mu     sync.Mutex
	nextID uint64
	subs   []subscription
	now    func() time.Time
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{now: time.Now}
}

// Subscribe registers listener and returns a function that removes it.
// The returned function is idempotent.
func (b *Bus) Subscribe(listener Listener) (unsubscribe func()) {
	if listener == nil {
		return func() {}
	}
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, listener: listener})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

// SubscribeType registers listener for events of a single type.
func (b *Bus) SubscribeType(eventType string, listener Listener) (unsubscribe func()) {
	if listener == nil {
		return func() {}
	}
	return b.Subscribe(func(ev Event) {
		if ev.Type == eventType {
			listener(ev)
		}
	})
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Broadcast delivers an event to every current subscriber in subscription
// order and returns once all have run. A listener that panics is logged and
// skipped; the remaining listeners still receive the event.
func (b *Bus) Broadcast(eventType string, payload any, source string) {
	b.mu.Lock()
	now := b.now
	if now == nil {
		now = time.Now
	}
	snapshot := make([]subscription, len(b.subs))
	copy(snapshot, b.subs)
	b.mu.Unlock()

	ev := Event{Type: eventType, Payload: payload, Source: source, Timestamp: now()}
	for _, s := range snapshot {
		if !b.subscribed(s.id) {
			continue
		}
		deliver(s.listener, ev)
	}
}

// subscribed reports whether id is still registered. A listener removed by an
// earlier listener in the same pass is not invoked.
func (b *Bus) subscribed(id uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.subs {
		if s.id == id {
			return true
		}
	}
	return false
}

func deliver(listener Listener, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("syncbus.Broadcast: listener panicked on %q from %q: %v", ev.Type, ev.Source, r)
		}
	}()
	listener(ev)
}

// Len returns the number of active subscriptions.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// ExcludeSource wraps listener so events broadcast by panelID are dropped.
func ExcludeSource(panelID string, listener Listener) Listener {
	return func(ev Event) {
		if ev.Source == panelID {
			return
		}
		listener(ev)
	}
}
