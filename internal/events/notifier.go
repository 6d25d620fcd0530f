// Package events carries the reservation domain events: a synchronous
// in-process notifier the engine dispatches on, and an optional RabbitMQ
// publisher bridging those events to external consumers.
package events

import (
	"github.com/librarium/library/internal/db"
)

// Event kinds dispatched by the engine.
const (
	KindNewReservation       = "reservation.created"
	KindReservationCancelled = "reservation.cancelled"
)

// Event is a committed reservation state change. The reservation and item
// are snapshots taken after the mutation.
type Event struct {
	Kind        string
	Reservation db.Reservation
	Item        db.Item
}

// Observer receives events on the publishing goroutine.
type Observer func(Event)

// Notifier fans events out to subscribed observers. Dispatch is synchronous
// and in subscription order; an observer that panics takes the publishing
// call down with it. The engine publishes only after its mutations are
// committed, so observers never see partial state.
//
// Subscribe and Publish are not safe for concurrent use with each other;
// subscriptions are expected to happen during wiring, before the engine
// starts serving.
type Notifier struct {
	observers map[string][]Observer
}

// NewNotifier creates an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{observers: make(map[string][]Observer)}
}

// Subscribe appends an observer for one event kind.
func (n *Notifier) Subscribe(kind string, fn Observer) {
	n.observers[kind] = append(n.observers[kind], fn)
}

// SubscribeAll appends an observer for every reservation event kind.
func (n *Notifier) SubscribeAll(fn Observer) {
	n.Subscribe(KindNewReservation, fn)
	n.Subscribe(KindReservationCancelled, fn)
}

// Publish invokes every observer registered for the event's kind, in
// subscription order, on the calling goroutine.
func (n *Notifier) Publish(e Event) {
	for _, fn := range n.observers[e.Kind] {
		fn(e)
	}
}
