package events

import (
	"testing"

	"github.com/librarium/library/internal/db"
	"github.com/stretchr/testify/assert"
)

func TestNotifierRoutesByKind(t *testing.T) {
	n := NewNotifier()

	created := 0
	cancelled := 0
	n.Subscribe(KindNewReservation, func(Event) { created++ })
	n.Subscribe(KindReservationCancelled, func(Event) { cancelled++ })

	n.Publish(Event{Kind: KindNewReservation})
	n.Publish(Event{Kind: KindNewReservation})
	n.Publish(Event{Kind: KindReservationCancelled})

	assert.Equal(t, 2, created)
	assert.Equal(t, 1, cancelled)
}

func TestNotifierPreservesSubscriptionOrder(t *testing.T) {
	n := NewNotifier()

	var order []int
	for i := 1; i <= 3; i++ {
		i := i
		n.Subscribe(KindNewReservation, func(Event) { order = append(order, i) })
	}

	n.Publish(Event{Kind: KindNewReservation})
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestNotifierWithoutObserversIsNoop(t *testing.T) {
	n := NewNotifier()
	assert.NotPanics(t, func() {
		n.Publish(Event{Kind: KindReservationCancelled, Reservation: db.Reservation{ID: 1}})
	})
}

func TestSubscribeAll(t *testing.T) {
	n := NewNotifier()

	seen := 0
	n.SubscribeAll(func(Event) { seen++ })

	n.Publish(Event{Kind: KindNewReservation})
	n.Publish(Event{Kind: KindReservationCancelled})

	assert.Equal(t, 2, seen)
}
