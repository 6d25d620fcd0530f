package metrics

import (
	"testing"

	"github.com/librarium/library/internal/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsFollowEvents(t *testing.T) {
	registry := prometheus.NewRegistry()
	notifier := events.NewNotifier()

	m := New(registry)
	m.Attach(notifier)

	notifier.Publish(events.Event{Kind: events.KindNewReservation})
	notifier.Publish(events.Event{Kind: events.KindNewReservation})
	notifier.Publish(events.Event{Kind: events.KindReservationCancelled})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.reservationsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reservationsCancelled))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.activeReservations))
}
