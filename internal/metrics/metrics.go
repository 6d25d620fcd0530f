// Package metrics exposes reservation counters as Prometheus collectors,
// fed by subscribing to the engine's notification channel.
package metrics

import (
	"github.com/librarium/library/internal/events"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the reservation collectors.
type Metrics struct {
	reservationsCreated   prometheus.Counter
	reservationsCancelled prometheus.Counter
	activeReservations    prometheus.Gauge
}

// New registers the collectors with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		reservationsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "library_reservations_created_total",
			Help: "Total number of reservations admitted by the engine.",
		}),
		reservationsCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "library_reservations_cancelled_total",
			Help: "Total number of reservations cancelled.",
		}),
		activeReservations: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "library_reservations_active",
			Help: "Number of currently active reservations.",
		}),
	}
	reg.MustRegister(m.reservationsCreated, m.reservationsCancelled, m.activeReservations)
	return m
}

// Attach subscribes the collectors to reservation events.
func (m *Metrics) Attach(n *events.Notifier) {
	n.Subscribe(events.KindNewReservation, func(events.Event) {
		m.reservationsCreated.Inc()
		m.activeReservations.Inc()
	})
	n.Subscribe(events.KindReservationCancelled, func(events.Event) {
		m.reservationsCancelled.Inc()
		m.activeReservations.Dec()
	})
}
