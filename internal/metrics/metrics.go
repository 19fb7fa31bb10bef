// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "eventhub"

// Metrics holds Prometheus metrics for the HTTP layer and the booking flow.
type Metrics struct {
	RequestCounter    *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	BookingsCreated   prometheus.Counter
	BookingsCancelled prometheus.Counter
	TicketsSold       prometheus.Counter
}

// New creates the collectors and registers them with reg.
// A nil registerer leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		BookingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "booking",
			Name:      "created_total",
			Help:      "Bookings created",
		}),
		BookingsCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "booking",
			Name:      "cancelled_total",
			Help:      "Bookings cancelled",
		}),
		TicketsSold: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "booking",
			Name:      "tickets_sold_total",
			Help:      "Tickets sold across all bookings",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.RequestCounter,
			m.RequestDuration,
			m.BookingsCreated,
			m.BookingsCancelled,
			m.TicketsSold,
		)
	}
	return m
}

// RecordBooking counts a confirmed booking of quantity tickets.
func (m *Metrics) RecordBooking(quantity int) {
	if m == nil {
		return
	}
	m.BookingsCreated.Inc()
	m.TicketsSold.Add(float64(quantity))
}

// RecordCancellation counts a cancelled booking.
func (m *Metrics) RecordCancellation() {
	if m == nil {
		return
	}
	m.BookingsCancelled.Inc()
}
