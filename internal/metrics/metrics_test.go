package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordBooking(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordBooking(3)
	m.RecordBooking(2)
	m.RecordCancellation()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.BookingsCreated))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.TicketsSold))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingsCancelled))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordBooking(1)
		m.RecordCancellation()
	})
}
