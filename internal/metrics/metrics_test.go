package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingMetricsCustomRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveBooking("created")
	m.ObserveBooking("created")
	m.ObserveBooking("slot_conflict")
	m.ObserveSlotQuery("ok", 0.01)
	m.ObserveCompletions("sweep", 3)
	m.ObserveCompletions("sweep", 0)
	m.ObserveSession("issued")

	families, err := reg.Gather()
	require.NoError(t, err)

	got := map[string]float64{}
	for _, f := range families {
		for _, metric := range f.GetMetric() {
			if c := metric.GetCounter(); c != nil {
				got[f.GetName()+"/"+metric.GetLabel()[0].GetValue()] = c.GetValue()
			}
		}
	}

	assert.Equal(t, 2.0, got["booking_engine_bookings_total/created"])
	assert.Equal(t, 1.0, got["booking_engine_bookings_total/slot_conflict"])
	assert.Equal(t, 3.0, got["booking_completion_completed_total/sweep"])
	assert.Equal(t, 1.0, got["booking_session_tokens_total/issued"])
}

func TestBookingMetricsNilSafe(t *testing.T) {
	var m *BookingMetrics
	m.ObserveBooking("created")
	m.ObserveSlotQuery("ok", 0.1)
	m.ObserveCompletions("task", 1)
	m.ObserveSession("issued")
}
