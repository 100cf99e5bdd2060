package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the booking flows.
type BookingMetrics struct {
	bookingsTotal    *prometheus.CounterVec
	slotLatency      *prometheus.HistogramVec
	completionsTotal *prometheus.CounterVec
	sessionsTotal    *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "booking",
			Subsystem: "engine",
			Name:      "bookings_total",
			Help:      "Booking attempts by outcome",
		}, []string{"outcome"}),
		slotLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "booking",
			Subsystem: "slots",
			Name:      "query_latency_seconds",
			Help:      "Latency of slot generation",
			Buckets:   prometheus.DefBuckets,
		}, []string{"result"}),
		completionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "booking",
			Subsystem: "completion",
			Name:      "completed_total",
			Help:      "Bookings marked completed",
		}, []string{"source"}),
		sessionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "booking",
			Subsystem: "session",
			Name:      "tokens_total",
			Help:      "Session token requests by outcome",
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.slotLatency, m.completionsTotal, m.sessionsTotal)
	return m
}

func (m *BookingMetrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveSlotQuery(result string, seconds float64) {
	if m == nil {
		return
	}
	m.slotLatency.WithLabelValues(result).Observe(seconds)
}

func (m *BookingMetrics) ObserveCompletions(source string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.completionsTotal.WithLabelValues(source).Add(float64(n))
}

func (m *BookingMetrics) ObserveSession(outcome string) {
	if m == nil {
		return
	}
	m.sessionsTotal.WithLabelValues(outcome).Inc()
}
