package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"nailsalon/internal/scheduling"
)

// Metrics holds the booking counters exported on /metrics.
type Metrics struct {
	AppointmentsCreated prometheus.Counter
	BookingRejections   *prometheus.CounterVec
	StatusTransitions   *prometheus.CounterVec
	Notifications       *prometheus.CounterVec
}

// NewMetrics registers the counters on reg. Tests pass a fresh
// prometheus.NewRegistry() to avoid duplicate registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		AppointmentsCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: "salon",
			Name:      "appointments_created_total",
			Help:      "Total number of appointments booked",
		}),
		BookingRejections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Name:      "booking_rejections_total",
			Help:      "Bookings and reschedules rejected by validation",
		}, []string{"kind"}),
		StatusTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Name:      "status_transitions_total",
			Help:      "Appointment status changes applied",
		}, []string{"from", "to"}),
		Notifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Name:      "notifications_total",
			Help:      "Client notifications sent by channel and result",
		}, []string{"channel", "result"}),
	}
}

func (m *Metrics) rejected(err error) {
	if m == nil {
		return
	}
	if kind, ok := scheduling.KindOf(err); ok {
		m.BookingRejections.WithLabelValues(string(kind)).Inc()
	}
}

func (m *Metrics) transitioned(from, to scheduling.Status, n int) {
	if m == nil || n == 0 {
		return
	}
	m.StatusTransitions.WithLabelValues(string(from), string(to)).Add(float64(n))
}

func (m *Metrics) created() {
	if m == nil {
		return
	}
	m.AppointmentsCreated.Inc()
}

func (m *Metrics) notified(channel string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Notifications.WithLabelValues(channel, result).Inc()
}
