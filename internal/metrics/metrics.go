package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/BruksfildServices01/booking-flow/internal/wizard"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	FlowTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_flow_transitions_total",
			Help: "Booking flow engine transitions",
		},
		[]string{"action", "step"},
	)

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "booking_flow_active_sessions",
			Help: "Booking flows held in memory",
		},
	)
)

var once sync.Once

func Init() {
	once.Do(func() {
		prometheus.MustRegister(RequestsTotal)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(FlowTransitions)
		prometheus.MustRegister(ActiveSessions)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveFlow counts engine transitions by action and the step they left.
func ObserveFlow(ev wizard.Event) {
	FlowTransitions.WithLabelValues(ev.Action, string(ev.From.Step)).Inc()
}
