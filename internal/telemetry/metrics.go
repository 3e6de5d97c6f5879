// Package telemetry exposes Prometheus metrics for the control server.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts handled requests by method, route and status
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "remotemouse_http_requests_total",
		Help: "HTTP requests handled by the control server.",
	}, []string{"method", "endpoint", "status"})

	// HTTPRequestDuration observes request latency
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "remotemouse_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"method", "endpoint", "status"})

	// AdmissionTotal counts session gate decisions
	AdmissionTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "remotemouse_admission_total",
		Help: "Session gate admission decisions.",
	}, []string{"result"})

	// CooldownRejectionsTotal counts requests refused during cooldown
	CooldownRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "remotemouse_cooldown_rejections_total",
		Help: "Control requests refused because of recent physical input.",
	})

	// ActuationsTotal counts injected input operations
	ActuationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "remotemouse_actuations_total",
		Help: "Input injection calls by operation and result.",
	}, []string{"op", "result"})

	// PhysicalInputEventsTotal counts host input events seen by the watchdog
	PhysicalInputEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "remotemouse_physical_input_events_total",
		Help: "Host input events observed, split by whether they were recorded.",
	}, []string{"recorded"})
)

// Handler exposes the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
