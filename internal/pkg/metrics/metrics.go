package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the application's prometheus collectors
type Metrics struct {
	// HTTP requests (method, path, status_code)
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP latency (method, path)
	HTTPRequestDuration *prometheus.HistogramVec

	// Event service calls (operation: search/get/create/update/delete, status: success/not_found/invalid/locked/error)
	EventOperationsTotal *prometheus.CounterVec

	// Per-event mutation lock (operation: acquire/release, status: success/failed)
	MutationLockDuration *prometheus.HistogramVec

	// Events currently stored
	EventsStored prometheus.Gauge
}

// New registers the collectors with the default registry
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the collectors with reg
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		EventOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "event_operations_total",
				Help: "Total number of event service operations",
			},
			[]string{"operation", "status"},
		),
		MutationLockDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mutation_lock_duration_seconds",
				Help:    "Time spent acquiring and releasing per-event mutation locks",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation", "status"},
		),
		EventsStored: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "events_stored",
				Help: "Current number of stored events",
			},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.EventOperationsTotal,
		m.MutationLockDuration,
		m.EventsStored,
	)

	return m
}

var defaultMetrics *Metrics

// Init creates the default metrics instance
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

// Get returns the default metrics instance, nil before Init
func Get() *Metrics {
	return defaultMetrics
}
