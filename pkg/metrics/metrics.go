// Package metrics defines the Prometheus collectors this service registers,
// following the metrics package's shape: package-level collector vars plus
// an Init that registers them, so the HTTP handler mounted in cmd/server
// serves real application metrics rather than only the default Go/process
// collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks the duration of unary gRPC requests by method
	// and terminal status code.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "grpc_request_duration_seconds",
			Help:    "Time spent processing gRPC requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)

	// ActiveRequests tracks the number of unary gRPC requests currently
	// in flight.
	ActiveRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "grpc_active_requests",
			Help: "Number of active gRPC requests",
		},
	)

	// ObservationEventsDropped counts AX events dropped from a full
	// per-subscriber stream buffer (§4.7's bounded fan-out), by observation
	// name.
	ObservationEventsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "observation_events_dropped_total",
			Help: "AX events dropped because a subscriber's stream buffer was full",
		},
		[]string{"observation"},
	)
)

// Init registers every collector above with the default registry. Call once
// at startup, before the /metrics handler is mounted.
func Init() {
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(ActiveRequests)
	prometheus.MustRegister(ObservationEventsDropped)
}
