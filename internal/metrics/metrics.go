// README: Prometheus collectors for the API and the fare engine.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the API
	Registry = prometheus.NewRegistry()
	// HTTPRequests counts requests by method, route and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// FareCalculations counts route calculations by outcome (ok or error kind)
	FareCalculations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "fare_calculations_total", Help: "Route fare calculations by outcome."},
		[]string{"outcome"},
	)
	// FareTotals observes computed fare totals
	FareTotals = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "fare_total", Help: "Computed fare totals.", Buckets: []float64{10, 20, 35, 50, 75, 100, 150, 250, 500}},
	)
	// CollaboratorLatency tracks geocoding and routing call latency in seconds
	CollaboratorLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "collaborator_latency_seconds", Help: "Geocoding/routing call latency in seconds.", Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10}},
		[]string{"collaborator", "status"},
	)
)

// RegisterDefault registers collectors to the API registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(FareCalculations)
		Registry.MustRegister(FareTotals)
		Registry.MustRegister(CollaboratorLatency)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
