package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Director metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "director",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "director",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"method", "endpoint"},
	)

	// Capability listings, by outcome
	CapabilityListingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "director",
			Subsystem: "capability",
			Name:      "listings_total",
			Help:      "Model listing calls made to populate the capability cache",
		},
		[]string{"status"},
	)

	// Resolutions, by how the model was chosen
	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "director",
			Subsystem: "capability",
			Name:      "resolutions_total",
			Help:      "Model resolutions by outcome (exact, downgrade, passthrough, degraded)",
		},
		[]string{"outcome"},
	)

	// Plans, by resulting mode or failure
	PlansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "director",
			Subsystem: "planner",
			Name:      "plans_total",
			Help:      "Director plans requested, labelled by mode or failure",
		},
		[]string{"outcome"},
	)

	// Generation attempts per model
	GenerationAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "director",
			Subsystem: "executor",
			Name:      "generation_attempts_total",
			Help:      "Image generation calls by model and HTTP status (0 on success or unknown)",
		},
		[]string{"model", "status"},
	)

	// Fallbacks triggered
	FallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "director",
			Subsystem: "executor",
			Name:      "fallbacks_total",
			Help:      "Retries against the fallback model, by the status that triggered them",
		},
		[]string{"status"},
	)

	// Remote call duration
	RemoteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "director",
			Subsystem: "remote",
			Name:      "call_duration_seconds",
			Help:      "Remote generative-AI call duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
		},
		[]string{"operation"},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordListing records a capability listing outcome
func RecordListing(ok bool) {
	status := "success"
	if !ok {
		status = "failure"
	}
	CapabilityListingsTotal.WithLabelValues(status).Inc()
}

// RecordResolution records how a preferred model was resolved
func RecordResolution(outcome string) {
	ResolutionsTotal.WithLabelValues(outcome).Inc()
}

// RecordPlan records a planning outcome
func RecordPlan(outcome string) {
	PlansTotal.WithLabelValues(outcome).Inc()
}

// RecordGenerationAttempt records one image generation call
func RecordGenerationAttempt(model string, status int) {
	GenerationAttemptsTotal.WithLabelValues(model, strconv.Itoa(status)).Inc()
}

// RecordFallback records a retry against the fallback model
func RecordFallback(status int) {
	FallbacksTotal.WithLabelValues(strconv.Itoa(status)).Inc()
}

// ObserveRemote records the duration of a remote call
func ObserveRemote(operation string, durationSec float64) {
	RemoteDuration.WithLabelValues(operation).Observe(durationSec)
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
