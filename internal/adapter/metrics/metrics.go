// Package metrics exposes Prometheus instrumentation for the QR service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RecordsGenerated counts issued QR records, split by whether personal
	// data was attached.
	RecordsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qr_records_generated_total",
			Help: "Total QR records generated",
		},
		[]string{"with_profile"},
	)

	// Verifications counts verification requests by outcome.
	Verifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qr_verifications_total",
			Help: "Total verification lookups by result",
		},
		[]string{"result"},
	)

	// ImageDecodeFailures counts uploaded images with no readable QR code.
	ImageDecodeFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "qr_image_decode_failures_total",
			Help: "Total scanned images that contained no recognizable QR code",
		},
	)

	// RecordCacheHits counts verification lookups served from Redis.
	RecordCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "qr_record_cache_hits_total",
			Help: "Total record lookups served from the Redis cache",
		},
	)

	// RecordCacheMisses counts verification lookups that fell through to PostgreSQL.
	RecordCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "qr_record_cache_misses_total",
			Help: "Total record lookups that fell through to PostgreSQL",
		},
	)

	// CircuitBreakerState tracks circuit breaker state per component (0=closed, 1=half-open, 2=open).
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"component"},
	)

	// CircuitBreakerStateChanges counts circuit breaker transitions.
	CircuitBreakerStateChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_changes_total",
			Help: "Total circuit breaker state transitions",
		},
		[]string{"component", "state"},
	)
)

// Handler returns an http.Handler that serves Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
