// Package metrics exposes Prometheus collectors for the lifecycle engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	adapterRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marketplace",
			Subsystem: "adapter",
			Name:      "requests_total",
			Help:      "Total number of adapter HTTP requests.",
		},
		[]string{"operation", "outcome"},
	)

	adapterDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "marketplace",
			Subsystem: "adapter",
			Name:      "request_duration_seconds",
			Help:      "Duration of adapter HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
		[]string{"operation"},
	)

	shadowFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marketplace",
			Subsystem: "lifecycle",
			Name:      "shadow_fallbacks_total",
			Help:      "Total number of writes diverted to the shadow store.",
		},
		[]string{"operation"},
	)

	draftFlushes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marketplace",
			Subsystem: "scope",
			Name:      "draft_flushes_total",
			Help:      "Total number of scope draft flush attempts.",
		},
		[]string{"outcome"},
	)

	unmappedStates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marketplace",
			Subsystem: "state",
			Name:      "unmapped_total",
			Help:      "Total number of raw statuses that derived to the invalid state.",
		},
		[]string{"entity"},
	)
)

func init() {
	Registry.MustRegister(
		adapterRequests,
		adapterDuration,
		shadowFallbacks,
		draftFlushes,
		unmappedStates,
	)
}

// Handler returns an HTTP handler serving the registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveAdapterRequest records one adapter round trip.
func ObserveAdapterRequest(operation string, start time.Time, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	adapterRequests.WithLabelValues(operation, outcome).Inc()
	adapterDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// RecordFallback records a write diverted to the shadow store.
func RecordFallback(operation string) {
	shadowFallbacks.WithLabelValues(operation).Inc()
}

// RecordDraftFlush records a scope draft flush attempt.
func RecordDraftFlush(ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	draftFlushes.WithLabelValues(outcome).Inc()
}

// RecordUnmappedState records a raw status that derived to the invalid state.
func RecordUnmappedState(entity string) {
	unmappedStates.WithLabelValues(entity).Inc()
}
