// Package metrics exposes Prometheus collectors for the scraper service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pagesFetchedTotal      *prometheus.CounterVec
	entriesEmittedTotal    *prometheus.CounterVec
	structuralMissesTotal  *prometheus.CounterVec
	gridsDroppedTotal      *prometheus.CounterVec
	sourceRunsTotal        *prometheus.CounterVec
	sourceRunSeconds       *prometheus.HistogramVec
	fetchSeconds           *prometheus.HistogramVec
	activeWorkers          prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		pagesFetchedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warn_pages_fetched_total",
				Help: "Total number of source pages fetched, labeled by state and status.",
			},
			[]string{"state", "status"},
		)

		entriesEmittedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warn_entries_emitted_total",
				Help: "Total number of notice entries emitted, labeled by state.",
			},
			[]string{"state"},
		)

		structuralMissesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warn_structural_misses_total",
				Help: "Documents where no table matched the configured anchor, labeled by state.",
			},
			[]string{"state"},
		)

		gridsDroppedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warn_grids_dropped_total",
				Help: "PDF grids dropped for column count mismatch, labeled by state.",
			},
			[]string{"state"},
		)

		sourceRunsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warn_source_runs_total",
				Help: "Total number of source runs processed, labeled by status.",
			},
			[]string{"status"},
		)

		sourceRunSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "warn_source_run_seconds",
				Help:    "Histogram of end-to-end source run durations.",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"state"},
		)

		fetchSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "warn_fetch_seconds",
				Help:    "Histogram of source page fetch durations.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"state"},
		)

		activeWorkers = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "warn_active_workers",
				Help: "Number of workers currently processing a source.",
			},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveFetch records a page fetch and its duration.
func ObserveFetch(state string, status string, seconds float64) {
	if pagesFetchedTotal == nil {
		return
	}
	pagesFetchedTotal.WithLabelValues(state, status).Inc()
	fetchSeconds.WithLabelValues(state).Observe(seconds)
}

// ObserveEntries adds to the emitted entry counter.
func ObserveEntries(state string, count int) {
	if entriesEmittedTotal == nil || count <= 0 {
		return
	}
	entriesEmittedTotal.WithLabelValues(state).Add(float64(count))
}

// ObserveStructuralMiss increments the structural miss counter.
func ObserveStructuralMiss(state string) {
	if structuralMissesTotal == nil {
		return
	}
	structuralMissesTotal.WithLabelValues(state).Inc()
}

// ObserveGridDropped increments the dropped grid counter.
func ObserveGridDropped(state string) {
	if gridsDroppedTotal == nil {
		return
	}
	gridsDroppedTotal.WithLabelValues(state).Inc()
}

// ObserveRun records a completed source run.
func ObserveRun(state string, status string, seconds float64) {
	if sourceRunsTotal == nil {
		return
	}
	sourceRunsTotal.WithLabelValues(status).Inc()
	sourceRunSeconds.WithLabelValues(state).Observe(seconds)
}

// WorkerStarted increments the active worker gauge.
func WorkerStarted() {
	if activeWorkers == nil {
		return
	}
	activeWorkers.Inc()
}

// WorkerStopped decrements the active worker gauge.
func WorkerStopped() {
	if activeWorkers == nil {
		return
	}
	activeWorkers.Dec()
}
