// Package metrics provides the centralized Prometheus registry for the prediction pipeline.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PipelineRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sports_edge",
		Name:      "pipeline_runs_total",
		Help:      "Total number of prediction pipeline runs by status",
	}, []string{"status"})
	PredictionsEmittedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sports_edge",
		Name:      "predictions_emitted_total",
		Help:      "Total number of formatted predictions by league",
	}, []string{"league"})
	LeaguesSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sports_edge",
		Name:      "leagues_skipped_total",
		Help:      "Total number of leagues skipped by reason",
	}, []string{"league", "reason"})
	SourceFetchFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sports_edge",
		Name:      "source_fetch_failures_total",
		Help:      "Total number of failed external fetches by source",
	}, []string{"source"})
	CircuitBreakerTripsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sports_edge",
		Name:      "circuit_breaker_trips_total",
		Help:      "Total number of HTTP client circuit breaker trips",
	})
)

// Histogram metrics
var (
	PipelineDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sports_edge",
		Name:      "pipeline_duration_seconds",
		Help:      "Duration of prediction pipeline runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register pipeline metrics
		registry.MustRegister(PipelineRunsTotal)
		registry.MustRegister(PredictionsEmittedTotal)
		registry.MustRegister(LeaguesSkippedTotal)
		registry.MustRegister(SourceFetchFailuresTotal)
		registry.MustRegister(CircuitBreakerTripsTotal)
		registry.MustRegister(PipelineDuration)

		// Register backtest metrics
		registry.MustRegister(WalkForwardCyclesTotal)
		registry.MustRegister(ModelFitDuration)
		registry.MustRegister(BacktestBrierScore)
		registry.MustRegister(BacktestTotalsMAE)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordPipelineRun records a finished pipeline run.
func RecordPipelineRun(status string, durationSeconds float64) {
	PipelineRunsTotal.WithLabelValues(status).Inc()
	PipelineDuration.Observe(durationSeconds)
}

// RecordPredictions adds n formatted predictions for a league.
func RecordPredictions(league string, n int) {
	PredictionsEmittedTotal.WithLabelValues(league).Add(float64(n))
}

// RecordLeagueSkipped records a league the pipeline did not predict.
func RecordLeagueSkipped(league, reason string) {
	LeaguesSkippedTotal.WithLabelValues(league, reason).Inc()
}

// RecordSourceFailure records an exhausted external fetch.
func RecordSourceFailure(source string) {
	SourceFetchFailuresTotal.WithLabelValues(source).Inc()
}

// RecordCircuitBreakerTrip records a circuit breaker trip event.
func RecordCircuitBreakerTrip() {
	CircuitBreakerTripsTotal.Inc()
}
