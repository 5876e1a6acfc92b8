package metrics

import "github.com/prometheus/client_golang/prometheus"

// Backtest counter vectors
var (
	WalkForwardCyclesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sports_edge",
		Name:      "walk_forward_cycles_total",
		Help:      "Total number of walk-forward cycles by model kind and status",
	}, []string{"kind", "status"})
)

// Backtest histogram vectors
var (
	ModelFitDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sports_edge",
		Name:      "model_fit_duration_seconds",
		Help:      "Model fit duration in seconds by model kind",
		Buckets:   prometheus.DefBuckets,
	}, []string{"kind"})
)

// Backtest gauge vectors
var (
	BacktestBrierScore = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "sports_edge",
		Name:      "backtest_brier_score",
		Help:      "Brier score of the latest walk-forward run per league",
	}, []string{"league"})
	BacktestTotalsMAE = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "sports_edge",
		Name:      "backtest_totals_mae",
		Help:      "Mean absolute error of the latest totals run per league",
	}, []string{"league"})
)

// RecordCycle records one walk-forward cycle.
// kind should be one of: "classifier", "regressor"
// status should be one of: "success", "failure"
func RecordCycle(kind, status string, fitSeconds float64) {
	WalkForwardCyclesTotal.WithLabelValues(kind, status).Inc()
	ModelFitDuration.WithLabelValues(kind).Observe(fitSeconds)
}

// UpdateBrierScore sets the latest Brier score for a league.
func UpdateBrierScore(league string, score float64) {
	BacktestBrierScore.WithLabelValues(league).Set(score)
}

// UpdateTotalsMAE sets the latest totals MAE for a league.
func UpdateTotalsMAE(league string, mae float64) {
	BacktestTotalsMAE.WithLabelValues(league).Set(mae)
}
