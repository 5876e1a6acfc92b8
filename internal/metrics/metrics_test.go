package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
	assert.Same(t, registry, InitRegistry())
}

func TestRecordPredictions(t *testing.T) {
	InitRegistry()

	before := testutil.ToFloat64(PredictionsEmittedTotal.WithLabelValues("nfl"))
	RecordPredictions("nfl", 12)
	assert.Equal(t, before+12, testutil.ToFloat64(PredictionsEmittedTotal.WithLabelValues("nfl")))
}

func TestRecordCycle(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name   string
		kind   string
		status string
	}{
		{name: "classifier success", kind: "classifier", status: "success"},
		{name: "classifier failure", kind: "classifier", status: "failure"},
		{name: "regressor success", kind: "regressor", status: "success"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(WalkForwardCyclesTotal.WithLabelValues(tt.kind, tt.status))
			RecordCycle(tt.kind, tt.status, 0.01)
			assert.Equal(t, before+1, testutil.ToFloat64(WalkForwardCyclesTotal.WithLabelValues(tt.kind, tt.status)))
		})
	}
}

func TestBacktestGauges(t *testing.T) {
	InitRegistry()

	UpdateBrierScore("nba", 0.21)
	UpdateTotalsMAE("nba", 9.5)

	assert.Equal(t, 0.21, testutil.ToFloat64(BacktestBrierScore.WithLabelValues("nba")))
	assert.Equal(t, 9.5, testutil.ToFloat64(BacktestTotalsMAE.WithLabelValues("nba")))
}

func TestPipelineCounters(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordPipelineRun("success", 1.5)
		RecordLeagueSkipped("cfb", "insufficient_history")
		RecordSourceFailure("trends")
		RecordCircuitBreakerTrip()
	})
}

func TestMetricsHandler(t *testing.T) {
	InitRegistry()
	RecordPredictions("mlb", 1)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sports_edge_predictions_emitted_total")
}
