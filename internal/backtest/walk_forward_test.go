package backtest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maschh/sports-edge/internal/ml"
	"github.com/maschh/sports-edge/internal/models"
)

var epoch = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

func dayOf(n int) time.Time {
	return epoch.AddDate(0, 0, n)
}

func floatPtr(v float64) *float64 {
	return &v
}

// dailyRows builds one labelled game per listed day offset. The "day"
// feature carries the offset so fakes can observe what they were trained on.
func dailyRows(days ...int) []models.FeatureRow {
	rows := make([]models.FeatureRow, 0, len(days))
	for _, d := range days {
		label := float64(d % 2)
		rows = append(rows, models.FeatureRow{
			Date:        dayOf(d),
			Home:        "HOME",
			Away:        "AWAY",
			HomeWin:     floatPtr(label),
			TotalPoints: floatPtr(40 + 2*float64(d%7)),
			Features: map[string]float64{
				"day":  float64(d),
				"wk":   float64(d % 7),
				"flip": label,
			},
		})
	}
	return rows
}

func span(from, to int) []int {
	var out []int
	for d := from; d <= to; d++ {
		out = append(out, d)
	}
	return out
}

type fitLog struct {
	mu      sync.Mutex
	maxSeen []float64
}

func (l *fitLog) record(v float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.maxSeen = append(l.maxSeen, v)
}

// meanClassifier predicts the training base rate and records the latest
// training day it saw
type meanClassifier struct {
	log  *fitLog
	rate float64
}

func (m *meanClassifier) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return ml.ErrEmptyTrainingSet
	}
	latest := X[0][0]
	sum := 0.0
	for i := range X {
		if X[i][0] > latest {
			latest = X[i][0]
		}
		sum += y[i]
	}
	m.rate = sum / float64(len(y))
	if m.log != nil {
		m.log.record(latest)
	}
	return nil
}

func (m *meanClassifier) PredictProba(X [][]float64) ([]float64, error) {
	out := make([]float64, len(X))
	for i := range out {
		out[i] = m.rate
	}
	return out, nil
}

func meanFactory(log *fitLog) ml.ClassifierFactory {
	return func() ml.Classifier { return &meanClassifier{log: log} }
}

func dayConfig(initial, cadence int) Config {
	return Config{InitialDays: initial, CadenceDays: cadence, ClassifierColumns: []string{"day"}, TotalsColumns: []string{"day"}}
}

func TestWalkForwardTemporalSeparation(t *testing.T) {
	rows := dailyRows(span(0, 60)...)
	log := &fitLog{}

	result, err := WalkForward(context.Background(), rows, dayConfig(20, 7), meanFactory(log))
	require.NoError(t, err)
	require.False(t, result.Empty())

	for _, p := range result.Predictions {
		assert.True(t, p.Date.After(p.Cutoff), "prediction %s not after cutoff %s", p.Date, p.Cutoff)
		assert.False(t, p.Date.After(p.Cutoff.AddDate(0, 0, 7)))
	}
	require.Len(t, log.maxSeen, len(result.Cycles))
	for i, c := range result.Cycles {
		assert.LessOrEqual(t, dayOf(int(log.maxSeen[i])), c.Cutoff)
	}
}

func TestWalkForwardCutoffsAdvanceByCadence(t *testing.T) {
	rows := dailyRows(span(0, 60)...)

	result, err := WalkForward(context.Background(), rows, dayConfig(20, 7), meanFactory(nil))
	require.NoError(t, err)

	cutoffs := result.Cutoffs()
	require.Equal(t, []time.Time{dayOf(20), dayOf(27), dayOf(34), dayOf(41), dayOf(48), dayOf(55)}, cutoffs)
	assert.Equal(t, cutoffs, Cutoffs(rows, dayConfig(20, 7)))
}

func TestWalkForwardPredictsEveryLaterGameOnce(t *testing.T) {
	rows := dailyRows(span(0, 60)...)

	result, err := WalkForward(context.Background(), rows, dayConfig(20, 7), meanFactory(nil))
	require.NoError(t, err)

	seen := map[time.Time]int{}
	for _, p := range result.Predictions {
		seen[p.Date]++
	}
	assert.Len(t, seen, 40)
	for d, n := range seen {
		assert.Equal(t, 1, n, "game on %s predicted %d times", d, n)
	}
}

func TestWalkForwardEmptyInputs(t *testing.T) {
	tests := []struct {
		name string
		rows []models.FeatureRow
	}{
		{name: "no rows", rows: nil},
		{name: "span shorter than initial window", rows: dailyRows(span(0, 9)...)},
		{name: "single day", rows: dailyRows(0, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := WalkForward(context.Background(), tt.rows, dayConfig(30, 7), meanFactory(nil))
			require.NoError(t, err)
			assert.True(t, result.Empty())
			assert.Empty(t, result.Cutoffs())

			totals, err := TotalsWalkForward(context.Background(), tt.rows, dayConfig(30, 7), ml.NewLinearFactory("total", nil))
			require.NoError(t, err)
			assert.True(t, totals.Empty())
		})
	}
}

func TestWalkForwardStopsAtFirstEmptyTestWindow(t *testing.T) {
	rows := dailyRows(append(span(0, 9), span(30, 39)...)...)

	cutoffs := Cutoffs(rows, dayConfig(5, 2))
	assert.Equal(t, []time.Time{dayOf(5), dayOf(7)}, cutoffs)
}

func TestWalkForwardSingleClassCycleError(t *testing.T) {
	rows := dailyRows(span(0, 30)...)
	for i := range rows {
		rows[i].HomeWin = floatPtr(1)
	}

	_, err := WalkForward(context.Background(), rows, dayConfig(10, 7), ml.NewLogisticFactory(ml.DefaultLogisticConfig()))
	require.Error(t, err)
	assert.ErrorIs(t, err, ml.ErrSingleClass)

	var cycleErr *CycleError
	require.True(t, errors.As(err, &cycleErr))
	assert.Equal(t, dayOf(10), cycleErr.Cutoff)
	assert.Equal(t, dayOf(17), cycleErr.TestEnd)
	assert.Equal(t, 11, cycleErr.TrainRows)
	assert.Contains(t, cycleErr.Error(), "2020-01-11")
}

func TestWalkForwardUnknownOutcomes(t *testing.T) {
	rows := dailyRows(span(0, 30)...)
	// days 25 onwards are unplayed
	for i := 25; i < len(rows); i++ {
		rows[i].HomeWin = nil
		rows[i].TotalPoints = nil
	}
	log := &fitLog{}

	result, err := WalkForward(context.Background(), rows, dayConfig(20, 7), meanFactory(log))
	require.NoError(t, err)

	require.Len(t, result.Cycles, 2)
	assert.Equal(t, []float64{20, 24}, log.maxSeen)
	assert.Equal(t, 25, result.Cycles[1].TrainRows)
	assert.Equal(t, 3, result.Cycles[1].TestRows)
	assert.Equal(t, 0, result.Cycles[1].Metrics.N)

	last := result.Predictions[len(result.Predictions)-1]
	assert.Nil(t, last.HomeWin)
	assert.Equal(t, dayOf(30), last.Date)
}

func TestWalkForwardParallelMatchesSequential(t *testing.T) {
	rows := dailyRows(span(0, 90)...)
	cfg := Config{InitialDays: 30, CadenceDays: 5, ClassifierColumns: []string{"wk", "flip"}}
	logistic := ml.LogisticConfig{Iterations: 50, LearningRate: 0.1, L2: 0.001, Subsample: 0.8, Seed: 7}

	sequential, err := WalkForward(context.Background(), rows, cfg, ml.NewLogisticFactory(logistic))
	require.NoError(t, err)

	cfg.Parallel = 4
	parallel, err := WalkForward(context.Background(), rows, cfg, ml.NewLogisticFactory(logistic))
	require.NoError(t, err)

	assert.Equal(t, sequential, parallel)
}

func TestWalkForwardParallelReportsEarliestFailure(t *testing.T) {
	rows := dailyRows(span(0, 40)...)
	for i := range rows {
		rows[i].HomeWin = floatPtr(0)
	}
	cfg := dayConfig(10, 5)
	cfg.Parallel = 3

	_, err := WalkForward(context.Background(), rows, cfg, ml.NewLogisticFactory(ml.DefaultLogisticConfig()))
	var cycleErr *CycleError
	require.True(t, errors.As(err, &cycleErr))
	assert.Equal(t, dayOf(10), cycleErr.Cutoff)
}

func TestWalkForwardDoesNotMutateInput(t *testing.T) {
	rows := dailyRows(40, 3, 17, 25, 9, 33, 1, 12)
	before := make([]models.FeatureRow, len(rows))
	for i := range rows {
		before[i] = rows[i].Clone()
	}

	_, err := WalkForward(context.Background(), rows, dayConfig(10, 7), meanFactory(nil))
	require.NoError(t, err)
	assert.Equal(t, before, rows)
}

func TestWalkForwardCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WalkForward(ctx, dailyRows(span(0, 60)...), dayConfig(20, 7), meanFactory(nil))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWalkForwardMetrics(t *testing.T) {
	rows := dailyRows(span(0, 40)...)
	result, err := WalkForward(context.Background(), rows, dayConfig(20, 7), meanFactory(nil))
	require.NoError(t, err)

	m := result.Metrics()
	assert.Equal(t, 20, m.N)
	assert.InDelta(t, 0.25, m.Brier, 0.01)
}
