package backtest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maschh/sports-edge/internal/ml"
	"github.com/maschh/sports-edge/internal/models"
)

func TestTotalsWalkForwardRecoversLinearTotals(t *testing.T) {
	rows := dailyRows(span(0, 60)...)
	cfg := Config{InitialDays: 20, CadenceDays: 7, TotalsColumns: []string{"wk"}}

	result, err := TotalsWalkForward(context.Background(), rows, cfg, ml.NewLinearFactory("total_points", cfg.TotalsColumns))
	require.NoError(t, err)
	require.Len(t, result.Cycles, 6)
	require.Len(t, result.Predictions, 40)

	assert.InDelta(t, 0, result.MAE(), 1e-6)
	for _, c := range result.Cycles {
		assert.InDelta(t, 0, c.Metrics.MAE, 1e-6)
	}
}

func TestTotalsWalkForwardSkipsUnknownTargets(t *testing.T) {
	rows := dailyRows(span(0, 30)...)
	for i := 5; i < 10; i++ {
		rows[i].TotalPoints = nil
	}
	cfg := Config{InitialDays: 20, CadenceDays: 7, TotalsColumns: []string{"wk"}}

	result, err := TotalsWalkForward(context.Background(), rows, cfg, ml.NewLinearFactory("total_points", nil))
	require.NoError(t, err)
	require.NotEmpty(t, result.Cycles)
	assert.Equal(t, 16, result.Cycles[0].TrainRows)
}

func TestTotalsWalkForwardCycleError(t *testing.T) {
	rows := dailyRows(span(0, 30)...)
	for i := 0; i <= 20; i++ {
		rows[i].TotalPoints = nil
	}

	_, err := TotalsWalkForward(context.Background(), rows, dayConfig(20, 7), ml.NewLinearFactory("total_points", nil))
	var cycleErr *CycleError
	require.True(t, errors.As(err, &cycleErr))
	assert.ErrorIs(t, err, ml.ErrEmptyTrainingSet)
	assert.Equal(t, 0, cycleErr.TrainRows)
}

func TestTotalsIndexJoinsOnGameKey(t *testing.T) {
	rows := dailyRows(span(0, 30)...)
	totals, err := TotalsWalkForward(context.Background(), rows, dayConfig(20, 7), ml.NewLinearFactory("total_points", nil))
	require.NoError(t, err)
	wf, err := WalkForward(context.Background(), rows, dayConfig(20, 7), meanFactory(nil))
	require.NoError(t, err)

	index := totals.Index()
	for _, p := range wf.Predictions {
		_, ok := index[p.Key()]
		assert.True(t, ok, "missing total for %v", p.Key())
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "defaults", cfg: DefaultConfig()},
		{name: "parallel", cfg: Config{InitialDays: 30, CadenceDays: 1, Parallel: 8}},
		{name: "zero initial", cfg: Config{InitialDays: 0, CadenceDays: 7}, wantErr: true},
		{name: "negative cadence", cfg: Config{InitialDays: 30, CadenceDays: -1}, wantErr: true},
		{name: "negative parallel", cfg: Config{InitialDays: 30, CadenceDays: 7, Parallel: -2}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}

	_, err := WalkForward(context.Background(), nil, Config{}, meanFactory(nil))
	assert.Error(t, err)
}

func TestSummaryReports(t *testing.T) {
	rows := dailyRows(span(0, 40)...)
	wf, err := WalkForward(context.Background(), rows, dayConfig(20, 7), meanFactory(nil))
	require.NoError(t, err)
	totals, err := TotalsWalkForward(context.Background(), rows, dayConfig(20, 7), ml.NewLinearFactory("total_points", nil))
	require.NoError(t, err)

	summary := Summarize(models.LeagueNFL, wf, totals)
	assert.Equal(t, 3, summary.Cycles)
	assert.Equal(t, 20, summary.Predictions)
	assert.Equal(t, 20, summary.TotalsRows)
	assert.Contains(t, summary.ToJSON(), `"league":"NFL"`)

	console := GenerateConsoleReport([]Summary{summary})
	assert.Contains(t, console, "[NFL]")
	assert.Contains(t, console, "Cycles: 3")

	path := filepath.Join(t.TempDir(), "out", "summary.csv")
	require.NoError(t, GenerateCSVExport([]Summary{summary}, path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "league,cycles")
	assert.Contains(t, string(data), "NFL,3,20,20")
}
