package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maschh/sports-edge/internal/config"
)

func TestApplyFlagsOnlyOverridesChanged(t *testing.T) {
	opts := &options{}
	cmd := &cobra.Command{Use: "predict"}
	cmd.Flags().IntVar(&opts.startSeason, "start-season", 2019, "")
	cmd.Flags().IntVar(&opts.endSeason, "end-season", 2024, "")
	cmd.Flags().StringSliceVar(&opts.leagues, "leagues", nil, "")
	cmd.Flags().StringVar(&opts.htmlOut, "html-out", "predictions.html", "")
	cmd.Flags().StringVar(&opts.csvOut, "csv-out", "predictions.csv", "")
	require.NoError(t, cmd.ParseFlags([]string{"--start-season", "2021", "--leagues", "nfl,mlb", "--csv-out", ""}))

	cfg := &config.Config{
		Leagues:  []string{"NBA"},
		Backtest: config.BacktestConfig{StartSeason: 2019, EndSeason: 2023, InitialDays: 730, CadenceDays: 7},
		Output:   config.OutputConfig{HTMLPath: "a.html", CSVPath: "a.csv"},
	}
	applyFlags(cmd, opts, cfg)

	assert.Equal(t, 2021, cfg.Backtest.StartSeason)
	assert.Equal(t, 2023, cfg.Backtest.EndSeason)
	assert.Equal(t, []string{"nfl", "mlb"}, cfg.Leagues)
	assert.Equal(t, 730, cfg.Backtest.InitialDays)
	assert.Equal(t, "a.html", cfg.Output.HTMLPath)
	assert.Empty(t, cfg.Output.CSVPath)
}

func TestInvalidFlagsFailValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "reversed seasons", args: []string{"--start-season", "2025", "--end-season", "2020"}},
		{name: "unknown league", args: []string{"--leagues", "NHL"}},
		{name: "zero cadence", args: []string{"--cadence-days", "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := newRootCmd()
			var out bytes.Buffer
			root.SetOut(&out)
			root.SetErr(&out)
			args := append([]string{"backtest", "--config", filepath.Join(t.TempDir(), "missing.yaml")}, tt.args...)
			root.SetArgs(args)

			err := root.Execute()
			assert.ErrorContains(t, err, "invalid configuration")
		})
	}
}

func TestCommandsRegistered(t *testing.T) {
	root := newRootCmd()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"predict", "backtest", "serve"} {
		assert.True(t, names[want], want)
	}
}
