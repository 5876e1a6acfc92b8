package service

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maschh/sports-edge/internal/backtest"
	"github.com/maschh/sports-edge/internal/datasource"
	"github.com/maschh/sports-edge/internal/edge"
	"github.com/maschh/sports-edge/internal/features"
	"github.com/maschh/sports-edge/internal/logger"
	"github.com/maschh/sports-edge/internal/ml"
	"github.com/maschh/sports-edge/internal/models"
	"github.com/maschh/sports-edge/internal/repository"
)

var seasonStart = time.Date(2022, 9, 1, 0, 0, 0, 0, time.UTC)

type fakeSource struct {
	league models.League
	games  []models.Game
	err    error
	calls  int
}

func (f *fakeSource) FetchGames(context.Context, int, int) ([]models.Game, error) {
	f.calls++
	return f.games, f.err
}

func (f *fakeSource) League() models.League { return f.league }

func (f *fakeSource) Name() string { return "fake-" + string(f.league) }

// syntheticGames plays one game per day among four teams
func syntheticGames(days int) []models.Game {
	teams := []string{"ATL", "BOS", "CHI", "DAL"}
	games := make([]models.Game, 0, days)
	for i := 0; i < days; i++ {
		home := teams[i%4]
		away := teams[(i+1+(i/4)%3)%4]
		games = append(games, models.NewGame(seasonStart.AddDate(0, 0, i), home, away, 20+(i*7)%11, 18+(i*5)%13))
	}
	return games
}

type meanClassifier struct{ rate float64 }

func (m *meanClassifier) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return ml.ErrEmptyTrainingSet
	}
	sum := 0.0
	for _, v := range y {
		sum += v
	}
	m.rate = sum / float64(len(y))
	return nil
}

func (m *meanClassifier) PredictProba(X [][]float64) ([]float64, error) {
	out := make([]float64, len(X))
	for i := range out {
		out[i] = m.rate
	}
	return out, nil
}

type meanRegressor struct{ mean float64 }

func (m *meanRegressor) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return ml.ErrEmptyTrainingSet
	}
	sum := 0.0
	for _, v := range y {
		sum += v
	}
	m.mean = sum / float64(len(y))
	return nil
}

func (m *meanRegressor) Predict(X [][]float64) ([]float64, error) {
	out := make([]float64, len(X))
	for i := range out {
		out[i] = m.mean
	}
	return out, nil
}

func quietLogger() *logger.PipelineLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logger.NewPipelineLogger(log)
}

func newTestService(t *testing.T, sources []datasource.GameSource, repo repository.PredictionRepository, opts Options) *PredictionService {
	t.Helper()
	pipeline, err := features.NewPipeline(features.DefaultEloConfig(), nil, features.Sources{}, nil)
	require.NoError(t, err)
	if opts.Backtest.InitialDays == 0 {
		opts.Backtest = backtest.Config{InitialDays: 120, CadenceDays: 7}
	}
	if opts.StartSeason == 0 {
		opts.StartSeason, opts.EndSeason = 2022, 2023
	}
	svc, err := NewPredictionService(Dependencies{
		Sources:    sources,
		Pipeline:   pipeline,
		Classifier: func() ml.Classifier { return &meanClassifier{} },
		Regressor:  func() ml.Regressor { return &meanRegressor{} },
		Repository: repo,
		Logger:     quietLogger(),
	}, opts)
	require.NoError(t, err)
	return svc
}

func TestRunProducesHorizonRecords(t *testing.T) {
	dir := t.TempDir()
	repo, err := repository.NewSQLitePredictionRepository(context.Background(), filepath.Join(dir, "p.db"))
	require.NoError(t, err)
	defer repo.Close()

	nfl := &fakeSource{league: models.LeagueNFL, games: syntheticGames(200)}
	nba := &fakeSource{league: models.LeagueNBA}
	svc := newTestService(t, []datasource.GameSource{nfl, nba}, repo, Options{
		HTMLPath: filepath.Join(dir, "out", "predictions.html"),
		CSVPath:  filepath.Join(dir, "out", "predictions.csv"),
	})

	result, err := svc.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Leagues, 2)
	assert.Empty(t, result.Leagues[0].SkipReason)
	assert.Equal(t, 200, result.Leagues[0].Games)
	assert.Equal(t, SkipNoGames, result.Leagues[1].SkipReason)

	require.NotEmpty(t, result.Records)
	latest := seasonStart.AddDate(0, 0, 199)
	for _, rec := range result.Records {
		assert.Equal(t, models.LeagueNFL, rec.League)
		assert.Equal(t, result.RunID, rec.RunID)
		assert.False(t, rec.Date.Before(latest.AddDate(0, 0, -DefaultHorizonDays)), rec.Date)
		require.NotNil(t, rec.PredTotal)
		assert.Equal(t, edge.LeanModelTotal, rec.TotalLean)
	}
	assert.Len(t, result.Records, DefaultHorizonDays+1)

	stored, err := repo.GetByRun(context.Background(), result.RunID)
	require.NoError(t, err)
	assert.Len(t, stored, len(result.Records))

	assert.FileExists(t, filepath.Join(dir, "out", "predictions.html"))
	assert.FileExists(t, filepath.Join(dir, "out", "predictions.csv"))

	m := svc.Metrics()
	assert.Equal(t, 1, m.Leagues)
	assert.Equal(t, 1, m.SkippedLeagues)
	assert.Equal(t, len(result.Records), m.Persisted)
}

func TestRunSkipsLeagues(t *testing.T) {
	tests := []struct {
		name   string
		source *fakeSource
		want   string
	}{
		{name: "no games", source: &fakeSource{league: models.LeagueMLB}, want: SkipNoGames},
		{name: "short history", source: &fakeSource{league: models.LeagueMLB, games: syntheticGames(60)}, want: SkipInsufficientHistory},
		{name: "load failure", source: &fakeSource{league: models.LeagueMLB, err: datasource.NewDataSourceError("fake", datasource.ErrCodeServerError, "boom", nil)}, want: SkipLoadFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, []datasource.GameSource{tt.source}, nil, Options{})

			result, err := svc.Run(context.Background())
			require.NoError(t, err)
			require.Len(t, result.Leagues, 1)
			assert.Equal(t, tt.want, result.Leagues[0].SkipReason)
			assert.Empty(t, result.Records)
		})
	}
}

func TestRunDropsInvalidGames(t *testing.T) {
	games := syntheticGames(200)
	games = append(games, models.Game{Date: seasonStart, Home: "ATL", Away: "ATL"})
	negative := -3
	games = append(games, models.Game{Date: seasonStart, Home: "BOS", Away: "CHI", HomeScore: &negative, AwayScore: &negative})
	svc := newTestService(t, []datasource.GameSource{&fakeSource{league: models.LeagueNFL, games: games}}, nil, Options{})

	result, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 200, result.Leagues[0].Games)
	assert.Equal(t, 2, result.Leagues[0].Rejected)
	assert.Equal(t, 2, result.Metrics.ValidationErrors)
}

func TestRunCanceled(t *testing.T) {
	svc := newTestService(t, []datasource.GameSource{&fakeSource{league: models.LeagueNFL, games: syntheticGames(200)}}, nil, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvaluateReturnsSummaries(t *testing.T) {
	nfl := &fakeSource{league: models.LeagueNFL, games: syntheticGames(200)}
	cfb := &fakeSource{league: models.LeagueCFB}
	svc := newTestService(t, []datasource.GameSource{nfl, cfb}, nil, Options{CVFolds: 3})

	summaries, err := svc.Evaluate(context.Background())
	require.NoError(t, err)

	require.Len(t, summaries, 1)
	s := summaries[0]
	assert.Equal(t, models.LeagueNFL, s.League)
	assert.Equal(t, 79, s.Predictions)
	assert.Greater(t, s.Cycles, 0)
	assert.Equal(t, s.Predictions, s.TotalsRows)
	assert.Greater(t, s.Brier, 0.0)
}

func TestFormatHorizon(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	preds := []models.Prediction{
		{Date: day(1), Home: "A", Away: "B", ProbHome: 0.6},
		{Date: day(16), Home: "C", Away: "D", ProbHome: 0.4},
		{Date: day(30), Home: "A", Away: "C", ProbHome: 0.55},
		{Date: day(20), Home: "B", Away: "D", ProbHome: 0.5},
	}
	totals := map[models.GameKey]models.TotalPrediction{
		preds[2].Key(): {Date: day(30), Home: "A", Away: "C", PredTotal: 41},
	}

	records := FormatHorizon(uuid.New(), models.LeagueNFL, preds, totals, 14)

	require.Len(t, records, 3)
	assert.Equal(t, "C", records[0].Home)
	require.NotNil(t, records[1].PredTotal)
	assert.Equal(t, 41.0, *records[1].PredTotal)
	assert.Nil(t, records[2].PredTotal)
	assert.Equal(t, edge.LeanNoEdge, records[2].TotalLean)

	assert.Nil(t, FormatHorizon(uuid.New(), models.LeagueNFL, nil, nil, 14))
}

func TestNewPredictionServiceValidation(t *testing.T) {
	pipeline, err := features.NewPipeline(features.DefaultEloConfig(), nil, features.Sources{}, nil)
	require.NoError(t, err)
	deps := Dependencies{
		Sources:    []datasource.GameSource{&fakeSource{league: models.LeagueNFL}},
		Pipeline:   pipeline,
		Classifier: func() ml.Classifier { return &meanClassifier{} },
		Regressor:  func() ml.Regressor { return &meanRegressor{} },
	}
	valid := Options{StartSeason: 2019, EndSeason: 2024, Backtest: backtest.DefaultConfig()}

	tests := []struct {
		name   string
		mutate func(*Dependencies, *Options)
	}{
		{name: "no sources", mutate: func(d *Dependencies, _ *Options) { d.Sources = nil }},
		{name: "no pipeline", mutate: func(d *Dependencies, _ *Options) { d.Pipeline = nil }},
		{name: "no regressor", mutate: func(d *Dependencies, _ *Options) { d.Regressor = nil }},
		{name: "bad cadence", mutate: func(_ *Dependencies, o *Options) { o.Backtest.CadenceDays = 0 }},
		{name: "reversed seasons", mutate: func(_ *Dependencies, o *Options) { o.StartSeason = 2025 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, o := deps, valid
			tt.mutate(&d, &o)
			_, err := NewPredictionService(d, o)
			assert.Error(t, err)
		})
	}

	svc, err := NewPredictionService(deps, valid)
	require.NoError(t, err)
	assert.Equal(t, DefaultHorizonDays, svc.opts.HorizonDays)
}

func TestRunFailsOnPersistError(t *testing.T) {
	svc := newTestService(t, []datasource.GameSource{&fakeSource{league: models.LeagueNFL, games: syntheticGames(200)}}, failingRepo{}, Options{})

	_, err := svc.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errDiskFull))
}

var errDiskFull = errors.New("disk full")

type failingRepo struct {
	repository.PredictionRepository
}

func (failingRepo) SaveBatch(context.Context, []models.PredictionRecord) (int, error) {
	return 0, errDiskFull
}

func TestModelColumnsFollowPipelineWindows(t *testing.T) {
	pipeline, err := features.NewPipeline(features.DefaultEloConfig(), []int{4, 8}, features.Sources{}, nil)
	require.NoError(t, err)

	svc, err := NewPredictionService(Dependencies{
		Sources:    []datasource.GameSource{&fakeSource{league: models.LeagueNFL, games: syntheticGames(200)}},
		Pipeline:   pipeline,
		Classifier: func() ml.Classifier { return &meanClassifier{} },
		Regressor:  func() ml.Regressor { return &meanRegressor{} },
		Logger:     quietLogger(),
	}, Options{StartSeason: 2022, EndSeason: 2023, Backtest: backtest.Config{InitialDays: 120, CadenceDays: 7}})
	require.NoError(t, err)

	assert.Contains(t, svc.opts.Backtest.ClassifierColumns, features.FormColumn("home", 4))
	assert.Contains(t, svc.opts.Backtest.TotalsColumns, features.FormColumn("away", 8))
	assert.NotContains(t, svc.opts.Backtest.ClassifierColumns, features.FormColumn("home", 3))

	summaries, err := svc.Evaluate(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 1)
}
