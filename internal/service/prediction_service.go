// Package service runs the per-league prediction pipeline: load, enrich,
// walk-forward backtest, format, persist and render.
package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/maschh/sports-edge/internal/backtest"
	"github.com/maschh/sports-edge/internal/datasource"
	"github.com/maschh/sports-edge/internal/edge"
	"github.com/maschh/sports-edge/internal/features"
	"github.com/maschh/sports-edge/internal/logger"
	"github.com/maschh/sports-edge/internal/metrics"
	"github.com/maschh/sports-edge/internal/ml"
	"github.com/maschh/sports-edge/internal/models"
	"github.com/maschh/sports-edge/internal/report"
	"github.com/maschh/sports-edge/internal/repository"
)

// Skip reasons
const (
	SkipNoGames             = "no_games"
	SkipInsufficientHistory = "insufficient_history"
	SkipLoadFailed          = "load_failed"
)

// DefaultHorizonDays is how far back from the newest prediction rows are reported
const DefaultHorizonDays = 14

// Options controls a prediction run
type Options struct {
	StartSeason int
	EndSeason   int
	Backtest    backtest.Config
	// HorizonDays keeps predictions dated within this many days of the
	// league's newest prediction, 0 uses DefaultHorizonDays
	HorizonDays int
	// CVFolds enables training-time cross-validation when positive
	CVFolds  int
	HTMLPath string
	CSVPath  string
}

// Dependencies are the collaborators of a PredictionService
type Dependencies struct {
	Sources    []datasource.GameSource
	Pipeline   *features.Pipeline
	Classifier ml.ClassifierFactory
	Regressor  ml.RegressorFactory
	// Repository is optional; nil disables persistence
	Repository repository.PredictionRepository
	// Normalizer is optional; nil uses the built-in alias tables
	Normalizer *TeamNormalizer
	Logger     *logger.PipelineLogger
}

// LeagueResult is the outcome of one league
type LeagueResult struct {
	League   models.League
	Games    int
	Rejected int
	// SkipReason is set when the league produced no predictions
	SkipReason string
	Summary    backtest.Summary
	Records    []models.PredictionRecord
}

// RunResult is the outcome of a prediction run
type RunResult struct {
	RunID   uuid.UUID
	Leagues []LeagueResult
	Records []models.PredictionRecord
	Metrics RunMetrics
}

// PredictionService produces formatted predictions for every configured league
type PredictionService struct {
	deps       Dependencies
	opts       Options
	validator  *GameValidator
	normalizer *TeamNormalizer
	metrics    *RunMetrics
	now        func() time.Time
}

// NewPredictionService creates a new prediction service
func NewPredictionService(deps Dependencies, opts Options) (*PredictionService, error) {
	if len(deps.Sources) == 0 {
		return nil, fmt.Errorf("at least one game source is required")
	}
	if deps.Pipeline == nil {
		return nil, fmt.Errorf("feature pipeline is required")
	}
	if deps.Classifier == nil || deps.Regressor == nil {
		return nil, fmt.Errorf("classifier and regressor factories are required")
	}
	if err := opts.Backtest.Validate(); err != nil {
		return nil, err
	}
	if opts.StartSeason > opts.EndSeason {
		return nil, fmt.Errorf("start season %d is after end season %d", opts.StartSeason, opts.EndSeason)
	}
	if opts.HorizonDays <= 0 {
		opts.HorizonDays = DefaultHorizonDays
	}
	if len(opts.Backtest.ClassifierColumns) == 0 {
		opts.Backtest.ClassifierColumns = deps.Pipeline.ClassifierColumns()
	}
	if len(opts.Backtest.TotalsColumns) == 0 {
		opts.Backtest.TotalsColumns = deps.Pipeline.TotalsColumns()
	}
	if deps.Normalizer == nil {
		deps.Normalizer = NewTeamNormalizer()
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewPipelineLogger(logger.NewLogger("info", "development"))
	}
	return &PredictionService{
		deps:       deps,
		opts:       opts,
		validator:  NewGameValidator(deps.Logger),
		normalizer: deps.Normalizer,
		metrics:    NewRunMetrics(),
		now:        time.Now,
	}, nil
}

// Run predicts every league, then persists and renders the horizon rows
func (s *PredictionService) Run(ctx context.Context) (*RunResult, error) {
	start := time.Now()
	result, err := s.run(ctx)
	status := "success"
	if err != nil {
		status = "failure"
	}
	metrics.RecordPipelineRun(status, time.Since(start).Seconds())
	return result, err
}

func (s *PredictionService) run(ctx context.Context) (*RunResult, error) {
	s.metrics.Reset()
	runID := uuid.New()
	log := s.deps.Logger.WithRun(runID.String())

	result, err := s.predictLeagues(ctx, runID, log, true)
	if err != nil {
		s.metrics.Finish()
		log.LogRunCompleted(len(s.deps.Sources), 0, s.metrics.Snapshot().Duration, err)
		return nil, err
	}

	if err := s.persist(ctx, log, result.Records); err != nil {
		s.metrics.Finish()
		log.LogRunCompleted(len(result.Leagues), len(result.Records), s.metrics.Snapshot().Duration, err)
		return nil, err
	}
	if err := s.render(log, result.Records); err != nil {
		s.metrics.Finish()
		log.LogRunCompleted(len(result.Leagues), len(result.Records), s.metrics.Snapshot().Duration, err)
		return nil, err
	}

	s.metrics.Finish()
	result.Metrics = s.metrics.Snapshot()
	log.LogRunCompleted(len(result.Leagues), len(result.Records), result.Metrics.Duration, nil)
	return result, nil
}

// Evaluate runs the walk-forward backtests without formatting, persisting
// or rendering, and returns one summary per league that produced predictions
func (s *PredictionService) Evaluate(ctx context.Context) ([]backtest.Summary, error) {
	s.metrics.Reset()
	result, err := s.predictLeagues(ctx, uuid.New(), s.deps.Logger, false)
	if err != nil {
		return nil, err
	}
	var summaries []backtest.Summary
	for _, lr := range result.Leagues {
		if lr.SkipReason == "" {
			summaries = append(summaries, lr.Summary)
		}
	}
	return summaries, nil
}

// Metrics returns statistics of the latest run
func (s *PredictionService) Metrics() RunMetrics {
	return s.metrics.Snapshot()
}

func (s *PredictionService) predictLeagues(ctx context.Context, runID uuid.UUID, log *logger.PipelineLogger, format bool) (*RunResult, error) {
	result := &RunResult{RunID: runID}
	for _, src := range s.deps.Sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lr, err := s.runLeague(ctx, runID, log, src, format)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src.League(), err)
		}
		if lr.SkipReason != "" {
			s.metrics.RecordSkip(lr.Games, lr.Rejected)
			metrics.RecordLeagueSkipped(string(lr.League), lr.SkipReason)
			log.LogLeagueSkipped(string(lr.League), lr.SkipReason)
		} else {
			s.metrics.RecordLeague(lr.Games, lr.Rejected, len(lr.Records))
		}
		result.Leagues = append(result.Leagues, lr)
		result.Records = append(result.Records, lr.Records...)
	}
	return result, nil
}

func (s *PredictionService) runLeague(ctx context.Context, runID uuid.UUID, log *logger.PipelineLogger, src datasource.GameSource, format bool) (LeagueResult, error) {
	league := src.League()
	lr := LeagueResult{League: league}

	loadStart := time.Now()
	games, err := src.FetchGames(ctx, s.opts.StartSeason, s.opts.EndSeason)
	if err != nil {
		if ctx.Err() != nil {
			return lr, ctx.Err()
		}
		log.WithError(err).WithField("league", league).Error("Failed to load games")
		metrics.RecordSourceFailure(src.Name())
		lr.SkipReason = SkipLoadFailed
		return lr, nil
	}

	games = s.normalizer.Normalize(league, games)
	games, lr.Rejected = s.validator.Filter(league, games)
	lr.Games = len(games)
	log.LogLeagueLoaded(string(league), src.Name(), len(games), s.opts.StartSeason, s.opts.EndSeason, time.Since(loadStart))
	if len(games) == 0 {
		lr.SkipReason = SkipNoGames
		return lr, nil
	}

	rows, err := s.deps.Pipeline.Enrich(ctx, league, games)
	if err != nil {
		return lr, fmt.Errorf("enrich: %w", err)
	}

	wf, err := backtest.WalkForward(ctx, rows, s.opts.Backtest, s.deps.Classifier)
	if err != nil {
		return lr, fmt.Errorf("walk-forward: %w", err)
	}
	if wf.Empty() {
		lr.SkipReason = SkipInsufficientHistory
		return lr, nil
	}
	totals, err := backtest.TotalsWalkForward(ctx, rows, s.opts.Backtest, s.deps.Regressor)
	if err != nil {
		return lr, fmt.Errorf("totals walk-forward: %w", err)
	}

	for _, c := range wf.Cycles {
		log.LogCycle(string(league), "classifier", c.Cutoff, c.TrainRows, c.TestRows)
	}
	for _, c := range totals.Cycles {
		log.LogCycle(string(league), "regressor", c.Cutoff, c.TrainRows, c.TestRows)
	}

	lr.Summary = backtest.Summarize(league, wf, totals)
	metrics.UpdateBrierScore(string(league), lr.Summary.Brier)
	if !totals.Empty() {
		metrics.UpdateTotalsMAE(string(league), lr.Summary.TotalsMAE)
	}
	log.LogBacktestSummary(string(league), lr.Summary.Cycles, lr.Summary.Predictions,
		lr.Summary.Brier, lr.Summary.LogLoss, lr.Summary.AUC, lr.Summary.TotalsMAE)

	if s.opts.CVFolds > 0 {
		if err := s.crossValidate(log, league, rows); err != nil {
			return lr, fmt.Errorf("cross-validation: %w", err)
		}
	}

	if format {
		lr.Records = FormatHorizon(runID, league, wf.Predictions, totals.Index(), s.opts.HorizonDays)
		metrics.RecordPredictions(string(league), len(lr.Records))
	}
	return lr, nil
}

// FormatHorizon formats the predictions dated within horizonDays of the
// newest one, attaching the model total where one exists for the same game
func FormatHorizon(runID uuid.UUID, league models.League, preds []models.Prediction, totals map[models.GameKey]models.TotalPrediction, horizonDays int) []models.PredictionRecord {
	if len(preds) == 0 {
		return nil
	}
	latest := preds[0].Date
	for _, p := range preds[1:] {
		if p.Date.After(latest) {
			latest = p.Date
		}
	}
	horizonStart := latest.AddDate(0, 0, -horizonDays)

	var records []models.PredictionRecord
	for _, p := range preds {
		if p.Date.Before(horizonStart) {
			continue
		}
		var total *models.TotalPrediction
		if t, ok := totals[p.Key()]; ok {
			total = &t
		}
		records = append(records, edge.FormatRow(runID, league, p, total))
	}
	return records
}

func (s *PredictionService) crossValidate(log *logger.PipelineLogger, league models.League, rows []models.FeatureRow) error {
	var Xc, Xr [][]float64
	var yc, yr []float64
	for _, r := range rows {
		if r.HomeWin != nil {
			Xc = append(Xc, r.Vector(s.opts.Backtest.ClassifierColumns))
			yc = append(yc, *r.HomeWin)
		}
		if r.TotalPoints != nil {
			Xr = append(Xr, r.Vector(s.opts.Backtest.TotalsColumns))
			yr = append(yr, *r.TotalPoints)
		}
	}

	k := s.opts.CVFolds
	if len(Xc) > k {
		folds, err := ml.CrossValidateClassifier(s.deps.Classifier, Xc, yc, k)
		if err != nil {
			return err
		}
		log.LogCrossValidation(string(league), "classifier", len(folds), meanClassification(folds))
	}
	if len(Xr) > k {
		folds, err := ml.CrossValidateRegressor(s.deps.Regressor, Xr, yr, k)
		if err != nil {
			return err
		}
		log.LogCrossValidation(string(league), "regressor", len(folds), meanRegression(folds))
	}
	return nil
}

func meanClassification(folds []ml.ClassificationMetrics) map[string]float64 {
	out := map[string]float64{}
	if len(folds) == 0 {
		return out
	}
	aucFolds := 0
	for _, f := range folds {
		out["brier"] += f.Brier / float64(len(folds))
		out["log_loss"] += f.LogLoss / float64(len(folds))
		if !math.IsNaN(f.AUC) {
			out["auc"] += f.AUC
			aucFolds++
		}
	}
	if aucFolds > 0 {
		out["auc"] /= float64(aucFolds)
	}
	return out
}

func meanRegression(folds []ml.RegressionMetrics) map[string]float64 {
	out := map[string]float64{}
	for _, f := range folds {
		out["mae"] += f.MAE / float64(len(folds))
	}
	return out
}

func (s *PredictionService) persist(ctx context.Context, log *logger.PipelineLogger, records []models.PredictionRecord) error {
	if s.deps.Repository == nil || len(records) == 0 {
		return nil
	}
	n, err := s.deps.Repository.SaveBatch(ctx, records)
	if err != nil {
		return fmt.Errorf("persist predictions: %w", err)
	}
	s.metrics.RecordPersisted(n)
	log.LogPredictionsWritten("all", "repository", n)
	return nil
}

func (s *PredictionService) render(log *logger.PipelineLogger, records []models.PredictionRecord) error {
	if s.opts.HTMLPath == "" && s.opts.CSVPath == "" {
		return nil
	}
	sorted := append([]models.PredictionRecord(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	rows := report.NewRows(sorted)

	if s.opts.HTMLPath != "" {
		if err := report.WriteHTMLFile(s.opts.HTMLPath, rows, s.now()); err != nil {
			return err
		}
		log.LogPredictionsWritten("all", s.opts.HTMLPath, len(rows))
	}
	if s.opts.CSVPath != "" {
		if err := report.WriteCSVFile(s.opts.CSVPath, rows); err != nil {
			return err
		}
		log.LogPredictionsWritten("all", s.opts.CSVPath, len(rows))
	}
	return nil
}
