package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// PipelineLogger provides dedicated logging for prediction runs.
type PipelineLogger struct {
	*logrus.Entry
}

// NewPipelineLogger creates a new pipeline logger.
func NewPipelineLogger(baseLogger *logrus.Logger) *PipelineLogger {
	return &PipelineLogger{
		Entry: baseLogger.WithField("component", "pipeline"),
	}
}

// WithRun scopes the logger to one run.
func (pl *PipelineLogger) WithRun(runID string) *PipelineLogger {
	return &PipelineLogger{Entry: pl.WithField("run_id", runID)}
}

// LogLeagueLoaded logs the result of loading a league's games.
func (pl *PipelineLogger) LogLeagueLoaded(league, source string, games, startSeason, endSeason int, duration time.Duration) {
	pl.WithFields(logrus.Fields{
		"league":       league,
		"source":       source,
		"games":        games,
		"start_season": startSeason,
		"end_season":   endSeason,
		"duration_ms":  duration.Milliseconds(),
	}).Info("League games loaded")
}

// LogLeagueSkipped logs a league that produced no predictions.
func (pl *PipelineLogger) LogLeagueSkipped(league, reason string) {
	pl.WithFields(logrus.Fields{
		"league":     league,
		"reason":     reason,
		"event_type": "skip",
	}).Warn("League skipped")
}

// LogCycle logs one walk-forward cycle.
func (pl *PipelineLogger) LogCycle(league, kind string, cutoff time.Time, trainRows, testRows int) {
	pl.WithFields(logrus.Fields{
		"league":     league,
		"kind":       kind,
		"cutoff":     cutoff.Format("2006-01-02"),
		"train_rows": trainRows,
		"test_rows":  testRows,
	}).Debug("Walk-forward cycle completed")
}

// LogBacktestSummary logs the out-of-sample quality of a league run.
func (pl *PipelineLogger) LogBacktestSummary(league string, cycles, predictions int, brier, logLoss, auc, totalsMAE float64) {
	pl.WithFields(logrus.Fields{
		"league":      league,
		"cycles":      cycles,
		"predictions": predictions,
		"brier":       brier,
		"log_loss":    logLoss,
		"auc":         auc,
		"totals_mae":  totalsMAE,
	}).Info("Backtest summary")
}

// LogCrossValidation logs training-time evaluation of one model kind.
func (pl *PipelineLogger) LogCrossValidation(league, kind string, folds int, metrics map[string]float64) {
	fields := logrus.Fields{
		"league": league,
		"kind":   kind,
		"folds":  folds,
	}
	for k, v := range metrics {
		fields[k] = v
	}
	pl.WithFields(fields).Info("Cross-validation completed")
}

// LogPredictionsWritten logs persisted or rendered prediction rows.
func (pl *PipelineLogger) LogPredictionsWritten(league, sink string, rows int) {
	pl.WithFields(logrus.Fields{
		"league": league,
		"sink":   sink,
		"rows":   rows,
	}).Info("Predictions written")
}

// LogRunCompleted logs the end of a run.
func (pl *PipelineLogger) LogRunCompleted(leagues, predictions int, duration time.Duration, err error) {
	entry := pl.WithFields(logrus.Fields{
		"leagues":     leagues,
		"predictions": predictions,
		"duration_ms": duration.Milliseconds(),
	})
	if err != nil {
		entry.WithError(err).Error("Prediction run failed")
		return
	}
	entry.Info("Prediction run completed")
}
