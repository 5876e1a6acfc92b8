package backtest

import (
	"context"
	"time"

	"github.com/maschh/sports-edge/internal/features"
	"github.com/maschh/sports-edge/internal/metrics"
	"github.com/maschh/sports-edge/internal/ml"
	"github.com/maschh/sports-edge/internal/models"
)

// CycleResult summarises one classification cycle. Metrics cover the test
// rows whose outcome is known.
type CycleResult struct {
	Cutoff    time.Time                `json:"cutoff"`
	TestEnd   time.Time                `json:"test_end"`
	TrainRows int                      `json:"train_rows"`
	TestRows  int                      `json:"test_rows"`
	Metrics   ml.ClassificationMetrics `json:"metrics"`
}

// WalkForwardResult holds the out-of-sample predictions of a walk-forward run
type WalkForwardResult struct {
	Predictions []models.Prediction `json:"predictions"`
	Cycles      []CycleResult       `json:"cycles"`
}

// Empty reports whether no cycle ran
func (r *WalkForwardResult) Empty() bool {
	return len(r.Predictions) == 0
}

// Cutoffs returns the cutoff of every cycle in order
func (r *WalkForwardResult) Cutoffs() []time.Time {
	out := make([]time.Time, len(r.Cycles))
	for i, c := range r.Cycles {
		out[i] = c.Cutoff
	}
	return out
}

// Metrics evaluates all labelled predictions together
func (r *WalkForwardResult) Metrics() ml.ClassificationMetrics {
	var y, p []float64
	for _, pred := range r.Predictions {
		if pred.HomeWin == nil {
			continue
		}
		y = append(y, *pred.HomeWin)
		p = append(p, pred.ProbHome)
	}
	return ml.EvaluateClassifier(y, p)
}

type classifierCycle struct {
	result      CycleResult
	predictions []models.Prediction
}

// WalkForward trains a fresh classifier per cycle on rows dated at or before
// the cutoff and predicts the home-win probability of the following cadence
// window. Rows with an unknown outcome are never trained on but are still
// predicted. A date span shorter than the initial window yields an empty
// result and no error.
func WalkForward(ctx context.Context, rows []models.FeatureRow, cfg Config, factory ml.ClassifierFactory) (*WalkForwardResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cols := columnsOr(cfg.ClassifierColumns, features.ClassifierColumns)
	windows := Schedule(rows, cfg)

	cycles, err := runCycles(ctx, windows, cfg.Parallel, func(w Window) (classifierCycle, error) {
		return fitClassifierCycle(rows, w, cols, factory)
	})
	if err != nil {
		return nil, err
	}

	result := &WalkForwardResult{}
	for _, c := range cycles {
		result.Cycles = append(result.Cycles, c.result)
		result.Predictions = append(result.Predictions, c.predictions...)
	}
	return result, nil
}

func fitClassifierCycle(rows []models.FeatureRow, w Window, cols []string, factory ml.ClassifierFactory) (classifierCycle, error) {
	var X [][]float64
	var y []float64
	for _, i := range w.Train {
		if rows[i].HomeWin == nil {
			continue
		}
		X = append(X, rows[i].Vector(cols))
		y = append(y, *rows[i].HomeWin)
	}

	model := factory()
	start := time.Now()
	if err := model.Fit(X, y); err != nil {
		metrics.RecordCycle("classifier", "failure", time.Since(start).Seconds())
		return classifierCycle{}, &CycleError{Cutoff: w.Cutoff, TestEnd: w.TestEnd, TrainRows: len(X), Err: err}
	}
	metrics.RecordCycle("classifier", "success", time.Since(start).Seconds())

	testX := make([][]float64, len(w.Test))
	for k, i := range w.Test {
		testX[k] = rows[i].Vector(cols)
	}
	probs, err := model.PredictProba(testX)
	if err != nil {
		return classifierCycle{}, &CycleError{Cutoff: w.Cutoff, TestEnd: w.TestEnd, TrainRows: len(X), Err: err}
	}

	out := classifierCycle{predictions: make([]models.Prediction, len(w.Test))}
	var labels, scored []float64
	for k, i := range w.Test {
		out.predictions[k] = models.Prediction{
			Date:     rows[i].Date,
			Home:     rows[i].Home,
			Away:     rows[i].Away,
			HomeWin:  rows[i].HomeWin,
			ProbHome: probs[k],
			Cutoff:   w.Cutoff,
		}
		if rows[i].HomeWin != nil {
			labels = append(labels, *rows[i].HomeWin)
			scored = append(scored, probs[k])
		}
	}
	out.result = CycleResult{
		Cutoff:    w.Cutoff,
		TestEnd:   w.TestEnd,
		TrainRows: len(X),
		TestRows:  len(w.Test),
		Metrics:   ml.EvaluateClassifier(labels, scored),
	}
	return out, nil
}
