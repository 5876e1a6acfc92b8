package backtest

import (
	"context"
	"time"

	"github.com/maschh/sports-edge/internal/features"
	"github.com/maschh/sports-edge/internal/metrics"
	"github.com/maschh/sports-edge/internal/ml"
	"github.com/maschh/sports-edge/internal/models"
)

// TotalsCycleResult summarises one regression cycle
type TotalsCycleResult struct {
	Cutoff    time.Time            `json:"cutoff"`
	TestEnd   time.Time            `json:"test_end"`
	TrainRows int                  `json:"train_rows"`
	TestRows  int                  `json:"test_rows"`
	Metrics   ml.RegressionMetrics `json:"metrics"`
}

// TotalsResult holds the out-of-sample total predictions of a walk-forward run
type TotalsResult struct {
	Predictions []models.TotalPrediction `json:"predictions"`
	Cycles      []TotalsCycleResult      `json:"cycles"`
}

// Empty reports whether no cycle ran
func (r *TotalsResult) Empty() bool {
	return len(r.Predictions) == 0
}

// MAE is the mean absolute error over every prediction with a known total
func (r *TotalsResult) MAE() float64 {
	var y, pred []float64
	for _, p := range r.Predictions {
		if p.TotalPoints == nil {
			continue
		}
		y = append(y, *p.TotalPoints)
		pred = append(pred, p.PredTotal)
	}
	return ml.MeanAbsoluteError(y, pred)
}

// Index maps each prediction by game key for joining onto classifier output
func (r *TotalsResult) Index() map[models.GameKey]models.TotalPrediction {
	out := make(map[models.GameKey]models.TotalPrediction, len(r.Predictions))
	for _, p := range r.Predictions {
		out[p.Key()] = p
	}
	return out
}

type regressorCycle struct {
	result      TotalsCycleResult
	predictions []models.TotalPrediction
}

// TotalsWalkForward runs the walk-forward schedule with a regressor on the
// combined score. Rows without a known total are dropped from training.
func TotalsWalkForward(ctx context.Context, rows []models.FeatureRow, cfg Config, factory ml.RegressorFactory) (*TotalsResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cols := columnsOr(cfg.TotalsColumns, features.TotalsColumns)
	windows := Schedule(rows, cfg)

	cycles, err := runCycles(ctx, windows, cfg.Parallel, func(w Window) (regressorCycle, error) {
		return fitRegressorCycle(rows, w, cols, factory)
	})
	if err != nil {
		return nil, err
	}

	result := &TotalsResult{}
	for _, c := range cycles {
		result.Cycles = append(result.Cycles, c.result)
		result.Predictions = append(result.Predictions, c.predictions...)
	}
	return result, nil
}

func fitRegressorCycle(rows []models.FeatureRow, w Window, cols []string, factory ml.RegressorFactory) (regressorCycle, error) {
	var X [][]float64
	var y []float64
	for _, i := range w.Train {
		if rows[i].TotalPoints == nil {
			continue
		}
		X = append(X, rows[i].Vector(cols))
		y = append(y, *rows[i].TotalPoints)
	}

	model := factory()
	start := time.Now()
	if err := model.Fit(X, y); err != nil {
		metrics.RecordCycle("regressor", "failure", time.Since(start).Seconds())
		return regressorCycle{}, &CycleError{Cutoff: w.Cutoff, TestEnd: w.TestEnd, TrainRows: len(X), Err: err}
	}
	metrics.RecordCycle("regressor", "success", time.Since(start).Seconds())

	testX := make([][]float64, len(w.Test))
	for k, i := range w.Test {
		testX[k] = rows[i].Vector(cols)
	}
	pred, err := model.Predict(testX)
	if err != nil {
		return regressorCycle{}, &CycleError{Cutoff: w.Cutoff, TestEnd: w.TestEnd, TrainRows: len(X), Err: err}
	}

	out := regressorCycle{predictions: make([]models.TotalPrediction, len(w.Test))}
	var actual, scored []float64
	for k, i := range w.Test {
		out.predictions[k] = models.TotalPrediction{
			Date:        rows[i].Date,
			Home:        rows[i].Home,
			Away:        rows[i].Away,
			TotalPoints: rows[i].TotalPoints,
			PredTotal:   pred[k],
			Cutoff:      w.Cutoff,
		}
		if rows[i].TotalPoints != nil {
			actual = append(actual, *rows[i].TotalPoints)
			scored = append(scored, pred[k])
		}
	}
	out.result = TotalsCycleResult{
		Cutoff:    w.Cutoff,
		TestEnd:   w.TestEnd,
		TrainRows: len(X),
		TestRows:  len(w.Test),
		Metrics:   ml.EvaluateRegressor(actual, scored),
	}
	return out, nil
}
