package ml

import (
	"errors"
	"fmt"
)

// Fold holds index ranges of one time-ordered split: train [0, TestStart),
// test [TestStart, TestEnd)
type Fold struct {
	TestStart int
	TestEnd   int
}

// TimeSeriesSplit partitions n time-ordered rows into k expanding-window
// folds with equal test sizes of n/(k+1). Returns nil when n is too small.
func TimeSeriesSplit(n, k int) []Fold {
	if k <= 0 {
		return nil
	}
	testSize := n / (k + 1)
	if testSize == 0 {
		return nil
	}
	folds := make([]Fold, 0, k)
	first := n - k*testSize
	for i := 0; i < k; i++ {
		start := first + i*testSize
		folds = append(folds, Fold{TestStart: start, TestEnd: start + testSize})
	}
	return folds
}

// CrossValidateClassifier fits a fresh classifier on every fold and scores
// the fold's test rows. Folds whose training rows hold a single class are
// skipped.
func CrossValidateClassifier(factory ClassifierFactory, X [][]float64, y []float64, k int) ([]ClassificationMetrics, error) {
	var out []ClassificationMetrics
	for i, f := range TimeSeriesSplit(len(X), k) {
		model := factory()
		if err := model.Fit(X[:f.TestStart], y[:f.TestStart]); err != nil {
			if errors.Is(err, ErrSingleClass) {
				continue
			}
			return nil, fmt.Errorf("fold %d: %w", i, err)
		}
		p, err := model.PredictProba(X[f.TestStart:f.TestEnd])
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", i, err)
		}
		out = append(out, EvaluateClassifier(y[f.TestStart:f.TestEnd], p))
	}
	return out, nil
}

// CrossValidateRegressor fits a fresh regressor on every fold and reports
// the fold MAE
func CrossValidateRegressor(factory RegressorFactory, X [][]float64, y []float64, k int) ([]RegressionMetrics, error) {
	var out []RegressionMetrics
	for i, f := range TimeSeriesSplit(len(X), k) {
		model := factory()
		if err := model.Fit(X[:f.TestStart], y[:f.TestStart]); err != nil {
			return nil, fmt.Errorf("fold %d: %w", i, err)
		}
		pred, err := model.Predict(X[f.TestStart:f.TestEnd])
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", i, err)
		}
		out = append(out, EvaluateRegressor(y[f.TestStart:f.TestEnd], pred))
	}
	return out, nil
}
