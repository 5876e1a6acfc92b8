package ml

import "fmt"

// Classifier predicts the probability of the positive class
type Classifier interface {
	Fit(X [][]float64, y []float64) error
	PredictProba(X [][]float64) ([]float64, error)
}

// Regressor predicts a continuous target
type Regressor interface {
	Fit(X [][]float64, y []float64) error
	Predict(X [][]float64) ([]float64, error)
}

// ClassifierFactory builds a fresh, unfitted classifier. Every walk-forward
// cycle calls it once so no cycle shares model state with another.
type ClassifierFactory func() Classifier

// RegressorFactory builds a fresh, unfitted regressor
type RegressorFactory func() Regressor

func checkMatrix(X [][]float64, y []float64) (int, error) {
	if len(X) == 0 {
		return 0, ErrEmptyTrainingSet
	}
	if y != nil && len(y) != len(X) {
		return 0, fmt.Errorf("%w: %d rows, %d labels", ErrDimensionMismatch, len(X), len(y))
	}
	width := len(X[0])
	for i, row := range X {
		if len(row) != width {
			return 0, fmt.Errorf("%w: row %d has %d columns, want %d", ErrDimensionMismatch, i, len(row), width)
		}
	}
	return width, nil
}
