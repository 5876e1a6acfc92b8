package ml

import (
	"fmt"
	"math"

	"github.com/sajari/regression"
)

// LinearRegression is an ordinary least squares regressor. Columns that are
// constant in the training set, or a linear combination of other columns,
// are dropped before solving.
type LinearRegression struct {
	target    string
	columns   []string
	keep      []bool
	width     int
	model     *regression.Regression
	intercept float64
	fitted    bool
}

// NewLinearRegression creates an unfitted regressor. Column names are only
// used for labelling the fitted formula.
func NewLinearRegression(target string, columns []string) *LinearRegression {
	return &LinearRegression{target: target, columns: columns}
}

// NewLinearFactory returns a factory producing fresh regressors
func NewLinearFactory(target string, columns []string) RegressorFactory {
	return func() Regressor {
		return NewLinearRegression(target, columns)
	}
}

// Fit solves the least squares problem for X against y
func (m *LinearRegression) Fit(X [][]float64, y []float64) error {
	width, err := checkMatrix(X, y)
	if err != nil {
		return err
	}
	m.width = width
	m.keep = independent(X)
	m.model = nil

	kept := 0
	for _, k := range m.keep {
		if k {
			kept++
		}
	}
	if kept == 0 {
		m.intercept = mean(y)
		m.fitted = true
		return nil
	}

	r := new(regression.Regression)
	r.SetObserved(m.target)
	idx := 0
	for k, keep := range m.keep {
		if !keep {
			continue
		}
		name := fmt.Sprintf("x%d", k)
		if k < len(m.columns) {
			name = m.columns[k]
		}
		r.SetVar(idx, name)
		idx++
	}
	for i, row := range X {
		r.Train(regression.DataPoint(y[i], m.project(row)))
	}
	if err := r.Run(); err != nil {
		return fmt.Errorf("least squares fit failed: %w", err)
	}
	for i := 0; i <= kept; i++ {
		if c := r.Coeff(i); math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("%w: coefficient %d is %v", ErrNonFinite, i, c)
		}
	}
	m.model = r
	m.fitted = true
	return nil
}

// Predict returns the fitted value for each row
func (m *LinearRegression) Predict(X [][]float64) ([]float64, error) {
	if !m.fitted {
		return nil, ErrNotFitted
	}
	out := make([]float64, len(X))
	for i, row := range X {
		if len(row) != m.width {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrDimensionMismatch, i, len(row), m.width)
		}
		if m.model == nil {
			out[i] = m.intercept
			continue
		}
		v, err := m.model.Predict(m.project(row))
		if err != nil {
			return nil, fmt.Errorf("predict row %d: %w", i, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: row %d predicted %v", ErrNonFinite, i, v)
		}
		out[i] = v
	}
	return out, nil
}

// R2 returns the in-sample coefficient of determination, 0 when unfitted
func (m *LinearRegression) R2() float64 {
	if m.model == nil {
		return 0
	}
	return m.model.R2
}

// Formula returns the fitted equation for logging
func (m *LinearRegression) Formula() string {
	if m.model == nil {
		return fmt.Sprintf("Predicted = %.4f", m.intercept)
	}
	return m.model.Formula
}

func (m *LinearRegression) project(row []float64) []float64 {
	out := make([]float64, 0, len(row))
	for k, v := range row {
		if m.keep[k] {
			out = append(out, v)
		}
	}
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	s := 0.0
	for _, v := range values {
		s += v
	}
	return s / float64(len(values))
}
