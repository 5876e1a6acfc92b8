package ml

import (
	"fmt"
	"math"
	"math/rand"
)

// LogisticConfig controls the gradient-descent logistic regression
type LogisticConfig struct {
	Iterations   int     `mapstructure:"iterations" validate:"gt=0"`
	LearningRate float64 `mapstructure:"learning_rate" validate:"gt=0"`
	L2           float64 `mapstructure:"l2" validate:"gte=0"`
	// Subsample is the share of rows used per iteration, 1 uses all rows
	Subsample float64 `mapstructure:"subsample" validate:"gt=0,lte=1"`
	Seed      int64   `mapstructure:"seed"`
}

// DefaultLogisticConfig fits on a seeded 80% row subsample per iteration
func DefaultLogisticConfig() LogisticConfig {
	return LogisticConfig{
		Iterations:   400,
		LearningRate: 0.15,
		L2:           0.001,
		Subsample:    0.8,
		Seed:         42,
	}
}

// LogisticRegression is a standardized, L2-regularized logistic model
type LogisticRegression struct {
	cfg     LogisticConfig
	scaler  *standardScaler
	weights []float64
	bias    float64
}

// NewLogisticRegression creates an unfitted model
func NewLogisticRegression(cfg LogisticConfig) *LogisticRegression {
	return &LogisticRegression{cfg: cfg}
}

// NewLogisticFactory returns a factory producing fresh models with cfg
func NewLogisticFactory(cfg LogisticConfig) ClassifierFactory {
	return func() Classifier {
		return NewLogisticRegression(cfg)
	}
}

// Fit trains on X against 0/1 labels y
func (m *LogisticRegression) Fit(X [][]float64, y []float64) error {
	width, err := checkMatrix(X, y)
	if err != nil {
		return err
	}
	positives := 0
	for _, label := range y {
		switch label {
		case 1:
			positives++
		case 0:
		default:
			return fmt.Errorf("%w: got %v", ErrInvalidLabel, label)
		}
	}
	if positives == 0 || positives == len(y) {
		return ErrSingleClass
	}

	m.scaler = fitScaler(X)
	Z := m.scaler.transformAll(X)
	m.weights = make([]float64, width)
	m.bias = 0

	rng := rand.New(rand.NewSource(m.cfg.Seed))
	grad := make([]float64, width)
	for iter := 0; iter < m.cfg.Iterations; iter++ {
		for k := range grad {
			grad[k] = 0
		}
		gradBias := 0.0
		used := 0
		for i, z := range Z {
			if m.cfg.Subsample < 1 && rng.Float64() >= m.cfg.Subsample {
				continue
			}
			residual := sigmoid(m.bias+dot(m.weights, z)) - y[i]
			for k := range grad {
				grad[k] += residual * z[k]
			}
			gradBias += residual
			used++
		}
		if used == 0 {
			continue
		}
		n := float64(used)
		for k := range m.weights {
			m.weights[k] -= m.cfg.LearningRate * (grad[k]/n + m.cfg.L2*m.weights[k])
		}
		m.bias -= m.cfg.LearningRate * gradBias / n
	}
	return nil
}

// PredictProba returns P(y=1) for each row
func (m *LogisticRegression) PredictProba(X [][]float64) ([]float64, error) {
	if m.weights == nil {
		return nil, ErrNotFitted
	}
	out := make([]float64, len(X))
	for i, row := range X {
		if len(row) != len(m.weights) {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrDimensionMismatch, i, len(row), len(m.weights))
		}
		out[i] = sigmoid(m.bias + dot(m.weights, m.scaler.transform(row)))
	}
	return out, nil
}

// Coefficients returns the fitted weights on the standardized scale
func (m *LogisticRegression) Coefficients() (bias float64, weights []float64) {
	return m.bias, append([]float64(nil), m.weights...)
}

func sigmoid(z float64) float64 {
	if z > 35 {
		return 1.0 - 1e-15
	}
	if z < -35 {
		return 1e-15
	}
	return 1.0 / (1.0 + math.Exp(-z))
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
