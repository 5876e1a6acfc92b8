package ml

import (
	"math"
	"sort"
)

// ClassificationMetrics summarises probabilistic predictions against labels
type ClassificationMetrics struct {
	Brier    float64 `json:"brier"`
	LogLoss  float64 `json:"logloss"`
	AUC      float64 `json:"auc"`
	Accuracy float64 `json:"accuracy"`
	N        int     `json:"n"`
}

// RegressionMetrics summarises continuous predictions against targets
type RegressionMetrics struct {
	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
	N    int     `json:"n"`
}

// EvaluateClassifier computes Brier score, log loss, AUC and accuracy.
// AUC is NaN when only one class is present.
func EvaluateClassifier(y, p []float64) ClassificationMetrics {
	m := ClassificationMetrics{N: len(y)}
	if len(y) == 0 {
		return m
	}
	m.Brier = BrierScore(y, p)
	m.LogLoss = LogLoss(y, p)
	m.AUC = AUC(y, p)
	correct := 0
	for i := range y {
		if (p[i] >= 0.5) == (y[i] == 1) {
			correct++
		}
	}
	m.Accuracy = float64(correct) / float64(len(y))
	return m
}

// EvaluateRegressor computes MAE and RMSE
func EvaluateRegressor(y, pred []float64) RegressionMetrics {
	m := RegressionMetrics{N: len(y)}
	if len(y) == 0 {
		return m
	}
	m.MAE = MeanAbsoluteError(y, pred)
	sq := 0.0
	for i := range y {
		d := y[i] - pred[i]
		sq += d * d
	}
	m.RMSE = math.Sqrt(sq / float64(len(y)))
	return m
}

// BrierScore is the mean squared error of probabilities
func BrierScore(y, p []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	s := 0.0
	for i := range y {
		d := p[i] - y[i]
		s += d * d
	}
	return s / float64(len(y))
}

// LogLoss is the mean negative log-likelihood with probabilities clipped
// to [1e-15, 1-1e-15]
func LogLoss(y, p []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	const eps = 1e-15
	s := 0.0
	for i := range y {
		q := math.Min(math.Max(p[i], eps), 1-eps)
		s -= y[i]*math.Log(q) + (1-y[i])*math.Log(1-q)
	}
	return s / float64(len(y))
}

// AUC computes the area under the ROC curve via average ranks
func AUC(y, p []float64) float64 {
	n := len(y)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return p[idx[a]] < p[idx[b]] })

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && p[idx[j+1]] == p[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}

	pos, rankSum := 0.0, 0.0
	for i := range y {
		if y[i] == 1 {
			pos++
			rankSum += ranks[i]
		}
	}
	neg := float64(n) - pos
	if pos == 0 || neg == 0 {
		return math.NaN()
	}
	return (rankSum - pos*(pos+1)/2) / (pos * neg)
}

// MeanAbsoluteError is the mean of |y - pred|
func MeanAbsoluteError(y, pred []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	s := 0.0
	for i := range y {
		s += math.Abs(y[i] - pred[i])
	}
	return s / float64(len(y))
}
