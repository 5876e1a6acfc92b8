package ml

import "math"

// standardScaler centers and scales columns with training statistics.
// Constant columns are centered only.
type standardScaler struct {
	mean  []float64
	scale []float64
}

func fitScaler(X [][]float64) *standardScaler {
	width := len(X[0])
	s := &standardScaler{mean: make([]float64, width), scale: make([]float64, width)}
	n := float64(len(X))
	for _, row := range X {
		for k, v := range row {
			s.mean[k] += v
		}
	}
	for k := range s.mean {
		s.mean[k] /= n
	}
	for _, row := range X {
		for k, v := range row {
			d := v - s.mean[k]
			s.scale[k] += d * d
		}
	}
	for k := range s.scale {
		s.scale[k] = math.Sqrt(s.scale[k] / n)
		if s.scale[k] == 0 {
			s.scale[k] = 1
		}
	}
	return s
}

func (s *standardScaler) transform(row []float64) []float64 {
	out := make([]float64, len(row))
	for k, v := range row {
		out[k] = (v - s.mean[k]) / s.scale[k]
	}
	return out
}

func (s *standardScaler) transformAll(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		out[i] = s.transform(row)
	}
	return out
}

// independentTol is the residual norm, relative to the column norm, below
// which a column counts as a combination of the ones already kept
const independentTol = 1e-8

// independent reports which columns of X are linearly independent of the
// intercept and of the earlier kept columns. Constant and duplicated
// columns are dropped; the first of a dependent group is kept.
func independent(X [][]float64) []bool {
	n := len(X)
	keep := make([]bool, len(X[0]))

	ones := make([]float64, n)
	for i := range ones {
		ones[i] = 1 / math.Sqrt(float64(n))
	}
	basis := [][]float64{ones}

	col := make([]float64, n)
	for k := range keep {
		norm := 0.0
		for i, row := range X {
			col[i] = row[k]
			norm += row[k] * row[k]
		}
		norm = math.Sqrt(norm)
		if norm == 0 {
			continue
		}
		// two passes of modified Gram-Schmidt
		for pass := 0; pass < 2; pass++ {
			for _, q := range basis {
				dot := 0.0
				for i := range col {
					dot += q[i] * col[i]
				}
				for i := range col {
					col[i] -= dot * q[i]
				}
			}
		}
		residual := 0.0
		for _, v := range col {
			residual += v * v
		}
		residual = math.Sqrt(residual)
		if residual <= independentTol*norm {
			continue
		}
		q := make([]float64, n)
		for i, v := range col {
			q[i] = v / residual
		}
		basis = append(basis, q)
		keep[k] = true
	}
	return keep
}
