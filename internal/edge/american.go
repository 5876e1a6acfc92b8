// Package edge turns model probabilities into book-style prices, spread
// lines and leans.
package edge

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

const probEpsilon = 1e-6

// ProbToAmerican converts a win probability to American odds rounded to the
// nearest multiple of 5. Favourites are negative, underdogs positive; a
// result of 0 is reported as +100.
func ProbToAmerican(p float64) int {
	p = math.Min(math.Max(p, probEpsilon), 1-probEpsilon)
	var raw float64
	if p >= 0.5 {
		raw = -(p / (1 - p)) * 100
	} else {
		raw = ((1 - p) / p) * 100
	}
	rounded := int(5 * math.RoundToEven(raw/5))
	if rounded == 0 {
		rounded = 100
	}
	return rounded
}

// AmericanString renders odds with an explicit sign for positive prices
func AmericanString(american int) string {
	if american > 0 {
		return fmt.Sprintf("+%d", american)
	}
	return fmt.Sprintf("%d", american)
}

// AmericanToDecimal converts American odds to decimal odds (stake included),
// rounded to two places
func AmericanToDecimal(american int) (decimal.Decimal, error) {
	if american > -100 && american < 100 {
		return decimal.Zero, fmt.Errorf("invalid american odds %d", american)
	}
	a := decimal.NewFromInt(int64(american))
	hundred := decimal.NewFromInt(100)
	if american > 0 {
		return decimal.NewFromInt(1).Add(a.Div(hundred)).Round(2), nil
	}
	return decimal.NewFromInt(1).Add(hundred.Div(a.Abs())).Round(2), nil
}

// ImpliedProbability returns the break-even probability of an American price
func ImpliedProbability(american int) (float64, error) {
	d, err := AmericanToDecimal(american)
	if err != nil {
		return 0, err
	}
	p, _ := decimal.NewFromInt(1).Div(d).Float64()
	return p, nil
}
