package edge

import (
	"math"

	"github.com/maschh/sports-edge/internal/models"
)

// Win-probability points per point of spread
const (
	footballPointValue   = 0.045
	basketballPointValue = 0.03
	baseballPointValue   = 0.15
	defaultPointValue    = 0.05
)

// MLBRunLine is the fixed baseball run line
const MLBRunLine = 1.5

func pointValue(league models.League) float64 {
	switch league {
	case models.LeagueNFL, models.LeagueCFB:
		return footballPointValue
	case models.LeagueNBA:
		return basketballPointValue
	case models.LeagueMLB:
		return baseballPointValue
	default:
		return defaultPointValue
	}
}

// SpreadFromProb maps the home win probability to a home-minus-away margin.
// Positive values favour the home side.
func SpreadFromProb(pHome float64, league models.League) float64 {
	return (pHome - 0.5) / pointValue(league)
}

// SpreadLine rounds the raw spread to the nearest half point. Baseball uses
// the fixed run line: -1.5 for a home favourite, +1.5 otherwise.
func SpreadLine(pHome float64, league models.League) float64 {
	if league == models.LeagueMLB {
		if pHome >= 0.5 {
			return -MLBRunLine
		}
		return MLBRunLine
	}
	return ToHalfPoint(SpreadFromProb(pHome, league))
}

// ToHalfPoint rounds x to the nearest 0.5
func ToHalfPoint(x float64) float64 {
	return math.RoundToEven(x*2) / 2
}
