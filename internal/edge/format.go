package edge

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/maschh/sports-edge/internal/models"
)

// Lean labels
const (
	LeanHome       = "HOME"
	LeanAway       = "AWAY"
	LeanModelTotal = "MODEL TOTAL"
	LeanNoEdge     = "NO EDGE"
)

// FormatRow converts a prediction and its optional total into the persisted
// report record. The over/under lean only marks that a model total exists;
// no market total is compared.
func FormatRow(runID uuid.UUID, league models.League, pred models.Prediction, total *models.TotalPrediction) models.PredictionRecord {
	pHome := pred.ProbHome
	pAway := 1 - pHome
	line := SpreadLine(pHome, league)

	rec := models.PredictionRecord{
		ID:           uuid.New(),
		RunID:        runID,
		League:       league,
		Date:         pred.Date,
		Home:         pred.Home,
		Away:         pred.Away,
		ProbHome:     pHome,
		ProbAway:     pAway,
		HomeAmerican: ProbToAmerican(pHome),
		AwayAmerican: ProbToAmerican(pAway),
		RawSpread:    SpreadFromProb(pHome, league),
		SpreadLine:   line,
		MLLean:       moneylineLean(pHome),
		SpreadLean:   spreadLean(pHome, line, league),
		TotalLean:    LeanNoEdge,
		CreatedAt:    time.Now().UTC(),
	}
	if total != nil {
		v := total.PredTotal
		rec.PredTotal = &v
		rec.TotalLean = LeanModelTotal
	}
	return rec
}

func moneylineLean(pHome float64) string {
	if pHome >= 0.5 {
		return LeanHome
	}
	return LeanAway
}

func spreadLean(pHome, line float64, league models.League) string {
	if league == models.LeagueMLB {
		if pHome >= 0.5 {
			return fmt.Sprintf("%s -%.1f", LeanHome, MLBRunLine)
		}
		return fmt.Sprintf("%s +%.1f", LeanAway, MLBRunLine)
	}
	side := LeanHome
	if line < 0 {
		side = LeanAway
	}
	return fmt.Sprintf("%s %.1f", side, math.Abs(line))
}
