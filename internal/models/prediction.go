package models

import (
	"time"

	"github.com/google/uuid"
)

// Prediction is an out-of-sample home-win probability for one game
type Prediction struct {
	Date     time.Time `db:"date" json:"date"`
	Home     string    `db:"home" json:"home"`
	Away     string    `db:"away" json:"away"`
	HomeWin  *float64  `db:"home_win" json:"home_win"`
	ProbHome float64   `db:"p_home" json:"p_home" validate:"gte=0,lte=1"`
	// Cutoff is the last training date of the cycle that scored this game
	Cutoff time.Time `db:"cutoff" json:"cutoff"`
}

// TotalPrediction is an out-of-sample combined-score prediction for one game
type TotalPrediction struct {
	Date        time.Time `db:"date" json:"date"`
	Home        string    `db:"home" json:"home"`
	Away        string    `db:"away" json:"away"`
	TotalPoints *float64  `db:"total_points" json:"total_points"`
	PredTotal   float64   `db:"pred_total" json:"pred_total"`
	Cutoff      time.Time `db:"cutoff" json:"cutoff"`
}

// GameKey identifies a game for joins between prediction streams
type GameKey struct {
	Date time.Time
	Home string
	Away string
}

// Key returns the join key of the prediction
func (p Prediction) Key() GameKey {
	return GameKey{Date: p.Date, Home: p.Home, Away: p.Away}
}

// Key returns the join key of the prediction
func (p TotalPrediction) Key() GameKey {
	return GameKey{Date: p.Date, Home: p.Home, Away: p.Away}
}

// PredictionRecord is a formatted prediction as persisted and rendered
type PredictionRecord struct {
	ID           uuid.UUID `db:"id" json:"id"`
	RunID        uuid.UUID `db:"run_id" json:"run_id"`
	League       League    `db:"league" json:"league"`
	Date         time.Time `db:"date" json:"date"`
	Home         string    `db:"home" json:"home"`
	Away         string    `db:"away" json:"away"`
	ProbHome     float64   `db:"p_home" json:"p_home"`
	ProbAway     float64   `db:"p_away" json:"p_away"`
	HomeAmerican int       `db:"home_american" json:"home_american"`
	AwayAmerican int       `db:"away_american" json:"away_american"`
	RawSpread    float64   `db:"raw_spread" json:"raw_spread"`
	SpreadLine   float64   `db:"spread_line" json:"spread_line"`
	PredTotal    *float64  `db:"pred_total" json:"pred_total"`
	MLLean       string    `db:"ml_lean" json:"ml_lean"`
	SpreadLean   string    `db:"spread_lean" json:"spread_lean"`
	TotalLean    string    `db:"total_lean" json:"total_lean"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
