// Package report renders formatted predictions as an HTML page and a CSV export.
package report

import (
	"fmt"

	"github.com/maschh/sports-edge/internal/edge"
	"github.com/maschh/sports-edge/internal/models"
)

// Headers are the display columns in order
var Headers = []string{
	"Date",
	"League",
	"Matchup",
	"Home Win Prob",
	"Away Win Prob",
	"Home Price (American)",
	"Away Price (American)",
	"Home Price (Decimal)",
	"Away Price (Decimal)",
	"Pred. Spread (Home-Away)",
	"Model Spread Line",
	"Pred. Total",
	"Model Lean - ML",
	"Model Lean - Spread",
	"Model Lean - O/U",
}

// Row is one prediction as displayed
type Row struct {
	Date         string
	League       string
	Matchup      string
	HomeProb     string
	AwayProb     string
	HomeAmerican string
	AwayAmerican string
	HomeDecimal  string
	AwayDecimal  string
	RawSpread    string
	SpreadLine   string
	PredTotal    string
	MLLean       string
	SpreadLean   string
	TotalLean    string
}

// Cells returns the row in Headers order
func (r Row) Cells() []string {
	return []string{
		r.Date, r.League, r.Matchup, r.HomeProb, r.AwayProb,
		r.HomeAmerican, r.AwayAmerican, r.HomeDecimal, r.AwayDecimal,
		r.RawSpread, r.SpreadLine, r.PredTotal,
		r.MLLean, r.SpreadLean, r.TotalLean,
	}
}

// NewRow formats a persisted record for display
func NewRow(rec models.PredictionRecord) Row {
	row := Row{
		Date:         rec.Date.Format("2006-01-02"),
		League:       string(rec.League),
		Matchup:      fmt.Sprintf("%s @ %s", rec.Away, rec.Home),
		HomeProb:     fmt.Sprintf("%.1f%%", rec.ProbHome*100),
		AwayProb:     fmt.Sprintf("%.1f%%", rec.ProbAway*100),
		HomeAmerican: edge.AmericanString(rec.HomeAmerican),
		AwayAmerican: edge.AmericanString(rec.AwayAmerican),
		HomeDecimal:  decimalString(rec.HomeAmerican),
		AwayDecimal:  decimalString(rec.AwayAmerican),
		RawSpread:    fmt.Sprintf("%+.1f", rec.RawSpread),
		SpreadLine:   fmt.Sprintf("%+.1f", rec.SpreadLine),
		MLLean:       rec.MLLean,
		SpreadLean:   rec.SpreadLean,
		TotalLean:    rec.TotalLean,
	}
	if rec.PredTotal != nil {
		row.PredTotal = fmt.Sprintf("%.1f", *rec.PredTotal)
	}
	return row
}

// NewRows formats records in order
func NewRows(records []models.PredictionRecord) []Row {
	rows := make([]Row, len(records))
	for i, rec := range records {
		rows[i] = NewRow(rec)
	}
	return rows
}

func decimalString(american int) string {
	d, err := edge.AmericanToDecimal(american)
	if err != nil {
		return ""
	}
	return d.StringFixed(2)
}
