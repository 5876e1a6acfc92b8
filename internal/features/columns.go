package features

import "github.com/maschh/sports-edge/internal/models"

// Feature column names produced by the pipeline
const (
	ColEloHomeExp = "elo_home_exp"
	ColTrendsHome = "trends_home"
	ColTrendsAway = "trends_away"
	ColToneHome   = "tone_home"
	ColToneAway   = "tone_away"
	ColIsDome     = "is_dome"
)

// InjuryColumn names an injury count column, e.g. inj_home_key_out
func InjuryColumn(side, kind string) string {
	return "inj_" + side + "_" + kind + "_out"
}

// Injury count kinds
const (
	InjuryStarters = "starters"
	InjuryKey      = "key"
	InjuryTotal    = "total"
)

// ClassifierColumns is the model-input contract for home-win models built
// with the default form windows
var ClassifierColumns = ClassifierColumnsFor(DefaultFormWindows)

// TotalsColumns is the model-input contract for combined-score models built
// with the default form windows
var TotalsColumns = TotalsColumnsFor(DefaultFormWindows)

// ClassifierColumnsFor returns the home-win model inputs for the given form windows
func ClassifierColumnsFor(windows []int) []string {
	cols := []string{ColEloHomeExp}
	cols = append(cols, formColumns(windows)...)
	cols = append(cols, ColTrendsHome, ColTrendsAway, ColToneHome, ColToneAway)
	cols = append(cols, injuryColumns()...)
	return append(cols, models.ColTempC, models.ColWindKmh, models.ColPrcpMM, ColIsDome)
}

// TotalsColumnsFor returns the combined-score model inputs for the given form windows
func TotalsColumnsFor(windows []int) []string {
	cols := []string{ColEloHomeExp}
	cols = append(cols, formColumns(windows)...)
	cols = append(cols, injuryColumns()...)
	cols = append(cols, models.ColTempC, models.ColWindKmh, models.ColPrcpMM, ColIsDome)
	return append(cols,
		PointsForColumn("home"), PointsAgainstColumn("home"),
		PointsForColumn("away"), PointsAgainstColumn("away"),
	)
}

func formColumns(windows []int) []string {
	if len(windows) == 0 {
		windows = DefaultFormWindows
	}
	cols := make([]string, 0, 2*len(windows))
	for _, side := range []string{"home", "away"} {
		for _, w := range windows {
			cols = append(cols, FormColumn(side, w))
		}
	}
	return cols
}

func injuryColumns() []string {
	var cols []string
	for _, side := range []string{"home", "away"} {
		for _, kind := range []string{InjuryStarters, InjuryKey, InjuryTotal} {
			cols = append(cols, InjuryColumn(side, kind))
		}
	}
	return cols
}
