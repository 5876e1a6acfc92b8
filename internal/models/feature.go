package models

import "time"

// FeatureRow is one enriched game: keys, labels and model inputs
type FeatureRow struct {
	Date time.Time `json:"date"`
	Home string    `json:"home"`
	Away string    `json:"away"`

	// HomeWin is 1 or 0, nil when the outcome is unknown
	HomeWin *float64 `json:"home_win"`
	// TotalPoints is home+away score, nil when unknown
	TotalPoints *float64 `json:"total_points"`

	Features map[string]float64 `json:"features"`

	// Weather stays nullable until the model-input step
	TempC   *float64 `json:"temp_c"`
	WindKmh *float64 `json:"wind_kmh"`
	PrcpMM  *float64 `json:"prcp_mm"`
}

// Weather column names; their values live in the nullable fields above
const (
	ColTempC   = "temp_c"
	ColWindKmh = "wind_kmh"
	ColPrcpMM  = "prcp_mm"
)

// Value returns a model-input value for a column, zero-filling anything absent
func (r FeatureRow) Value(col string) float64 {
	switch col {
	case ColTempC:
		return deref(r.TempC)
	case ColWindKmh:
		return deref(r.WindKmh)
	case ColPrcpMM:
		return deref(r.PrcpMM)
	}
	return r.Features[col]
}

// Vector builds the model input for the given column contract.
// Training and prediction both go through here.
func (r FeatureRow) Vector(cols []string) []float64 {
	x := make([]float64, len(cols))
	for i, c := range cols {
		x[i] = r.Value(c)
	}
	return x
}

// Clone returns a deep copy of the row
func (r FeatureRow) Clone() FeatureRow {
	out := r
	out.Features = make(map[string]float64, len(r.Features))
	for k, v := range r.Features {
		out.Features[k] = v
	}
	out.HomeWin = copyFloat(r.HomeWin)
	out.TotalPoints = copyFloat(r.TotalPoints)
	out.TempC = copyFloat(r.TempC)
	out.WindKmh = copyFloat(r.WindKmh)
	out.PrcpMM = copyFloat(r.PrcpMM)
	return out
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
