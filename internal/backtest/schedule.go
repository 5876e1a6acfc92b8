package backtest

import (
	"sort"
	"time"

	"github.com/maschh/sports-edge/internal/models"
)

const dateLayout = "2006-01-02"

// Window is one walk-forward cycle over date-ordered rows. Train holds the
// rows dated at or before Cutoff, Test the rows in (Cutoff, TestEnd].
type Window struct {
	Cutoff  time.Time
	TestEnd time.Time
	Train   []int
	Test    []int
}

// Schedule computes the walk-forward windows for rows. The first cutoff is
// the earliest date plus InitialDays; each cycle advances by CadenceDays
// while the cutoff is before the latest date, and stops at the first empty
// test window. Indices refer to the input slice.
func Schedule(rows []models.FeatureRow, cfg Config) []Window {
	if len(rows) == 0 || cfg.InitialDays <= 0 || cfg.CadenceDays <= 0 {
		return nil
	}
	order := dateOrder(rows)
	first := rows[order[0]].Date
	last := rows[order[len(order)-1]].Date

	var windows []Window
	trainEnd := 0
	for cutoff := first.AddDate(0, 0, cfg.InitialDays); cutoff.Before(last); cutoff = cutoff.AddDate(0, 0, cfg.CadenceDays) {
		testEnd := cutoff.AddDate(0, 0, cfg.CadenceDays)
		for trainEnd < len(order) && !rows[order[trainEnd]].Date.After(cutoff) {
			trainEnd++
		}
		testStop := trainEnd
		for testStop < len(order) && !rows[order[testStop]].Date.After(testEnd) {
			testStop++
		}
		if testStop == trainEnd {
			break
		}
		windows = append(windows, Window{
			Cutoff:  cutoff,
			TestEnd: testEnd,
			Train:   order[:trainEnd],
			Test:    order[trainEnd:testStop],
		})
	}
	return windows
}

// Cutoffs returns the cutoff dates Schedule would use
func Cutoffs(rows []models.FeatureRow, cfg Config) []time.Time {
	windows := Schedule(rows, cfg)
	out := make([]time.Time, len(windows))
	for i, w := range windows {
		out[i] = w.Cutoff
	}
	return out
}

func dateOrder(rows []models.FeatureRow) []int {
	order := make([]int, len(rows))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return rows[order[a]].Date.Before(rows[order[b]].Date)
	})
	return order
}
