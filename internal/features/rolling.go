package features

import (
	"fmt"
	"sort"

	"github.com/maschh/sports-edge/internal/models"
)

// DefaultFormWindows are the trailing game counts used for form features
var DefaultFormWindows = []int{3, 5, 10}

// TotalsWindow is the trailing game count for points for/against
const TotalsWindow = 5

// trailingWindow keeps the last n observations of one team
type trailingWindow struct {
	values []float64
	next   int
	count  int
}

func newTrailingWindow(n int) *trailingWindow {
	return &trailingWindow{values: make([]float64, n)}
}

func (w *trailingWindow) push(v float64) {
	w.values[w.next] = v
	w.next = (w.next + 1) % len(w.values)
	if w.count < len(w.values) {
		w.count++
	}
}

// mean sums the buffer oldest-first so replays give identical results
func (w *trailingWindow) mean() (float64, bool) {
	if w.count == 0 {
		return 0, false
	}
	start := (w.next - w.count + len(w.values)) % len(w.values)
	sum := 0.0
	for i := 0; i < w.count; i++ {
		sum += w.values[(start+i)%len(w.values)]
	}
	return sum / float64(w.count), true
}

// sideValue extracts a team-perspective observation from a game
type sideValue func(g models.Game, home bool) (float64, bool)

// rollingSeries describes one trailing statistic and its column naming
type rollingSeries struct {
	name   string
	value  sideValue
	window int
}

// FormColumn names the home/away form column for a window
func FormColumn(side string, window int) string {
	return fmt.Sprintf("%s_form_%d", side, window)
}

// PointsForColumn names the trailing points-for column
func PointsForColumn(side string) string {
	return fmt.Sprintf("%s_pts_for_%d", side, TotalsWindow)
}

// PointsAgainstColumn names the trailing points-against column
func PointsAgainstColumn(side string) string {
	return fmt.Sprintf("%s_pts_against_%d", side, TotalsWindow)
}

// RollingForm returns, for each game in input order, the trailing win rate
// of both teams over each window. A team's sequence covers home and away
// games alike and includes the game itself.
func RollingForm(games []models.Game, windows []int) []map[string]float64 {
	series := make([]rollingSeries, 0, len(windows))
	for _, w := range windows {
		series = append(series, rollingSeries{name: fmt.Sprintf("form_%d", w), value: winValue, window: w})
	}
	return rollingMeans(games, series)
}

// RollingTotals returns the trailing points scored and conceded by both
// teams over the last TotalsWindow games, in input order.
func RollingTotals(games []models.Game) []map[string]float64 {
	return rollingMeans(games, []rollingSeries{
		{name: fmt.Sprintf("pts_for_%d", TotalsWindow), value: pointsFor, window: TotalsWindow},
		{name: fmt.Sprintf("pts_against_%d", TotalsWindow), value: pointsAgainst, window: TotalsWindow},
	})
}

func rollingMeans(games []models.Game, series []rollingSeries) []map[string]float64 {
	out := make([]map[string]float64, len(games))
	for i := range out {
		out[i] = make(map[string]float64, 2*len(series))
	}

	order := make([]int, len(games))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return games[order[a]].Date.Before(games[order[b]].Date)
	})

	state := make(map[string][]*trailingWindow)
	windowsFor := func(team string) []*trailingWindow {
		ws, ok := state[team]
		if !ok {
			ws = make([]*trailingWindow, len(series))
			for i, s := range series {
				ws[i] = newTrailingWindow(s.window)
			}
			state[team] = ws
		}
		return ws
	}

	for _, idx := range order {
		g := games[idx]
		for _, home := range []bool{true, false} {
			team, side := g.Away, "away"
			if home {
				team, side = g.Home, "home"
			}
			ws := windowsFor(team)
			for i, s := range series {
				if v, ok := s.value(g, home); ok {
					ws[i].push(v)
				}
				// cold start with no observation yet falls back to zero
				m, _ := ws[i].mean()
				out[idx][side+"_"+s.name] = m
			}
		}
	}
	return out
}

func winValue(g models.Game, home bool) (float64, bool) {
	win := g.HomeWin()
	if win == nil {
		return 0, false
	}
	if *win == home {
		return 1, true
	}
	return 0, true
}

func pointsFor(g models.Game, home bool) (float64, bool) {
	if !g.HasScore() {
		return 0, false
	}
	if home {
		return float64(*g.HomeScore), true
	}
	return float64(*g.AwayScore), true
}

func pointsAgainst(g models.Game, home bool) (float64, bool) {
	if !g.HasScore() {
		return 0, false
	}
	if home {
		return float64(*g.AwayScore), true
	}
	return float64(*g.HomeScore), true
}
