package models

import (
	"sort"
	"strings"
	"time"
)

// League identifies one of the supported competitions
type League string

const (
	LeagueNFL League = "NFL"
	LeagueNBA League = "NBA"
	LeagueMLB League = "MLB"
	LeagueCFB League = "CFB"
)

// AllLeagues lists leagues in the order predictions are produced
var AllLeagues = []League{LeagueNFL, LeagueNBA, LeagueMLB, LeagueCFB}

// ParseLeague parses a case-insensitive league code
func ParseLeague(s string) (League, bool) {
	l := League(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AllLeagues {
		if l == known {
			return l, true
		}
	}
	return "", false
}

// Game represents one completed (or scheduled) contest between two teams
type Game struct {
	Date      time.Time `db:"date" json:"date" validate:"required"`
	Home      string    `db:"home" json:"home" validate:"required"`
	Away      string    `db:"away" json:"away" validate:"required"`
	HomeScore *int      `db:"home_score" json:"home_score"`
	AwayScore *int      `db:"away_score" json:"away_score"`
}

// NewGame builds a game with known scores on the given calendar day
func NewGame(date time.Time, home, away string, homeScore, awayScore int) Game {
	return Game{
		Date:      Day(date),
		Home:      home,
		Away:      away,
		HomeScore: &homeScore,
		AwayScore: &awayScore,
	}
}

// HasScore reports whether both scores are known
func (g Game) HasScore() bool {
	return g.HomeScore != nil && g.AwayScore != nil
}

// HomeWin returns the derived home-win indicator, nil when the result is unknown
func (g Game) HomeWin() *bool {
	if !g.HasScore() {
		return nil
	}
	win := *g.HomeScore > *g.AwayScore
	return &win
}

// TotalPoints returns the combined score, nil when the result is unknown
func (g Game) TotalPoints() *float64 {
	if !g.HasScore() {
		return nil
	}
	total := float64(*g.HomeScore + *g.AwayScore)
	return &total
}

// Day truncates a timestamp to its UTC calendar day
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SortGames returns a copy of games ordered by date; ties keep input order
func SortGames(games []Game) []Game {
	sorted := make([]Game, len(games))
	copy(sorted, games)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}

// Teams returns the sorted set of team identities appearing in games
func Teams(games []Game) []string {
	seen := make(map[string]struct{})
	for _, g := range games {
		seen[g.Home] = struct{}{}
		seen[g.Away] = struct{}{}
	}
	teams := make([]string, 0, len(seen))
	for t := range seen {
		teams = append(teams, t)
	}
	sort.Strings(teams)
	return teams
}
