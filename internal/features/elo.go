// Package features builds the per-game feature table: Elo expectations,
// trailing form and scoring windows, and externally sourced enrichment.
package features

import (
	"fmt"
	"math"

	"github.com/maschh/sports-edge/internal/models"
)

// EloConfig holds the tunable rating parameters
type EloConfig struct {
	K             float64 `mapstructure:"k" validate:"gt=0"`
	HomeAdvantage float64 `mapstructure:"home_advantage" validate:"gte=0"`
	Base          float64 `mapstructure:"base" validate:"gt=0"`
}

// DefaultEloConfig returns K=20, home advantage 55, baseline 1500
func DefaultEloConfig() EloConfig {
	return EloConfig{K: 20, HomeAdvantage: 55, Base: 1500}
}

// Validate checks the rating parameters
func (c EloConfig) Validate() error {
	if c.K <= 0 {
		return fmt.Errorf("elo k must be positive, got %v", c.K)
	}
	if c.HomeAdvantage < 0 {
		return fmt.Errorf("elo home advantage cannot be negative, got %v", c.HomeAdvantage)
	}
	if c.Base <= 0 {
		return fmt.Errorf("elo base rating must be positive, got %v", c.Base)
	}
	return nil
}

// Elo owns the rating of every team seen so far. It is not safe for
// concurrent use; give each dataset its own engine or call Reset.
type Elo struct {
	cfg     EloConfig
	ratings map[string]float64
}

// NewElo creates an engine with no teams rated yet
func NewElo(cfg EloConfig) *Elo {
	return &Elo{cfg: cfg, ratings: make(map[string]float64)}
}

// Config returns the engine parameters
func (e *Elo) Config() EloConfig {
	return e.cfg
}

// Rating returns a team's current rating, the baseline if never seen
func (e *Elo) Rating(team string) float64 {
	if r, ok := e.ratings[team]; ok {
		return r
	}
	return e.cfg.Base
}

// Expect returns the home side's win expectation before the game
func (e *Elo) Expect(home, away string) float64 {
	return expectation(e.Rating(home)+e.cfg.HomeAdvantage, e.Rating(away))
}

// Update applies one observed result and returns the pre-game expectation.
// The rating change is zero-sum between the two teams.
func (e *Elo) Update(home, away string, homeWin bool) float64 {
	exp := e.Expect(home, away)
	actual := 0.0
	if homeWin {
		actual = 1.0
	}
	delta := e.cfg.K * (actual - exp)
	e.ratings[home] = e.Rating(home) + delta
	e.ratings[away] = e.Rating(away) - delta
	return exp
}

// Rate walks games in the given order and returns the pre-game home
// expectation for each. Games without a known result are scored but leave
// the ratings untouched. Callers must pass games in chronological order.
func (e *Elo) Rate(games []models.Game) []float64 {
	exps := make([]float64, len(games))
	for i, g := range games {
		if win := g.HomeWin(); win != nil {
			exps[i] = e.Update(g.Home, g.Away, *win)
			continue
		}
		exps[i] = e.Expect(g.Home, g.Away)
	}
	return exps
}

// Ratings returns a snapshot of the current ratings
func (e *Elo) Ratings() map[string]float64 {
	out := make(map[string]float64, len(e.ratings))
	for k, v := range e.ratings {
		out[k] = v
	}
	return out
}

// Reset forgets every rating
func (e *Elo) Reset() {
	e.ratings = make(map[string]float64)
}

func expectation(ra, rb float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (rb-ra)/400.0))
}
