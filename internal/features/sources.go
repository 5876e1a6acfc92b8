package features

import (
	"context"
	"time"

	"github.com/maschh/sports-edge/internal/models"
)

// TeamSource supplies one numeric value per team, e.g. news tone or search
// interest. Teams missing from the result are filled with zero.
type TeamSource interface {
	Name() string
	TeamValues(ctx context.Context, league models.League, teams []string) (map[string]float64, error)
}

// InjuryReport is the injury count of one team on one day
type InjuryReport struct {
	Date        time.Time
	Team        string
	StartersOut int
	KeyOut      int
	TotalOut    int
}

// InjurySource supplies injury reports keyed by (date, team)
type InjurySource interface {
	Injuries(ctx context.Context, league models.League) ([]InjuryReport, error)
}

// Weather describes game-day conditions at the home venue. Nil values mean
// the observation is unknown.
type Weather struct {
	TempC   *float64
	WindKmh *float64
	PrcpMM  *float64
	Dome    bool
}

// WeatherSource supplies conditions keyed by (date, home team venue)
type WeatherSource interface {
	Weather(ctx context.Context, league models.League, date time.Time, home string) (Weather, error)
}

// NoopTeamSource returns no values; used when a source is disabled
type NoopTeamSource struct {
	SourceName string
}

// Name returns the source name
func (n NoopTeamSource) Name() string {
	return n.SourceName
}

// TeamValues returns an empty table
func (n NoopTeamSource) TeamValues(context.Context, models.League, []string) (map[string]float64, error) {
	return map[string]float64{}, nil
}
