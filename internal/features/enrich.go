package features

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/maschh/sports-edge/internal/models"
)

// Sources groups the optional enrichment providers. Nil entries are
// treated as absent and produce the default fill values.
type Sources struct {
	Trends   TeamSource
	Tone     TeamSource
	Injuries InjurySource
	Weather  WeatherSource
}

// Pipeline merges rating, rolling and external features into feature rows
type Pipeline struct {
	elo     EloConfig
	windows []int
	sources Sources
	logger  logrus.FieldLogger
}

// NewPipeline creates an enrichment pipeline
func NewPipeline(elo EloConfig, windows []int, sources Sources, logger logrus.FieldLogger) (*Pipeline, error) {
	if err := elo.Validate(); err != nil {
		return nil, err
	}
	if len(windows) == 0 {
		windows = DefaultFormWindows
	}
	for _, w := range windows {
		if w <= 0 {
			return nil, fmt.Errorf("form window must be positive, got %d", w)
		}
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Pipeline{elo: elo, windows: windows, sources: sources, logger: logger}, nil
}

// ClassifierColumns returns the home-win model inputs this pipeline produces
func (p *Pipeline) ClassifierColumns() []string {
	return ClassifierColumnsFor(p.windows)
}

// TotalsColumns returns the combined-score model inputs this pipeline produces
func (p *Pipeline) TotalsColumns() []string {
	return TotalsColumnsFor(p.windows)
}

// Enrich returns one feature row per game, ordered by date. The input slice
// is not modified. A fresh Elo engine is used for every call.
func (p *Pipeline) Enrich(ctx context.Context, league models.League, games []models.Game) ([]models.FeatureRow, error) {
	sorted := models.SortGames(games)

	exps := NewElo(p.elo).Rate(sorted)
	form := RollingForm(sorted, p.windows)
	totals := RollingTotals(sorted)

	rows := make([]models.FeatureRow, len(sorted))
	for i, g := range sorted {
		row := models.FeatureRow{
			Date:        g.Date,
			Home:        g.Home,
			Away:        g.Away,
			TotalPoints: g.TotalPoints(),
			Features:    make(map[string]float64, len(ClassifierColumns)+8),
		}
		if win := g.HomeWin(); win != nil {
			label := 0.0
			if *win {
				label = 1.0
			}
			row.HomeWin = &label
		}
		row.Features[ColEloHomeExp] = exps[i]
		for k, v := range form[i] {
			row.Features[k] = v
		}
		for k, v := range totals[i] {
			row.Features[k] = v
		}
		rows[i] = row
	}

	teams := models.Teams(sorted)
	if err := p.mergeTeamSource(ctx, league, p.sources.Trends, teams, rows, ColTrendsHome, ColTrendsAway); err != nil {
		return nil, err
	}
	if err := p.mergeTeamSource(ctx, league, p.sources.Tone, teams, rows, ColToneHome, ColToneAway); err != nil {
		return nil, err
	}
	if err := p.mergeInjuries(ctx, league, rows); err != nil {
		return nil, err
	}
	if err := p.mergeWeather(ctx, league, rows); err != nil {
		return nil, err
	}

	p.logger.WithFields(logrus.Fields{
		"league": league,
		"games":  len(rows),
		"teams":  len(teams),
	}).Debug("Feature table built")
	return rows, nil
}

func (p *Pipeline) mergeTeamSource(ctx context.Context, league models.League, src TeamSource, teams []string, rows []models.FeatureRow, homeCol, awayCol string) error {
	values := map[string]float64{}
	if src != nil {
		fetched, err := src.TeamValues(ctx, league, teams)
		if err != nil {
			return fmt.Errorf("%s source: %w", src.Name(), err)
		}
		values = fetched
	}
	for i := range rows {
		rows[i].Features[homeCol] = values[rows[i].Home]
		rows[i].Features[awayCol] = values[rows[i].Away]
	}
	return nil
}

type dayTeam struct {
	date time.Time
	team string
}

func (p *Pipeline) mergeInjuries(ctx context.Context, league models.League, rows []models.FeatureRow) error {
	index := make(map[dayTeam]InjuryReport)
	if p.sources.Injuries != nil {
		reports, err := p.sources.Injuries.Injuries(ctx, league)
		if err != nil {
			return fmt.Errorf("injury source: %w", err)
		}
		for _, r := range reports {
			index[dayTeam{date: models.Day(r.Date), team: r.Team}] = r
		}
	}
	for i := range rows {
		for _, side := range []string{"home", "away"} {
			team := rows[i].Home
			if side == "away" {
				team = rows[i].Away
			}
			r := index[dayTeam{date: rows[i].Date, team: team}]
			rows[i].Features[InjuryColumn(side, InjuryStarters)] = float64(r.StartersOut)
			rows[i].Features[InjuryColumn(side, InjuryKey)] = float64(r.KeyOut)
			rows[i].Features[InjuryColumn(side, InjuryTotal)] = float64(r.TotalOut)
		}
	}
	return nil
}

func (p *Pipeline) mergeWeather(ctx context.Context, league models.League, rows []models.FeatureRow) error {
	for i := range rows {
		rows[i].Features[ColIsDome] = 0
		if p.sources.Weather == nil {
			continue
		}
		wx, err := p.sources.Weather.Weather(ctx, league, rows[i].Date, rows[i].Home)
		if err != nil {
			return fmt.Errorf("weather source: %w", err)
		}
		rows[i].TempC = wx.TempC
		rows[i].WindKmh = wx.WindKmh
		rows[i].PrcpMM = wx.PrcpMM
		if wx.Dome {
			rows[i].Features[ColIsDome] = 1
		}
	}
	return nil
}
