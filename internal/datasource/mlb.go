package datasource

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/maschh/sports-edge/internal/models"
)

// MLBBaseURL is the MLB Stats API root
const MLBBaseURL = "https://statsapi.mlb.com/api/v1"

// MLBSource loads MLB games from the Stats API season schedule
type MLBSource struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	logger     logrus.FieldLogger
}

type mlbSide struct {
	Team struct {
		Name string `json:"name"`
	} `json:"team"`
	Score *int `json:"score"`
}

type mlbSchedule struct {
	Dates []struct {
		Games []struct {
			OfficialDate string `json:"officialDate"`
			Teams        struct {
				Home mlbSide `json:"home"`
				Away mlbSide `json:"away"`
			} `json:"teams"`
		} `json:"games"`
	} `json:"dates"`
}

// NewMLBSource creates a Stats API client
func NewMLBSource(httpClient *RateLimitedHTTPClient, baseURL string, logger logrus.FieldLogger) *MLBSource {
	if baseURL == "" {
		baseURL = MLBBaseURL
	}
	return &MLBSource{httpClient: httpClient, baseURL: baseURL, logger: orDefault(logger)}
}

// League returns the league this source serves
func (s *MLBSource) League() models.League {
	return models.LeagueMLB
}

// Name returns the name of the data source
func (s *MLBSource) Name() string {
	return "statsapi"
}

// FetchGames returns the games of each season that have both scores.
// Doubleheaders appear as separate games on the same day.
func (s *MLBSource) FetchGames(ctx context.Context, startSeason, endSeason int) ([]models.Game, error) {
	var games []models.Game
	for season := startSeason; season <= endSeason; season++ {
		var body mlbSchedule
		url := fmt.Sprintf("%s/schedule?sportId=1&season=%d", s.baseURL, season)
		if err := fetchJSON(ctx, s.httpClient, s.Name(), url, nil, &body); err != nil {
			return nil, fmt.Errorf("season %d: %w", season, err)
		}
		for _, d := range body.Dates {
			for _, g := range d.Games {
				if g.Teams.Home.Score == nil || g.Teams.Away.Score == nil {
					continue
				}
				date, err := parseGameDate(g.OfficialDate)
				if err != nil {
					continue
				}
				games = append(games, models.NewGame(date, g.Teams.Home.Team.Name, g.Teams.Away.Team.Name, *g.Teams.Home.Score, *g.Teams.Away.Score))
			}
		}
		s.logger.WithFields(logrus.Fields{"source": s.Name(), "season": season}).Debug("Season loaded")
	}
	return models.SortGames(games), nil
}
