package datasource

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/maschh/sports-edge/internal/models"
)

// NBABaseURL is the balldontlie API root
const NBABaseURL = "https://api.balldontlie.io/v1"

const nbaPageSize = 100

// NBASource loads finished NBA games from the balldontlie paged games endpoint
type NBASource struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	logger     logrus.FieldLogger
}

type nbaTeam struct {
	FullName string `json:"full_name"`
}

type nbaGame struct {
	Date             string  `json:"date"`
	Status           string  `json:"status"`
	HomeTeam         nbaTeam `json:"home_team"`
	VisitorTeam      nbaTeam `json:"visitor_team"`
	HomeTeamScore    int     `json:"home_team_score"`
	VisitorTeamScore int     `json:"visitor_team_score"`
}

type nbaPage struct {
	Data []nbaGame `json:"data"`
	Meta struct {
		TotalPages int `json:"total_pages"`
	} `json:"meta"`
}

// NewNBASource creates a balldontlie client
func NewNBASource(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, logger logrus.FieldLogger) *NBASource {
	if baseURL == "" {
		baseURL = NBABaseURL
	}
	return &NBASource{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		logger:     orDefault(logger),
	}
}

// League returns the league this source serves
func (s *NBASource) League() models.League {
	return models.LeagueNBA
}

// Name returns the name of the data source
func (s *NBASource) Name() string {
	return "balldontlie"
}

// FetchGames pages through every season in the range and keeps Final games
func (s *NBASource) FetchGames(ctx context.Context, startSeason, endSeason int) ([]models.Game, error) {
	var games []models.Game
	for season := startSeason; season <= endSeason; season++ {
		for page := 1; ; page++ {
			var body nbaPage
			if err := fetchJSON(ctx, s.httpClient, s.Name(), s.pageURL(season, page), s.header(), &body); err != nil {
				return nil, fmt.Errorf("season %d page %d: %w", season, page, err)
			}
			for _, g := range body.Data {
				if g.Status != "Final" {
					continue
				}
				date, err := parseGameDate(g.Date)
				if err != nil {
					continue
				}
				games = append(games, models.NewGame(date, g.HomeTeam.FullName, g.VisitorTeam.FullName, g.HomeTeamScore, g.VisitorTeamScore))
			}
			if page >= body.Meta.TotalPages {
				break
			}
		}
		s.logger.WithFields(logrus.Fields{"source": s.Name(), "season": season}).Debug("Season loaded")
	}
	return models.SortGames(games), nil
}

func (s *NBASource) pageURL(season, page int) string {
	q := url.Values{}
	q.Set("seasons[]", strconv.Itoa(season))
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(nbaPageSize))
	return s.baseURL + "/games?" + q.Encode()
}

func (s *NBASource) header() http.Header {
	h := http.Header{}
	h.Set("Accept", "application/json")
	if s.apiKey != "" {
		h.Set("Authorization", s.apiKey)
	}
	return h
}
