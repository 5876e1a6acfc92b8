package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/maschh/sports-edge/internal/datasource"
	"github.com/maschh/sports-edge/internal/features"
	"github.com/maschh/sports-edge/internal/metrics"
	"github.com/maschh/sports-edge/internal/models"
)

// Conditions assumed inside a dome
const (
	DomeTempC   = 21.0
	DomeWindKmh = 0.0
	DomePrcpMM  = 0.0
)

// wind speeds from the provider are in m/s
const msToKmh = 3.6

var venueColumns = []string{"league", "team", "lat", "lon", "dome"}

// Venue is a home team's stadium location
type Venue struct {
	League models.League
	Team   string
	Lat    *float64
	Lon    *float64
	Dome   bool
}

// WeatherConfig configures the venue weather source
type WeatherConfig struct {
	VenuesCSV string
	BaseURL   string
	APIKey    string
	CacheTTL  time.Duration
	// Names resolves the venues file's team column, nil keeps it as written
	Names TeamNamer
}

// WeatherSource looks up game-day conditions at the home venue from an
// hourly observations endpoint:
// GET {base}/point/hourly?lat=..&lon=..&start=YYYY-MM-DD&end=YYYY-MM-DD
// answering {"data": [{"temp": c, "wspd": m/s, "prcp": mm}, ...]}.
type WeatherSource struct {
	cfg        WeatherConfig
	venues     map[string]Venue
	httpClient *datasource.RateLimitedHTTPClient
	cache      *LookupCache
	logger     logrus.FieldLogger
}

type hourlyResponse struct {
	Data []struct {
		Temp *float64 `json:"temp"`
		Wspd *float64 `json:"wspd"`
		Prcp *float64 `json:"prcp"`
	} `json:"data"`
}

// NewWeatherSource loads the venues file and creates the source. A missing
// venues file leaves every venue unknown; a file without the required
// columns is a SchemaError.
func NewWeatherSource(cfg WeatherConfig, httpClient *datasource.RateLimitedHTTPClient, logger logrus.FieldLogger) (*WeatherSource, error) {
	if logger == nil {
		logger = logrus.New()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	venues, err := loadVenues(cfg.VenuesCSV, cfg.Names, logger)
	if err != nil {
		return nil, err
	}
	return &WeatherSource{
		cfg:        cfg,
		venues:     venues,
		httpClient: httpClient,
		cache:      NewLookupCache(cfg.CacheTTL),
		logger:     logger,
	}, nil
}

func loadVenues(path string, names TeamNamer, logger logrus.FieldLogger) (map[string]Venue, error) {
	venues := map[string]Venue{}
	if path == "" {
		return venues, nil
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.WithField("path", path).Warn("Venues file not found, weather disabled")
		return venues, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open venues file: %w", err)
	}
	defer f.Close()

	table, err := readCSV("venues csv", f, venueColumns)
	if err != nil {
		return nil, err
	}
	for _, row := range table.rows {
		league := models.League(strings.ToUpper(table.get(row, "league")))
		v := Venue{
			League: league,
			Team:   canonicalTeam(names, league, table.get(row, "team")),
			Lat:    parseOptionalFloat(table.get(row, "lat")),
			Lon:    parseOptionalFloat(table.get(row, "lon")),
			Dome:   parseFlag(table.get(row, "dome")),
		}
		venues[venueKey(v.League, v.Team)] = v
	}
	return venues, nil
}

// Venue returns the known venue of a home team
func (s *WeatherSource) Venue(league models.League, team string) (Venue, bool) {
	v, ok := s.venues[venueKey(league, team)]
	return v, ok
}

// Weather returns the conditions for a game. Unknown venues, missing
// coordinates and failed lookups all yield nil observations without error.
func (s *WeatherSource) Weather(ctx context.Context, league models.League, date time.Time, home string) (features.Weather, error) {
	venue, ok := s.Venue(league, home)
	if !ok {
		return features.Weather{}, nil
	}
	if venue.Lat == nil || venue.Lon == nil {
		return features.Weather{Dome: venue.Dome}, nil
	}
	if venue.Dome {
		return features.Weather{
			TempC:   floatPtr(DomeTempC),
			WindKmh: floatPtr(DomeWindKmh),
			PrcpMM:  floatPtr(DomePrcpMM),
			Dome:    true,
		}, nil
	}

	day := models.Day(date).Format("2006-01-02")
	key := fmt.Sprintf("%.4f,%.4f,%s", *venue.Lat, *venue.Lon, day)
	if v, ok := s.cache.Get(key); ok {
		return v.(features.Weather), nil
	}

	wx, err := s.fetch(ctx, *venue.Lat, *venue.Lon, date)
	if err != nil {
		if ctx.Err() != nil {
			return features.Weather{}, ctx.Err()
		}
		metrics.RecordSourceFailure("weather")
		s.logger.WithError(err).WithFields(logrus.Fields{
			"league": league,
			"home":   home,
			"date":   day,
		}).Warn("Weather lookup failed")
		return features.Weather{}, nil
	}
	s.cache.Set(key, wx)
	return wx, nil
}

func (s *WeatherSource) fetch(ctx context.Context, lat, lon float64, date time.Time) (features.Weather, error) {
	start := models.Day(date)
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("start", start.Format("2006-01-02"))
	q.Set("end", start.AddDate(0, 0, 1).Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.BaseURL+"/point/hourly?"+q.Encode(), nil)
	if err != nil {
		return features.Weather{}, err
	}
	if s.cfg.APIKey != "" {
		req.Header.Set("x-api-key", s.cfg.APIKey)
	}
	resp, err := s.httpClient.Do(ctx, req)
	if err != nil {
		return features.Weather{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return features.Weather{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body hourlyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return features.Weather{}, fmt.Errorf("decode hourly data: %w", err)
	}
	return aggregateHourly(body), nil
}

// aggregateHourly averages temperature and wind and sums precipitation
// over the non-null hourly values
func aggregateHourly(body hourlyResponse) features.Weather {
	if len(body.Data) == 0 {
		return features.Weather{}
	}
	var temps, winds []float64
	prcp := 0.0
	for _, h := range body.Data {
		if h.Temp != nil {
			temps = append(temps, *h.Temp)
		}
		if h.Wspd != nil {
			winds = append(winds, *h.Wspd)
		}
		if h.Prcp != nil {
			prcp += *h.Prcp
		}
	}
	wx := features.Weather{PrcpMM: floatPtr(prcp)}
	if len(temps) > 0 {
		wx.TempC = floatPtr(meanOf(temps))
	}
	if len(winds) > 0 {
		wx.WindKmh = floatPtr(meanOf(winds) * msToKmh)
	}
	return wx
}

func venueKey(league models.League, team string) string {
	return strings.ToUpper(string(league)) + ":" + team
}

func parseOptionalFloat(s string) *float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseFlag(s string) bool {
	switch strings.ToLower(s) {
	case "1", "1.0", "true", "yes", "y":
		return true
	}
	return false
}

func meanOf(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func floatPtr(v float64) *float64 {
	return &v
}
