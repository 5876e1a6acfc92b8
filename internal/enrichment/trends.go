package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/maschh/sports-edge/internal/datasource"
	"github.com/maschh/sports-edge/internal/metrics"
	"github.com/maschh/sports-edge/internal/models"
)

// Search interest defaults
const (
	DefaultTrendsDays      = 14
	DefaultTrendsBatchSize = 5
	DefaultTrendsGeo       = "US"
)

// TrendsConfig configures the search-interest source
type TrendsConfig struct {
	BaseURL   string
	Days      int
	BatchSize int
	Geo       string
	CacheTTL  time.Duration
}

// TrendsSource averages search interest per team over a trailing window.
// The endpoint accepts up to BatchSize keywords per request and answers
// {"interest": {"<keyword>": [values...]}}.
type TrendsSource struct {
	cfg        TrendsConfig
	httpClient *datasource.RateLimitedHTTPClient
	cache      *LookupCache
	logger     logrus.FieldLogger
}

type trendsResponse struct {
	Interest map[string][]float64 `json:"interest"`
}

// NewTrendsSource creates a search-interest source
func NewTrendsSource(cfg TrendsConfig, httpClient *datasource.RateLimitedHTTPClient, logger logrus.FieldLogger) *TrendsSource {
	if cfg.Days <= 0 {
		cfg.Days = DefaultTrendsDays
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultTrendsBatchSize
	}
	if cfg.Geo == "" {
		cfg.Geo = DefaultTrendsGeo
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 6 * time.Hour
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &TrendsSource{
		cfg:        cfg,
		httpClient: httpClient,
		cache:      NewLookupCache(cfg.CacheTTL),
		logger:     logger,
	}
}

// Name returns the source name
func (s *TrendsSource) Name() string {
	return "trends"
}

// TeamValues returns mean interest per team. Teams are queried in batches;
// a batch that fails after retries is logged and its teams are left out,
// so they fall back to zero.
func (s *TrendsSource) TeamValues(ctx context.Context, league models.League, teams []string) (map[string]float64, error) {
	out := make(map[string]float64, len(teams))
	var pending []string
	for _, team := range teams {
		if v, ok := s.cache.Get(cacheKey(league, team)); ok {
			out[team] = v.(float64)
			continue
		}
		pending = append(pending, team)
	}

	for start := 0; start < len(pending); start += s.cfg.BatchSize {
		end := min(start+s.cfg.BatchSize, len(pending))
		batch := pending[start:end]
		values, err := s.fetchBatch(ctx, batch)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			metrics.RecordSourceFailure(s.Name())
			s.logger.WithError(err).WithFields(logrus.Fields{
				"league": league,
				"teams":  batch,
			}).Warn("Search interest unavailable, using zero")
			continue
		}
		for _, team := range batch {
			v, ok := values[team]
			if !ok {
				continue
			}
			out[team] = v
			s.cache.Set(cacheKey(league, team), v)
		}
	}
	return out, nil
}

func (s *TrendsSource) fetchBatch(ctx context.Context, keywords []string) (map[string]float64, error) {
	q := url.Values{}
	for _, k := range keywords {
		q.Add("q", k)
	}
	q.Set("days", strconv.Itoa(s.cfg.Days))
	q.Set("geo", s.cfg.Geo)

	resp, err := s.httpClient.Get(ctx, s.cfg.BaseURL+"/interest?"+q.Encode())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body trendsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode interest: %w", err)
	}
	out := make(map[string]float64, len(body.Interest))
	for k, series := range body.Interest {
		if len(series) == 0 {
			continue
		}
		sum := 0.0
		for _, v := range series {
			sum += v
		}
		out[k] = sum / float64(len(series))
	}
	return out, nil
}

func cacheKey(league models.League, team string) string {
	return string(league) + ":" + team
}
