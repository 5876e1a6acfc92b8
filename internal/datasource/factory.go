package datasource

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/maschh/sports-edge/internal/config"
	"github.com/maschh/sports-edge/internal/models"
)

// Factory creates GameSource implementations based on configuration
type Factory struct {
	config     config.SourcesConfig
	httpClient *RateLimitedHTTPClient
	logger     logrus.FieldLogger
}

// NewFactory creates a new data source factory
func NewFactory(cfg config.SourcesConfig, httpClient *RateLimitedHTTPClient, logger logrus.FieldLogger) *Factory {
	logger = orDefault(logger)
	if httpClient == nil {
		httpClient = NewRateLimitedHTTPClient(HTTPClientConfigFrom(cfg.HTTP), logger)
	}
	return &Factory{
		config:     cfg,
		httpClient: httpClient,
		logger:     logger,
	}
}

// HTTPClient returns the shared client, for enrichment sources
func (f *Factory) HTTPClient() *RateLimitedHTTPClient {
	return f.httpClient
}

// NewGameSource creates the source for a league
func (f *Factory) NewGameSource(league models.League) (GameSource, error) {
	switch league {
	case models.LeagueNFL:
		return NewNFLSource(f.httpClient, f.config.NFL.URL, f.logger), nil
	case models.LeagueCFB:
		return NewCFBSource(f.httpClient, f.config.CFB.URL, f.logger), nil
	case models.LeagueNBA:
		return NewNBASource(f.httpClient, f.config.NBA.URL, f.config.NBA.APIKey, f.logger), nil
	case models.LeagueMLB:
		return NewMLBSource(f.httpClient, f.config.MLB.URL, f.logger), nil
	default:
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownLeague, league)
	}
}

// NewGameSources creates the sources for the listed leagues in order
func (f *Factory) NewGameSources(leagues []models.League) ([]GameSource, error) {
	sources := make([]GameSource, 0, len(leagues))
	for _, league := range leagues {
		source, err := f.NewGameSource(league)
		if err != nil {
			return nil, fmt.Errorf("failed to create data source for %s: %w", league, err)
		}
		sources = append(sources, source)
		f.logger.WithFields(logrus.Fields{"league": league, "source": source.Name()}).Debug("Created data source")
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no leagues configured")
	}
	return sources, nil
}
