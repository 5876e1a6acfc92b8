package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/maschh/sports-edge/internal/backtest"
	"github.com/maschh/sports-edge/internal/config"
	"github.com/maschh/sports-edge/internal/datasource"
	"github.com/maschh/sports-edge/internal/enrichment"
	"github.com/maschh/sports-edge/internal/features"
	"github.com/maschh/sports-edge/internal/logger"
	"github.com/maschh/sports-edge/internal/ml"
	"github.com/maschh/sports-edge/internal/models"
	"github.com/maschh/sports-edge/internal/repository"
)

// totalsTarget labels the regression target
const totalsTarget = "total_points"

// Built is a service wired from configuration together with the resources
// it owns
type Built struct {
	Service    *PredictionService
	HTTPClient *datasource.RateLimitedHTTPClient
	Repository repository.PredictionRepository
}

// Close releases the repository and HTTP client
func (b *Built) Close() error {
	var errs []error
	if b.Repository != nil {
		errs = append(errs, b.Repository.Close())
	}
	if b.HTTPClient != nil {
		errs = append(errs, b.HTTPClient.Close())
	}
	return errors.Join(errs...)
}

// NewFromConfig wires sources, enrichment, models and persistence from cfg
func NewFromConfig(ctx context.Context, cfg *config.Config, base *logrus.Logger) (*Built, error) {
	leagues, err := parseLeagues(cfg.NormalizedLeagues())
	if err != nil {
		return nil, err
	}

	httpClient := datasource.NewRateLimitedHTTPClient(datasource.HTTPClientConfigFrom(cfg.Sources.HTTP), base)
	factory := datasource.NewFactory(cfg.Sources, httpClient, base)
	sources, err := factory.NewGameSources(leagues)
	if err != nil {
		return nil, err
	}

	names := NewTeamNormalizer()
	enrich, err := enrichmentSources(cfg.Sources, names, httpClient, base)
	if err != nil {
		return nil, err
	}
	pipeline, err := features.NewPipeline(eloConfig(cfg.Features.Elo), cfg.Features.FormWindows, enrich, base)
	if err != nil {
		return nil, err
	}

	btCfg, err := backtest.FromConfig(&cfg.Backtest)
	if err != nil {
		return nil, err
	}

	repo, err := repository.Open(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open prediction repository: %w", err)
	}

	svc, err := NewPredictionService(Dependencies{
		Sources:    sources,
		Pipeline:   pipeline,
		Classifier: ml.NewLogisticFactory(logisticConfig(cfg.Model)),
		Regressor:  ml.NewLinearFactory(totalsTarget, pipeline.TotalsColumns()),
		Repository: repo,
		Normalizer: names,
		Logger:     logger.NewPipelineLogger(base),
	}, Options{
		StartSeason: cfg.Backtest.StartSeason,
		EndSeason:   cfg.Backtest.EndSeason,
		Backtest:    btCfg,
		HorizonDays: cfg.Backtest.HorizonDays,
		CVFolds:     cfg.Backtest.CVFolds,
		HTMLPath:    cfg.Output.HTMLPath,
		CSVPath:     cfg.Output.CSVPath,
	})
	if err != nil {
		if repo != nil {
			repo.Close()
		}
		return nil, err
	}
	return &Built{Service: svc, HTTPClient: httpClient, Repository: repo}, nil
}

func parseLeagues(names []string) ([]models.League, error) {
	leagues := make([]models.League, 0, len(names))
	for _, name := range names {
		league, ok := models.ParseLeague(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", models.ErrUnknownLeague, name)
		}
		leagues = append(leagues, league)
	}
	return leagues, nil
}

func enrichmentSources(cfg config.SourcesConfig, names *TeamNormalizer, httpClient *datasource.RateLimitedHTTPClient, log logrus.FieldLogger) (features.Sources, error) {
	var sources features.Sources
	if cfg.Trends.Enabled {
		sources.Trends = enrichment.NewTrendsSource(enrichment.TrendsConfig{
			BaseURL:   cfg.Trends.URL,
			Days:      cfg.Trends.Days,
			BatchSize: cfg.Trends.BatchSize,
			Geo:       cfg.Trends.Geo,
			CacheTTL:  time.Duration(cfg.Trends.CacheTTLMinutes) * time.Minute,
		}, httpClient, log)
	}
	if cfg.Tone.Enabled {
		sources.Tone = enrichment.NewToneSource()
	}
	if cfg.Injuries.CSV != "" {
		sources.Injuries = enrichment.NewInjuryCSV(cfg.Injuries.CSV, log).WithTeamNames(names)
	}
	if cfg.Weather.Enabled {
		weather, err := enrichment.NewWeatherSource(enrichment.WeatherConfig{
			VenuesCSV: cfg.Weather.VenuesCSV,
			BaseURL:   cfg.Weather.URL,
			APIKey:    cfg.Weather.APIKey,
			CacheTTL:  time.Duration(cfg.Weather.CacheTTLMinutes) * time.Minute,
			Names:     names,
		}, httpClient, log)
		if err != nil {
			return features.Sources{}, err
		}
		sources.Weather = weather
	}
	return sources, nil
}

func eloConfig(cfg config.EloConfig) features.EloConfig {
	out := features.DefaultEloConfig()
	if cfg.K > 0 {
		out.K = cfg.K
	}
	if cfg.HomeAdvantage > 0 {
		out.HomeAdvantage = cfg.HomeAdvantage
	}
	if cfg.Base > 0 {
		out.Base = cfg.Base
	}
	return out
}

func logisticConfig(cfg config.ModelConfig) ml.LogisticConfig {
	out := ml.DefaultLogisticConfig()
	if cfg.Iterations > 0 {
		out.Iterations = cfg.Iterations
	}
	if cfg.LearningRate > 0 {
		out.LearningRate = cfg.LearningRate
	}
	if cfg.L2 > 0 {
		out.L2 = cfg.L2
	}
	if cfg.Subsample > 0 {
		out.Subsample = cfg.Subsample
	}
	if cfg.Seed != 0 {
		out.Seed = cfg.Seed
	}
	return out
}
