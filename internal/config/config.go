// Package config provides configuration management for the sports-edge application.
package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Config represents the complete application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app" validate:"required"`
	Leagues  []string       `mapstructure:"leagues" validate:"required,min=1,dive,league"`
	Database DatabaseConfig `mapstructure:"database"`
	Sources  SourcesConfig  `mapstructure:"sources"`
	Features FeaturesConfig `mapstructure:"features"`
	Model    ModelConfig    `mapstructure:"model"`
	Backtest BacktestConfig `mapstructure:"backtest" validate:"required"`
	Output   OutputConfig   `mapstructure:"output"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig selects where predictions are persisted. Driver "none"
// disables persistence.
type DatabaseConfig struct {
	Driver         string `mapstructure:"driver" validate:"omitempty,oneof=none postgres sqlite"`
	Host           string `mapstructure:"host" validate:"required_if=Driver postgres"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required_if=Driver postgres"`
	User           string `mapstructure:"user" validate:"required_if=Driver postgres"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
	SQLitePath     string `mapstructure:"sqlite_path" validate:"required_if=Driver sqlite"`
}

// HTTPConfig tunes the shared rate-limited HTTP client
type HTTPConfig struct {
	TimeoutSeconds    int     `mapstructure:"timeout_seconds" validate:"gte=0"`
	MaxRetries        int     `mapstructure:"max_retries" validate:"gte=0"`
	RetryWaitMinMS    int     `mapstructure:"retry_wait_min_ms" validate:"gte=0"`
	RetryWaitMaxMS    int     `mapstructure:"retry_wait_max_ms" validate:"gte=0"`
	RateLimit         float64 `mapstructure:"rate_limit" validate:"gte=0"`
	CircuitBreakerMax int     `mapstructure:"circuit_breaker_max" validate:"gte=0"`
}

// LeagueSourceConfig points a league loader at its upstream
type LeagueSourceConfig struct {
	URL    string `mapstructure:"url" validate:"omitempty,url"`
	APIKey string `mapstructure:"api_key"`
}

// TrendsConfig configures the search-interest source
type TrendsConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	URL             string `mapstructure:"url" validate:"omitempty,url"`
	Days            int    `mapstructure:"days" validate:"gte=0"`
	BatchSize       int    `mapstructure:"batch_size" validate:"gte=0,lte=5"`
	Geo             string `mapstructure:"geo"`
	CacheTTLMinutes int    `mapstructure:"cache_ttl_minutes" validate:"gte=0"`
}

// ToneConfig toggles the news tone source
type ToneConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// WeatherConfig configures venue weather lookups
type WeatherConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	VenuesCSV       string `mapstructure:"venues_csv" validate:"required_if=Enabled true"`
	URL             string `mapstructure:"url" validate:"omitempty,url"`
	APIKey          string `mapstructure:"api_key"`
	CacheTTLMinutes int    `mapstructure:"cache_ttl_minutes" validate:"gte=0"`
}

// InjuriesConfig points at the injuries CSV
type InjuriesConfig struct {
	CSV string `mapstructure:"csv"`
}

// SourcesConfig groups the game loaders and enrichment providers
type SourcesConfig struct {
	HTTP     HTTPConfig         `mapstructure:"http"`
	NFL      LeagueSourceConfig `mapstructure:"nfl"`
	CFB      LeagueSourceConfig `mapstructure:"cfb"`
	NBA      LeagueSourceConfig `mapstructure:"nba"`
	MLB      LeagueSourceConfig `mapstructure:"mlb"`
	Trends   TrendsConfig       `mapstructure:"trends"`
	Tone     ToneConfig         `mapstructure:"tone"`
	Weather  WeatherConfig      `mapstructure:"weather"`
	Injuries InjuriesConfig     `mapstructure:"injuries"`
}

// EloConfig holds the rating parameters
type EloConfig struct {
	K             float64 `mapstructure:"k" validate:"gt=0"`
	HomeAdvantage float64 `mapstructure:"home_advantage" validate:"gte=0"`
	Base          float64 `mapstructure:"base" validate:"gt=0"`
}

// FeaturesConfig controls feature engineering
type FeaturesConfig struct {
	Elo         EloConfig `mapstructure:"elo"`
	FormWindows []int     `mapstructure:"form_windows" validate:"dive,gt=0"`
}

// ModelConfig holds the classifier hyperparameters
type ModelConfig struct {
	Iterations   int     `mapstructure:"iterations" validate:"gte=0"`
	LearningRate float64 `mapstructure:"learning_rate" validate:"gte=0"`
	L2           float64 `mapstructure:"l2" validate:"gte=0"`
	Subsample    float64 `mapstructure:"subsample" validate:"gte=0,lte=1"`
	Seed         int64   `mapstructure:"seed"`
}

// BacktestConfig represents walk-forward configuration
type BacktestConfig struct {
	StartSeason int `mapstructure:"start_season" validate:"required,gte=1900"`
	EndSeason   int `mapstructure:"end_season" validate:"required,gte=1900"`
	InitialDays int `mapstructure:"initial_days" validate:"required,gt=0"`
	CadenceDays int `mapstructure:"cadence_days" validate:"required,gt=0"`
	Parallel    int `mapstructure:"parallel" validate:"gte=0"`
	CVFolds     int `mapstructure:"cv_folds" validate:"gte=0"`
	HorizonDays int `mapstructure:"horizon_days" validate:"gte=0"`
	// AsOf pins the evaluation date (YYYY-MM-DD); empty means today
	AsOf string `mapstructure:"as_of" validate:"omitempty,datetime"`
}

// OutputConfig controls where reports are written
type OutputConfig struct {
	HTMLPath string `mapstructure:"html_path"`
	CSVPath  string `mapstructure:"csv_path"`
}

// MetricsConfig represents metrics and health endpoint configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Path    string `mapstructure:"path"`
}

// ScheduleConfig drives the daemon's prediction runs
type ScheduleConfig struct {
	Cron    string `mapstructure:"cron"`
	Timeout string `mapstructure:"timeout"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// PersistenceEnabled reports whether predictions are stored
func (c *Config) PersistenceEnabled() bool {
	return c.Database.Driver != "" && c.Database.Driver != "none"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return c.Database.DSN()
}

// DSN returns the postgres:// URL of the database, escaping credentials
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	return u.String()
}

// NormalizedLeagues returns the configured leagues upper-cased
func (c *Config) NormalizedLeagues() []string {
	out := make([]string, len(c.Leagues))
	for i, l := range c.Leagues {
		out[i] = strings.ToUpper(strings.TrimSpace(l))
	}
	return out
}
