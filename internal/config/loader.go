package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. SPORTS_EDGE_APP_LOG_LEVEL
const EnvPrefix = "SPORTS_EDGE"

// DefaultConfigPath is used when no path is given
const DefaultConfigPath = "config/config.yaml"

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return unmarshal(v)
}

// LoadWithDefaults loads configuration, falling back to defaults and
// environment variables when the file does not exist
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	v := newViper()
	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)
	return v
}

// setDefaults registers every key so environment overrides apply even when
// the file omits them
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "sports-edge")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("leagues", []string{"NFL", "NBA", "MLB", "CFB"})

	v.SetDefault("database.driver", "none")
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.sqlite_path", "")

	v.SetDefault("sources.http.timeout_seconds", 60)
	v.SetDefault("sources.http.max_retries", 5)
	v.SetDefault("sources.http.retry_wait_min_ms", 1000)
	v.SetDefault("sources.http.retry_wait_max_ms", 60000)
	v.SetDefault("sources.http.rate_limit", 5.0)
	v.SetDefault("sources.http.circuit_breaker_max", 5)
	for _, league := range []string{"nfl", "cfb", "nba", "mlb"} {
		v.SetDefault("sources."+league+".url", "")
		v.SetDefault("sources."+league+".api_key", "")
	}
	v.SetDefault("sources.trends.enabled", false)
	v.SetDefault("sources.trends.url", "")
	v.SetDefault("sources.trends.days", 14)
	v.SetDefault("sources.trends.batch_size", 5)
	v.SetDefault("sources.trends.geo", "US")
	v.SetDefault("sources.trends.cache_ttl_minutes", 360)
	v.SetDefault("sources.tone.enabled", true)
	v.SetDefault("sources.weather.enabled", false)
	v.SetDefault("sources.weather.venues_csv", "")
	v.SetDefault("sources.weather.url", "")
	v.SetDefault("sources.weather.api_key", "")
	v.SetDefault("sources.weather.cache_ttl_minutes", 1440)
	v.SetDefault("sources.injuries.csv", "")

	v.SetDefault("features.elo.k", 20.0)
	v.SetDefault("features.elo.home_advantage", 55.0)
	v.SetDefault("features.elo.base", 1500.0)
	v.SetDefault("features.form_windows", []int{3, 5, 10})

	v.SetDefault("model.iterations", 400)
	v.SetDefault("model.learning_rate", 0.15)
	v.SetDefault("model.l2", 0.001)
	v.SetDefault("model.subsample", 0.8)
	v.SetDefault("model.seed", 42)

	v.SetDefault("backtest.start_season", 2019)
	v.SetDefault("backtest.end_season", 2024)
	v.SetDefault("backtest.initial_days", 730)
	v.SetDefault("backtest.cadence_days", 7)
	v.SetDefault("backtest.parallel", 0)
	v.SetDefault("backtest.cv_folds", 5)
	v.SetDefault("backtest.horizon_days", 14)
	v.SetDefault("backtest.as_of", "")

	v.SetDefault("output.html_path", "predictions.html")
	v.SetDefault("output.csv_path", "predictions.csv")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("schedule.cron", "0 9 * * *")
	v.SetDefault("schedule.timeout", "2h")
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}
