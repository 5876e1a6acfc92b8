package config

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	validConfigPath    = "testdata/valid_config.yaml"
	invalidConfigPath  = "testdata/invalid_config.yaml"
	reversedConfigPath = "testdata/reversed_seasons.yaml"
)

func TestLoadConfigSuccess(t *testing.T) {
	t.Setenv("TEST_NBA_API_KEY", "expanded_secret_value")

	cfg, err := Load(validConfigPath)
	require.NoError(t, err)

	assert.Equal(t, "sports-edge", cfg.App.Name)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, []string{"NFL", "NBA"}, cfg.Leagues)
	assert.Equal(t, "expanded_secret_value", cfg.Sources.NBA.APIKey)
	assert.Equal(t, 30, cfg.Sources.HTTP.TimeoutSeconds)
	assert.Equal(t, 1000, cfg.Sources.HTTP.RetryWaitMinMS)
	assert.Equal(t, 730, cfg.Backtest.InitialDays)
	assert.Equal(t, 4, cfg.Backtest.Parallel)
	assert.Equal(t, []int{3, 5, 10}, cfg.Features.FormWindows)
	assert.True(t, cfg.PersistenceEnabled())
	require.NoError(t, Validate(cfg))
}

func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoadConfigEnvironmentOverride(t *testing.T) {
	t.Setenv("SPORTS_EDGE_APP_LOG_LEVEL", "debug")
	t.Setenv("SPORTS_EDGE_BACKTEST_CADENCE_DAYS", "14")

	cfg, err := Load(validConfigPath)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, 14, cfg.Backtest.CadenceDays)
}

func TestLoadWithDefaultsMissingFile(t *testing.T) {
	cfg, err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, []string{"NFL", "NBA", "MLB", "CFB"}, cfg.Leagues)
	assert.Equal(t, 2019, cfg.Backtest.StartSeason)
	assert.Equal(t, 2024, cfg.Backtest.EndSeason)
	assert.Equal(t, 730, cfg.Backtest.InitialDays)
	assert.Equal(t, 7, cfg.Backtest.CadenceDays)
	assert.Equal(t, 14, cfg.Backtest.HorizonDays)
	assert.Equal(t, 20.0, cfg.Features.Elo.K)
	assert.Equal(t, 0.8, cfg.Model.Subsample)
	assert.False(t, cfg.PersistenceEnabled())
	require.NoError(t, Validate(cfg))
}

func TestValidateRejectsInvalidFields(t *testing.T) {
	cfg, err := Load(invalidConfigPath)
	require.NoError(t, err)

	err = Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Environment")
	assert.Contains(t, err.Error(), "LogLevel")
	assert.Contains(t, err.Error(), "NHL")
}

func TestValidateCrossField(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "reversed seasons",
			mutate:  func(c *Config) { c.Backtest.StartSeason, c.Backtest.EndSeason = 2024, 2019 },
			wantErr: "start_season",
		},
		{
			name:    "bad cron",
			mutate:  func(c *Config) { c.Schedule.Cron = "every morning" },
			wantErr: "invalid schedule cron",
		},
		{
			name:    "bad timeout",
			mutate:  func(c *Config) { c.Schedule.Timeout = "soon" },
			wantErr: "invalid schedule timeout",
		},
		{
			name:    "trends without url",
			mutate:  func(c *Config) { c.Sources.Trends = TrendsConfig{Enabled: true} },
			wantErr: "trends",
		},
		{
			name: "retry waits inverted",
			mutate: func(c *Config) {
				c.Sources.HTTP.RetryWaitMinMS, c.Sources.HTTP.RetryWaitMaxMS = 5000, 100
			},
			wantErr: "retry_wait_min_ms",
		},
		{
			name: "production postgres without ssl",
			mutate: func(c *Config) {
				c.App.Environment = "production"
				c.Database = DatabaseConfig{Driver: "postgres", Host: "db", Port: 5432, Name: "edge", User: "edge", SSLMode: "disable"}
			},
			wantErr: "SSL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadWithDefaults("")
			require.NoError(t, err)
			tt.mutate(cfg)

			err = Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestReversedSeasonsFile(t *testing.T) {
	cfg, err := Load(reversedConfigPath)
	require.NoError(t, err)
	assert.ErrorContains(t, Validate(cfg), "start_season must not be after end_season")
}

func TestValidateAsOfDate(t *testing.T) {
	cfg, err := LoadWithDefaults("")
	require.NoError(t, err)

	cfg.Backtest.AsOf = "2024-02-30"
	assert.ErrorContains(t, Validate(cfg), "YYYY-MM-DD")

	cfg.Backtest.AsOf = "2024-02-11"
	assert.NoError(t, Validate(cfg))
}

func TestValidateEnvironment(t *testing.T) {
	cfg, err := LoadWithDefaults("")
	require.NoError(t, err)
	cfg.App.Environment = "production"

	cfg.Sources.NBA.APIKey = "YOUR_API_KEY"
	assert.Error(t, ValidateEnvironment(cfg))

	cfg.Sources.NBA.APIKey = "c0ffee"
	assert.NoError(t, ValidateEnvironment(cfg))
}

func TestDatabaseDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{User: "edge", Password: "pw", Host: "localhost", Port: 5432, Name: "edge", SSLMode: "disable"}}
	assert.Equal(t, "postgres://edge:pw@localhost:5432/edge?sslmode=disable", cfg.GetDatabaseDSN())
}

type fakeSecrets struct {
	out *secretsmanager.GetSecretValueOutput
	err error
}

func (f fakeSecrets) GetSecretValue(context.Context, *secretsmanager.GetSecretValueInput, ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	return f.out, f.err
}

func TestSecretsOverlay(t *testing.T) {
	client := fakeSecrets{out: &secretsmanager.GetSecretValueOutput{
		SecretString: aws.String(`{"database_password":"s3cret","nba_api_key":"nba-key"}`),
	}}

	secrets, err := fetchSecrets(context.Background(), client, "sports-edge")
	require.NoError(t, err)

	cfg := &Config{}
	cfg.Sources.Weather.APIKey = "kept"
	overlaySecretsOnConfig(cfg, secrets)

	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Equal(t, "nba-key", cfg.Sources.NBA.APIKey)
	assert.Equal(t, "kept", cfg.Sources.Weather.APIKey)
}

func TestSecretsErrors(t *testing.T) {
	_, err := fetchSecrets(context.Background(), fakeSecrets{out: &secretsmanager.GetSecretValueOutput{}}, "x")
	assert.ErrorIs(t, err, errNoSecretData)

	boom := errors.New("access denied")
	_, err = fetchSecrets(context.Background(), fakeSecrets{err: boom}, "x")
	assert.ErrorIs(t, err, boom)

	_, err = parseSecretData(&secretsmanager.GetSecretValueOutput{SecretString: aws.String("{")})
	assert.ErrorContains(t, err, "parse secret JSON")
}
