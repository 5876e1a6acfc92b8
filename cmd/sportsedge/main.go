// Package main provides the sports-edge CLI: walk-forward predictions,
// backtest reports and the scheduled daemon.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/maschh/sports-edge/internal/config"
	"github.com/maschh/sports-edge/internal/logger"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// options are the flags shared by every command
type options struct {
	configPath  string
	logLevel    string
	leagues     []string
	startSeason int
	endSeason   int
	initialDays int
	cadenceDays int
	parallel    int
	htmlOut     string
	csvOut      string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "sportsedge",
		Short:         "Walk-forward win probabilities, spreads and totals for NFL, CFB, NBA and MLB",
		Version:       fmt.Sprintf("%s (%s)", Version, GitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", config.DefaultConfigPath, "Path to configuration file")
	flags.StringVar(&opts.logLevel, "log-level", "", "Override the configured log level")
	flags.StringSliceVar(&opts.leagues, "leagues", nil, "Leagues to run (NFL,CFB,NBA,MLB)")
	flags.IntVar(&opts.startSeason, "start-season", 2019, "First season to load")
	flags.IntVar(&opts.endSeason, "end-season", 2024, "Last season to load")
	flags.IntVar(&opts.initialDays, "initial-days", 730, "Length of the first training window in days")
	flags.IntVar(&opts.cadenceDays, "cadence-days", 7, "Days the cutoff advances per cycle")
	flags.IntVar(&opts.parallel, "parallel", 0, "Cycles fitted concurrently, 0 runs sequentially")

	root.AddCommand(newPredictCmd(opts), newBacktestCmd(opts), newServeCmd(opts))
	return root
}

// loadConfig reads the config file, overlays AWS secrets when enabled,
// applies explicitly set flags and validates the result
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.LoadWithDefaults(opts.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return nil, nil, fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cmd.Context(), cfg, region, secretName); err != nil {
			return nil, nil, fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	applyFlags(cmd, opts, cfg)

	if err := config.Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := config.ValidateEnvironment(cfg); err != nil {
		return nil, nil, err
	}

	log := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	return cfg, log, nil
}

func applyFlags(cmd *cobra.Command, opts *options, cfg *config.Config) {
	changed := func(name string) bool { return cmd.Flags().Changed(name) }

	if changed("log-level") {
		cfg.App.LogLevel = opts.logLevel
	}
	if changed("leagues") {
		cfg.Leagues = opts.leagues
	}
	if changed("start-season") {
		cfg.Backtest.StartSeason = opts.startSeason
	}
	if changed("end-season") {
		cfg.Backtest.EndSeason = opts.endSeason
	}
	if changed("initial-days") {
		cfg.Backtest.InitialDays = opts.initialDays
	}
	if changed("cadence-days") {
		cfg.Backtest.CadenceDays = opts.cadenceDays
	}
	if changed("parallel") {
		cfg.Backtest.Parallel = opts.parallel
	}
	if changed("html-out") {
		cfg.Output.HTMLPath = opts.htmlOut
	}
	if changed("csv-out") {
		cfg.Output.CSVPath = opts.csvOut
	}
}
