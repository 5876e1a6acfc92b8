package backtest

import (
	"fmt"

	"github.com/maschh/sports-edge/internal/config"
)

// Default walk-forward settings
const (
	DefaultInitialDays = 730
	DefaultCadenceDays = 7
)

// Config controls the walk-forward state machine
type Config struct {
	// InitialDays is the length of the first training window
	InitialDays int
	// CadenceDays is how far the cutoff advances per cycle
	CadenceDays int
	// Parallel fits up to this many cycles concurrently, 0 or 1 runs sequentially
	Parallel int
	// ClassifierColumns overrides the home-win model inputs, empty uses
	// features.ClassifierColumns
	ClassifierColumns []string
	// TotalsColumns overrides the combined-score model inputs, empty uses
	// features.TotalsColumns
	TotalsColumns []string
}

// DefaultConfig returns the standard two-year, weekly walk-forward
func DefaultConfig() Config {
	return Config{InitialDays: DefaultInitialDays, CadenceDays: DefaultCadenceDays}
}

// FromConfig converts app config to backtest config
func FromConfig(cfg *config.BacktestConfig) (Config, error) {
	if cfg == nil {
		return Config{}, fmt.Errorf("backtest config is required")
	}
	bt := Config{
		InitialDays: cfg.InitialDays,
		CadenceDays: cfg.CadenceDays,
		Parallel:    cfg.Parallel,
	}
	return bt, bt.Validate()
}

// Validate validates walk-forward parameters
func (c Config) Validate() error {
	if c.InitialDays <= 0 {
		return fmt.Errorf("initial window must be positive, got %d days", c.InitialDays)
	}
	if c.CadenceDays <= 0 {
		return fmt.Errorf("cadence must be positive, got %d days", c.CadenceDays)
	}
	if c.Parallel < 0 {
		return fmt.Errorf("parallel cannot be negative")
	}
	return nil
}

func columnsOr(cols, fallback []string) []string {
	if len(cols) > 0 {
		return cols
	}
	return fallback
}
