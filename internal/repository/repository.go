package repository

import (
	"context"
	"fmt"

	"github.com/maschh/sports-edge/internal/config"
	"github.com/maschh/sports-edge/internal/database"
)

// Open returns the prediction repository selected by cfg.Driver. It returns
// nil when persistence is disabled.
func Open(ctx context.Context, cfg *config.DatabaseConfig) (PredictionRepository, error) {
	switch cfg.Driver {
	case "", "none":
		return nil, nil
	case "sqlite":
		repo, err := NewSQLitePredictionRepository(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case "postgres":
		db, err := database.Initialize(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewPostgresPredictionRepository(db), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
