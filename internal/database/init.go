package database

import (
	"context"
	"fmt"

	"github.com/maschh/sports-edge/internal/config"
)

// PredictionsSchema creates the predictions table and its lookup indexes
const PredictionsSchema = `
CREATE TABLE IF NOT EXISTS predictions (
	id            UUID PRIMARY KEY,
	run_id        UUID NOT NULL,
	league        TEXT NOT NULL,
	date          DATE NOT NULL,
	home          TEXT NOT NULL,
	away          TEXT NOT NULL,
	p_home        DOUBLE PRECISION NOT NULL,
	p_away        DOUBLE PRECISION NOT NULL,
	home_american INTEGER NOT NULL,
	away_american INTEGER NOT NULL,
	raw_spread    DOUBLE PRECISION NOT NULL,
	spread_line   DOUBLE PRECISION NOT NULL,
	pred_total    DOUBLE PRECISION,
	ml_lean       TEXT NOT NULL,
	spread_lean   TEXT NOT NULL,
	total_lean    TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS predictions_league_date_idx ON predictions (league, date);
CREATE INDEX IF NOT EXISTS predictions_run_idx ON predictions (run_id);
`

// Initialize creates a database connection pool and ensures the schema exists
func Initialize(ctx context.Context, cfg *config.DatabaseConfig) (*DB, error) {
	db, err := NewDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates missing tables and indexes
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, PredictionsSchema); err != nil {
		return fmt.Errorf("failed to create predictions schema: %w", err)
	}
	return nil
}
