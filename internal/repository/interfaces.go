// Package repository persists formatted predictions.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/maschh/sports-edge/internal/models"
)

// PredictionRepository defines the interface for prediction data access
type PredictionRepository interface {
	// SaveBatch stores records and returns how many were written
	SaveBatch(ctx context.Context, records []models.PredictionRecord) (int, error)
	// GetByRun returns a run's records ordered by league, date, home
	GetByRun(ctx context.Context, runID uuid.UUID) ([]models.PredictionRecord, error)
	// GetByLeagueAndDateRange returns records whose game date is in [start, end]
	GetByLeagueAndDateRange(ctx context.Context, league models.League, start, end time.Time) ([]models.PredictionRecord, error)
	// LatestRunID returns the run that wrote the newest record
	LatestRunID(ctx context.Context) (uuid.UUID, error)
	// DeleteBefore removes records created before t and returns how many
	DeleteBefore(ctx context.Context, t time.Time) (int64, error)
	// Ping checks the store is reachable
	Ping(ctx context.Context) error
	Close() error
}
