package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/maschh/sports-edge/internal/database"
	"github.com/maschh/sports-edge/internal/models"
)

// SQLSTATE unique_violation
const pgUniqueViolation = "23505"

var predictionColumns = []string{
	"id", "run_id", "league", "date", "home", "away", "p_home", "p_away",
	"home_american", "away_american", "raw_spread", "spread_line", "pred_total",
	"ml_lean", "spread_lean", "total_lean", "created_at",
}

const selectPredictions = `
	SELECT id, run_id, league, date, home, away, p_home, p_away,
		home_american, away_american, raw_spread, spread_line, pred_total,
		ml_lean, spread_lean, total_lean, created_at
	FROM predictions
`

// PostgresPredictionRepository implements PredictionRepository for PostgreSQL
type PostgresPredictionRepository struct {
	db *database.DB
}

// NewPostgresPredictionRepository creates a new prediction repository
func NewPostgresPredictionRepository(db *database.DB) *PostgresPredictionRepository {
	return &PostgresPredictionRepository{db: db}
}

// SaveBatch inserts records using COPY inside one transaction
func (r *PostgresPredictionRepository) SaveBatch(ctx context.Context, records []models.PredictionRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	rows := make([][]interface{}, len(records))
	for i, rec := range records {
		rec = withDefaults(rec)
		rows[i] = []interface{}{
			rec.ID, rec.RunID, string(rec.League), rec.Date, rec.Home, rec.Away, rec.ProbHome, rec.ProbAway,
			rec.HomeAmerican, rec.AwayAmerican, rec.RawSpread, rec.SpreadLine, rec.PredTotal,
			rec.MLLean, rec.SpreadLean, rec.TotalLean, rec.CreatedAt,
		}
	}

	var count int64
	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		n, err := tx.CopyFrom(ctx, pgx.Identifier{"predictions"}, predictionColumns, pgx.CopyFromRows(rows))
		if err != nil {
			return err
		}
		if n != int64(len(records)) {
			return fmt.Errorf("inserted %d rows, expected %d", n, len(records))
		}
		count = n
		return nil
	})
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return 0, fmt.Errorf("%s: %w", pgErr.Detail, models.ErrDuplicateKey)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to batch insert predictions: %w", err)
	}
	return int(count), nil
}

// GetByRun retrieves the records of one run
func (r *PostgresPredictionRepository) GetByRun(ctx context.Context, runID uuid.UUID) ([]models.PredictionRecord, error) {
	rows, err := r.db.GetPool().Query(ctx, selectPredictions+`WHERE run_id = $1 ORDER BY league, date, home`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions by run: %w", err)
	}
	return collectRecords(rows)
}

// GetByLeagueAndDateRange retrieves a league's records for games in [start, end]
func (r *PostgresPredictionRepository) GetByLeagueAndDateRange(ctx context.Context, league models.League, start, end time.Time) ([]models.PredictionRecord, error) {
	rows, err := r.db.GetPool().Query(ctx,
		selectPredictions+`WHERE league = $1 AND date >= $2 AND date <= $3 ORDER BY date, home`,
		string(league), models.Day(start), models.Day(end),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions by league: %w", err)
	}
	return collectRecords(rows)
}

// LatestRunID returns the run of the newest record
func (r *PostgresPredictionRepository) LatestRunID(ctx context.Context) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.GetPool().QueryRow(ctx, `SELECT run_id FROM predictions ORDER BY created_at DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, models.ErrNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	return id, nil
}

// DeleteBefore removes records created before t
func (r *PostgresPredictionRepository) DeleteBefore(ctx context.Context, t time.Time) (int64, error) {
	tag, err := r.db.GetPool().Exec(ctx, `DELETE FROM predictions WHERE created_at < $1`, t)
	if err != nil {
		return 0, fmt.Errorf("failed to delete predictions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Ping checks connectivity
func (r *PostgresPredictionRepository) Ping(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

// Close closes the connection pool
func (r *PostgresPredictionRepository) Close() error {
	r.db.Close()
	return nil
}

func collectRecords(rows pgx.Rows) ([]models.PredictionRecord, error) {
	defer rows.Close()

	var out []models.PredictionRecord
	for rows.Next() {
		var rec models.PredictionRecord
		var league string
		err := rows.Scan(
			&rec.ID, &rec.RunID, &league, &rec.Date, &rec.Home, &rec.Away, &rec.ProbHome, &rec.ProbAway,
			&rec.HomeAmerican, &rec.AwayAmerican, &rec.RawSpread, &rec.SpreadLine, &rec.PredTotal,
			&rec.MLLean, &rec.SpreadLean, &rec.TotalLean, &rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		rec.League = models.League(league)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// withDefaults assigns an ID and creation time to new records
func withDefaults(rec models.PredictionRecord) models.PredictionRecord {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	return rec
}
