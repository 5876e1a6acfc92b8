package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/maschh/sports-edge/internal/models"
)

const (
	sqliteDateLayout = "2006-01-02"
	// fixed width so text order matches time order
	sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS predictions (
		id            TEXT PRIMARY KEY,
		run_id        TEXT NOT NULL,
		league        TEXT NOT NULL,
		date          TEXT NOT NULL,
		home          TEXT NOT NULL,
		away          TEXT NOT NULL,
		p_home        REAL NOT NULL,
		p_away        REAL NOT NULL,
		home_american INTEGER NOT NULL,
		away_american INTEGER NOT NULL,
		raw_spread    REAL NOT NULL,
		spread_line   REAL NOT NULL,
		pred_total    REAL,
		ml_lean       TEXT NOT NULL,
		spread_lean   TEXT NOT NULL,
		total_lean    TEXT NOT NULL,
		created_at    TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS predictions_league_date_idx ON predictions (league, date)`,
	`CREATE INDEX IF NOT EXISTS predictions_run_idx ON predictions (run_id)`,
}

// SQLitePredictionRepository implements PredictionRepository on a local
// SQLite file. Dates are stored as YYYY-MM-DD text and timestamps as fixed-width UTC text.
type SQLitePredictionRepository struct {
	db *sql.DB
}

// NewSQLitePredictionRepository opens (creating if needed) the database at
// path and ensures the schema exists
func NewSQLitePredictionRepository(ctx context.Context, path string) (*SQLitePredictionRepository, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one writer at a time
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create predictions schema: %w", err)
		}
	}
	return &SQLitePredictionRepository{db: db}, nil
}

// SaveBatch inserts records in one transaction
func (r *SQLitePredictionRepository) SaveBatch(ctx context.Context, records []models.PredictionRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO predictions (
		id, run_id, league, date, home, away, p_home, p_away,
		home_american, away_american, raw_spread, spread_line, pred_total,
		ml_lean, spread_lean, total_lean, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		rec = withDefaults(rec)
		var predTotal sql.NullFloat64
		if rec.PredTotal != nil {
			predTotal = sql.NullFloat64{Float64: *rec.PredTotal, Valid: true}
		}
		_, err := stmt.ExecContext(ctx,
			rec.ID.String(), rec.RunID.String(), string(rec.League), rec.Date.Format(sqliteDateLayout),
			rec.Home, rec.Away, rec.ProbHome, rec.ProbAway,
			rec.HomeAmerican, rec.AwayAmerican, rec.RawSpread, rec.SpreadLine, predTotal,
			rec.MLLean, rec.SpreadLean, rec.TotalLean, rec.CreatedAt.UTC().Format(sqliteTimeLayout),
		)
		if isSQLiteConstraint(err) {
			return 0, fmt.Errorf("prediction %s: %w", rec.ID, models.ErrDuplicateKey)
		}
		if err != nil {
			return 0, fmt.Errorf("failed to insert prediction %s %s@%s: %w", rec.Date.Format(sqliteDateLayout), rec.Away, rec.Home, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit predictions: %w", err)
	}
	return len(records), nil
}

// GetByRun retrieves the records of one run
func (r *SQLitePredictionRepository) GetByRun(ctx context.Context, runID uuid.UUID) ([]models.PredictionRecord, error) {
	rows, err := r.db.QueryContext(ctx, selectPredictions+`WHERE run_id = ? ORDER BY league, date, home`, runID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions by run: %w", err)
	}
	return scanSQLiteRecords(rows)
}

// GetByLeagueAndDateRange retrieves a league's records for games in [start, end]
func (r *SQLitePredictionRepository) GetByLeagueAndDateRange(ctx context.Context, league models.League, start, end time.Time) ([]models.PredictionRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		selectPredictions+`WHERE league = ? AND date >= ? AND date <= ? ORDER BY date, home`,
		string(league), start.Format(sqliteDateLayout), end.Format(sqliteDateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions by league: %w", err)
	}
	return scanSQLiteRecords(rows)
}

// LatestRunID returns the run of the newest record
func (r *SQLitePredictionRepository) LatestRunID(ctx context.Context) (uuid.UUID, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT run_id FROM predictions ORDER BY created_at DESC LIMIT 1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, models.ErrNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	return uuid.Parse(raw)
}

// DeleteBefore removes records created before t
func (r *SQLitePredictionRepository) DeleteBefore(ctx context.Context, t time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM predictions WHERE created_at < ?`, t.UTC().Format(sqliteTimeLayout))
	if err != nil {
		return 0, fmt.Errorf("failed to delete predictions: %w", err)
	}
	return res.RowsAffected()
}

// Ping checks the database file is usable
func (r *SQLitePredictionRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database
func (r *SQLitePredictionRepository) Close() error {
	return r.db.Close()
}

func isSQLiteConstraint(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY || se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

func scanSQLiteRecords(rows *sql.Rows) ([]models.PredictionRecord, error) {
	defer rows.Close()

	var out []models.PredictionRecord
	for rows.Next() {
		var (
			rec               models.PredictionRecord
			id, runID, league string
			date, createdAt   string
			predTotal         sql.NullFloat64
		)
		err := rows.Scan(
			&id, &runID, &league, &date, &rec.Home, &rec.Away, &rec.ProbHome, &rec.ProbAway,
			&rec.HomeAmerican, &rec.AwayAmerican, &rec.RawSpread, &rec.SpreadLine, &predTotal,
			&rec.MLLean, &rec.SpreadLean, &rec.TotalLean, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		if rec.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid prediction id %q: %w", id, err)
		}
		if rec.RunID, err = uuid.Parse(runID); err != nil {
			return nil, fmt.Errorf("invalid run id %q: %w", runID, err)
		}
		if rec.Date, err = time.Parse(sqliteDateLayout, date); err != nil {
			return nil, fmt.Errorf("invalid prediction date %q: %w", date, err)
		}
		if rec.CreatedAt, err = time.Parse(sqliteTimeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
		}
		rec.League = models.League(league)
		if predTotal.Valid {
			v := predTotal.Float64
			rec.PredTotal = &v
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
