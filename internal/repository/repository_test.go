package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maschh/sports-edge/internal/config"
	"github.com/maschh/sports-edge/internal/database"
	"github.com/maschh/sports-edge/internal/models"
)

func day(m time.Month, d int) time.Time {
	return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleRecords(runID uuid.UUID, created time.Time) []models.PredictionRecord {
	total := 47.5
	return []models.PredictionRecord{
		{
			RunID: runID, League: models.LeagueNFL, Date: day(1, 7), Home: "KC", Away: "LAC",
			ProbHome: 0.62, ProbAway: 0.38, HomeAmerican: -163, AwayAmerican: 163,
			RawSpread: -2.7, SpreadLine: -2.5, PredTotal: &total,
			MLLean: "HOME", SpreadLean: "HOME 2.5", TotalLean: "MODEL TOTAL", CreatedAt: created,
		},
		{
			RunID: runID, League: models.LeagueNFL, Date: day(1, 14), Home: "BUF", Away: "PIT",
			ProbHome: 0.7, ProbAway: 0.3, HomeAmerican: -233, AwayAmerican: 233,
			RawSpread: -4.2, SpreadLine: -4.0,
			MLLean: "HOME", SpreadLean: "HOME 4.0", TotalLean: "NO EDGE", CreatedAt: created,
		},
		{
			RunID: runID, League: models.LeagueNBA, Date: day(1, 10), Home: "BOS", Away: "MIN",
			ProbHome: 0.45, ProbAway: 0.55, HomeAmerican: 122, AwayAmerican: -122,
			RawSpread: 1.7, SpreadLine: 1.5,
			MLLean: "AWAY", SpreadLean: "AWAY 1.5", TotalLean: "NO EDGE", CreatedAt: created,
		},
	}
}

func openSQLite(t *testing.T) *SQLitePredictionRepository {
	t.Helper()
	repo, err := NewSQLitePredictionRepository(context.Background(), filepath.Join(t.TempDir(), "nested", "predictions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteSaveAndGetByRun(t *testing.T) {
	repo := openSQLite(t)
	ctx := context.Background()
	runID := uuid.New()
	created := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

	n, err := repo.SaveBatch(ctx, sampleRecords(runID, created))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got, err := repo.GetByRun(ctx, runID)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, models.LeagueNBA, got[0].League)
	assert.Equal(t, "BOS", got[0].Home)
	assert.Nil(t, got[0].PredTotal)

	assert.Equal(t, "KC", got[1].Home)
	assert.Equal(t, day(1, 7), got[1].Date)
	require.NotNil(t, got[1].PredTotal)
	assert.Equal(t, 47.5, *got[1].PredTotal)
	assert.Equal(t, -163, got[1].HomeAmerican)
	assert.Equal(t, "HOME 2.5", got[1].SpreadLean)
	assert.Equal(t, created, got[1].CreatedAt)
	assert.NotEqual(t, uuid.Nil, got[1].ID)
}

func TestSQLiteGetByLeagueAndDateRange(t *testing.T) {
	repo := openSQLite(t)
	ctx := context.Background()
	_, err := repo.SaveBatch(ctx, sampleRecords(uuid.New(), time.Now()))
	require.NoError(t, err)

	tests := []struct {
		name      string
		league    models.League
		start     time.Time
		end       time.Time
		wantHomes []string
	}{
		{name: "inclusive bounds", league: models.LeagueNFL, start: day(1, 7), end: day(1, 14), wantHomes: []string{"KC", "BUF"}},
		{name: "narrow window", league: models.LeagueNFL, start: day(1, 8), end: day(1, 14), wantHomes: []string{"BUF"}},
		{name: "other league", league: models.LeagueNBA, start: day(1, 1), end: day(1, 31), wantHomes: []string{"BOS"}},
		{name: "no rows", league: models.LeagueMLB, start: day(1, 1), end: day(1, 31)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.GetByLeagueAndDateRange(ctx, tt.league, tt.start, tt.end)
			require.NoError(t, err)
			var homes []string
			for _, r := range got {
				homes = append(homes, r.Home)
			}
			assert.Equal(t, tt.wantHomes, homes)
		})
	}
}

func TestSQLiteLatestRunAndDeleteBefore(t *testing.T) {
	repo := openSQLite(t)
	ctx := context.Background()

	_, err := repo.LatestRunID(ctx)
	assert.ErrorIs(t, err, models.ErrNotFound)

	oldRun, newRun := uuid.New(), uuid.New()
	_, err = repo.SaveBatch(ctx, sampleRecords(oldRun, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	_, err = repo.SaveBatch(ctx, sampleRecords(newRun, time.Date(2024, 1, 8, 9, 0, 0, 500, time.UTC)))
	require.NoError(t, err)

	latest, err := repo.LatestRunID(ctx)
	require.NoError(t, err)
	assert.Equal(t, newRun, latest)

	deleted, err := repo.DeleteBefore(ctx, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	remaining, err := repo.GetByRun(ctx, oldRun)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestSQLiteSaveEmptyBatch(t *testing.T) {
	repo := openSQLite(t)
	n, err := repo.SaveBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSQLiteDuplicateIDRollsBack(t *testing.T) {
	repo := openSQLite(t)
	ctx := context.Background()
	runID := uuid.New()
	records := sampleRecords(runID, time.Now())
	records[1].ID = uuid.New()
	records[2].ID = records[1].ID

	_, err := repo.SaveBatch(ctx, records)
	require.ErrorIs(t, err, models.ErrDuplicateKey)

	got, err := repo.GetByRun(ctx, runID)
	require.NoError(t, err)
	assert.Empty(t, got)

	// a retry of an already stored batch is rejected the same way
	records[2].ID = uuid.New()
	_, err = repo.SaveBatch(ctx, records)
	require.NoError(t, err)
	_, err = repo.SaveBatch(ctx, records)
	assert.ErrorIs(t, err, models.ErrDuplicateKey)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	repo, err := Open(ctx, &config.DatabaseConfig{Driver: "none"})
	require.NoError(t, err)
	assert.Nil(t, repo)

	repo, err = Open(ctx, &config.DatabaseConfig{Driver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "p.db")})
	require.NoError(t, err)
	require.NotNil(t, repo)
	assert.NoError(t, repo.Ping(ctx))
	assert.NoError(t, repo.Close())

	_, err = Open(ctx, &config.DatabaseConfig{Driver: "oracle"})
	assert.ErrorContains(t, err, "unknown database driver")
}

func TestPostgresPredictionRepository(t *testing.T) {
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repo := NewPostgresPredictionRepository(db)
	ctx := context.Background()
	runID := uuid.New()

	records := sampleRecords(runID, time.Now().UTC())
	for i := range records {
		records[i].ID = uuid.New()
	}
	n, err := repo.SaveBatch(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = repo.SaveBatch(ctx, records)
	assert.ErrorIs(t, err, models.ErrDuplicateKey)

	got, err := repo.GetByLeagueAndDateRange(ctx, models.LeagueNFL, day(1, 1), day(1, 31))
	require.NoError(t, err)
	assert.Len(t, got, 2)

	latest, err := repo.LatestRunID(ctx)
	require.NoError(t, err)
	assert.Equal(t, runID, latest)
}
