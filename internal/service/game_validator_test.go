package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maschh/sports-edge/internal/enrichment"
	"github.com/maschh/sports-edge/internal/models"
)

func intPtr(v int) *int { return &v }

func TestValidateGame(t *testing.T) {
	day := time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		game     models.Game
		problems int
	}{
		{name: "valid", game: models.NewGame(day, "KC", "DEN", 24, 17)},
		{name: "scheduled", game: models.Game{Date: day, Home: "KC", Away: "DEN"}},
		{name: "missing date", game: models.Game{Home: "KC", Away: "DEN"}, problems: 1},
		{name: "missing teams", game: models.Game{Date: day}, problems: 2},
		{name: "plays itself", game: models.NewGame(day, "KC", "KC", 1, 0), problems: 1},
		{name: "half scored", game: models.Game{Date: day, Home: "KC", Away: "DEN", HomeScore: intPtr(3)}, problems: 1},
		{name: "negative scores", game: models.Game{Date: day, Home: "KC", Away: "DEN", HomeScore: intPtr(-1), AwayScore: intPtr(-2)}, problems: 2},
	}

	v := NewGameValidator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, v.ValidateGame(tt.game), tt.problems)
		})
	}
}

func TestFilterGames(t *testing.T) {
	day := time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC)
	games := []models.Game{
		models.NewGame(day, "KC", "DEN", 24, 17),
		models.NewGame(day, "BUF", "BUF", 10, 10),
		models.NewGame(day.AddDate(0, 0, 1), "LV", "LAC", 13, 20),
	}

	valid, rejected := NewGameValidator(nil).Filter(models.LeagueNFL, games)

	require.Len(t, valid, 2)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, "LV", valid[1].Home)
}

func TestTeamNormalizer(t *testing.T) {
	n := NewTeamNormalizer()

	tests := []struct {
		league models.League
		in     string
		want   string
	}{
		{models.LeagueNFL, "OAK", "LV"},
		{models.LeagueNFL, " sd ", "LAC"},
		{models.LeagueNFL, "KC", "KC"},
		{models.LeagueNBA, "New Jersey  Nets", "Brooklyn Nets"},
		{models.LeagueMLB, "Cleveland Indians", "Cleveland Guardians"},
		{models.LeagueCFB, "Ohio   State", "Ohio State"},
		{models.LeagueMLB, "OAK", "OAK"},
	}

	for _, tt := range tests {
		t.Run(string(tt.league)+"/"+tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Team(tt.league, tt.in))
		})
	}
}

func TestNormalizerResolvesInjuryTeams(t *testing.T) {
	path := filepath.Join(t.TempDir(), "injuries.csv")
	require.NoError(t, os.WriteFile(path, []byte("date,league,team,starters_out,key_players_out,total_out\n"+
		"2019-09-09,NFL, oak ,2,1,4\n"), 0o644))

	reports, err := enrichment.NewInjuryCSV(path, nil).WithTeamNames(NewTeamNormalizer()).
		Injuries(context.Background(), models.LeagueNFL)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "LV", reports[0].Team)
}

func TestNormalizeGames(t *testing.T) {
	n := NewTeamNormalizer()
	n.AddAlias(models.LeagueCFB, "Miami (FL)", "Miami")

	in := []models.Game{{
		Date: time.Date(2023, 9, 2, 19, 30, 0, 0, time.UTC),
		Home: "Miami (FL)",
		Away: "STL",
	}}
	out := n.Normalize(models.LeagueCFB, in)

	require.Len(t, out, 1)
	assert.Equal(t, "Miami", out[0].Home)
	assert.Equal(t, "STL", out[0].Away)
	assert.Equal(t, time.Date(2023, 9, 2, 0, 0, 0, 0, time.UTC), out[0].Date)
	assert.Equal(t, "Miami (FL)", in[0].Home)
}

func TestRunMetricsSnapshot(t *testing.T) {
	m := NewRunMetrics()
	m.RecordLeague(100, 2, 15)
	m.RecordSkip(0, 0)
	m.RecordPersisted(15)
	m.Finish()

	snap := m.Snapshot()
	assert.Equal(t, 1, snap.Leagues)
	assert.Equal(t, 1, snap.SkippedLeagues)
	assert.Equal(t, 100, snap.Games)
	assert.Equal(t, 2, snap.ValidationErrors)
	assert.Equal(t, 15, snap.Persisted)
	assert.Contains(t, m.String(), "Predictions=15")

	m.Reset()
	assert.Zero(t, m.Snapshot().Leagues)
}
