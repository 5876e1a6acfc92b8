package enrichment

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/maschh/sports-edge/internal/features"
	"github.com/maschh/sports-edge/internal/models"
)

var injuryColumns = []string{"date", "league", "team", "starters_out", "key_players_out", "total_out"}

// InjuryCSV reads injury counts from a CSV file with the columns
// date,league,team,starters_out,key_players_out,total_out
type InjuryCSV struct {
	path   string
	names  TeamNamer
	logger logrus.FieldLogger
}

// NewInjuryCSV creates an injury source. An empty path yields no reports.
func NewInjuryCSV(path string, logger logrus.FieldLogger) *InjuryCSV {
	if logger == nil {
		logger = logrus.New()
	}
	return &InjuryCSV{path: path, logger: logger}
}

// WithTeamNames resolves the file's team column through names so reports
// join against renamed franchises
func (s *InjuryCSV) WithTeamNames(names TeamNamer) *InjuryCSV {
	s.names = names
	return s
}

// Injuries returns the reports for league. A missing file is logged and
// treated as having no reports; a file without the required columns fails.
func (s *InjuryCSV) Injuries(_ context.Context, league models.League) ([]features.InjuryReport, error) {
	if s.path == "" {
		return nil, nil
	}
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.WithField("path", s.path).Warn("Injuries file not found, using zero counts")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open injuries file: %w", err)
	}
	defer f.Close()

	table, err := readCSV("injuries csv", f, injuryColumns)
	if err != nil {
		return nil, err
	}

	var reports []features.InjuryReport
	for i, row := range table.rows {
		if !strings.EqualFold(table.get(row, "league"), string(league)) {
			continue
		}
		date, err := parseDay(table.get(row, "date"))
		if err != nil {
			return nil, fmt.Errorf("injuries csv line %d: %w", i+2, err)
		}
		reports = append(reports, features.InjuryReport{
			Date:        date,
			Team:        canonicalTeam(s.names, league, table.get(row, "team")),
			StartersOut: atoiOrZero(table.get(row, "starters_out")),
			KeyOut:      atoiOrZero(table.get(row, "key_players_out")),
			TotalOut:    atoiOrZero(table.get(row, "total_out")),
		})
	}
	return reports, nil
}

func parseDay(s string) (time.Time, error) {
	if len(s) >= 10 {
		s = s[:10]
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t, nil
}

func atoiOrZero(s string) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return int(v)
	}
	return 0
}
