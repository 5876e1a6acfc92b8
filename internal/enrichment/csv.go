package enrichment

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/maschh/sports-edge/internal/models"
)

// TeamNamer maps a provider team name to the canonical name games carry
type TeamNamer interface {
	Team(league models.League, name string) string
}

// canonicalTeam trims raw and, when names is set, resolves it
func canonicalTeam(names TeamNamer, league models.League, raw string) string {
	if names == nil {
		return strings.TrimSpace(raw)
	}
	return names.Team(league, raw)
}

// csvTable is a header-indexed CSV body
type csvTable struct {
	index map[string]int
	rows  [][]string
}

// readCSV reads r and checks that every required column is present
func readCSV(source string, r io.Reader, required []string) (*csvTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &SchemaError{Source: source, Missing: sortedCopy(required)}
	}
	if err != nil {
		return nil, fmt.Errorf("%s: read header: %w", source, err)
	}

	t := &csvTable{index: make(map[string]int, len(header))}
	for i, h := range header {
		t.index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	var missing []string
	for _, col := range required {
		if _, ok := t.index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &SchemaError{Source: source, Missing: missing}
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
		t.rows = append(t.rows, rec)
	}
	return t, nil
}

// get returns the trimmed value of col in row, empty when absent
func (t *csvTable) get(row []string, col string) string {
	i, ok := t.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func sortedCopy(s []string) []string {
	out := append([]string(nil), s...)
	sort.Strings(out)
	return out
}
