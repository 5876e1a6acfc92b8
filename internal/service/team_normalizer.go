package service

import (
	"strings"

	"github.com/maschh/sports-edge/internal/models"
)

// TeamNormalizer maps provider team names to one canonical name per
// franchise so ratings and rolling form carry across renames and relocations
type TeamNormalizer struct {
	aliases map[models.League]map[string]string
}

// NewTeamNormalizer creates a normalizer with the built-in alias tables
func NewTeamNormalizer() *TeamNormalizer {
	return &TeamNormalizer{aliases: buildTeamAliasMap()}
}

// AddAlias registers an extra provider name for a canonical team
func (n *TeamNormalizer) AddAlias(league models.League, alias, canonical string) {
	if n.aliases[league] == nil {
		n.aliases[league] = map[string]string{}
	}
	n.aliases[league][strings.ToUpper(sanitizeName(alias))] = canonical
}

// Team returns the canonical name of a team
func (n *TeamNormalizer) Team(league models.League, name string) string {
	clean := sanitizeName(name)
	if canonical, ok := n.aliases[league][strings.ToUpper(clean)]; ok {
		return canonical
	}
	return clean
}

// Normalize returns a copy of games with canonical team names
func (n *TeamNormalizer) Normalize(league models.League, games []models.Game) []models.Game {
	out := make([]models.Game, len(games))
	for i, g := range games {
		g.Home = n.Team(league, g.Home)
		g.Away = n.Team(league, g.Away)
		g.Date = models.Day(g.Date)
		out[i] = g
	}
	return out
}

// sanitizeName trims and collapses internal whitespace
func sanitizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// buildTeamAliasMap returns former names keyed by upper-cased alias
func buildTeamAliasMap() map[models.League]map[string]string {
	return map[models.League]map[string]string{
		models.LeagueNFL: {
			"OAK": "LV",
			"SD":  "LAC",
			"STL": "LA",
			"LAR": "LA",
		},
		models.LeagueNBA: {
			"LA CLIPPERS":         "Los Angeles Clippers",
			"NEW JERSEY NETS":     "Brooklyn Nets",
			"CHARLOTTE BOBCATS":   "Charlotte Hornets",
			"SEATTLE SUPERSONICS": "Oklahoma City Thunder",
			"NEW ORLEANS HORNETS": "New Orleans Pelicans",
		},
		models.LeagueMLB: {
			"CLEVELAND INDIANS":             "Cleveland Guardians",
			"OAKLAND ATHLETICS":             "Athletics",
			"LOS ANGELES ANGELS OF ANAHEIM": "Los Angeles Angels",
			"FLORIDA MARLINS":               "Miami Marlins",
		},
		models.LeagueCFB: {},
	}
}
