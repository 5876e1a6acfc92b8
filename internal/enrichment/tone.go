package enrichment

import (
	"context"

	"github.com/maschh/sports-edge/internal/models"
)

// ToneSource is the news-tone provider. It reports a neutral tone of zero
// for every team so the feature contract stays stable without a news feed.
type ToneSource struct{}

// NewToneSource creates the neutral tone source
func NewToneSource() *ToneSource {
	return &ToneSource{}
}

// Name returns the source name
func (ToneSource) Name() string {
	return "tone"
}

// TeamValues returns zero for every team
func (ToneSource) TeamValues(_ context.Context, _ models.League, teams []string) (map[string]float64, error) {
	out := make(map[string]float64, len(teams))
	for _, t := range teams {
		out[t] = 0
	}
	return out, nil
}
