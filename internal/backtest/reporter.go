package backtest

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/maschh/sports-edge/internal/models"
)

// Summary condenses a league's walk-forward runs
type Summary struct {
	League      models.League `json:"league"`
	Cycles      int           `json:"cycles"`
	Predictions int           `json:"predictions"`
	Labelled    int           `json:"labelled"`
	Brier       float64       `json:"brier"`
	LogLoss     float64       `json:"logloss"`
	AUC         float64       `json:"auc"`
	Accuracy    float64       `json:"accuracy"`
	TotalsMAE   float64       `json:"totals_mae"`
	TotalsRows  int           `json:"totals_rows"`
}

// Summarize builds the summary of a classification run and an optional
// totals run
func Summarize(league models.League, wf *WalkForwardResult, totals *TotalsResult) Summary {
	s := Summary{League: league}
	if wf != nil {
		m := wf.Metrics()
		s.Cycles = len(wf.Cycles)
		s.Predictions = len(wf.Predictions)
		s.Labelled = m.N
		s.Brier = m.Brier
		s.LogLoss = m.LogLoss
		if !math.IsNaN(m.AUC) {
			s.AUC = m.AUC
		}
		s.Accuracy = m.Accuracy
	}
	if totals != nil {
		s.TotalsMAE = totals.MAE()
		s.TotalsRows = len(totals.Predictions)
	}
	return s
}

// ToJSON exports the summary to JSON
func (s Summary) ToJSON() string {
	data, _ := json.Marshal(s)
	return string(data)
}

// GenerateConsoleReport formats summaries for terminal output
func GenerateConsoleReport(summaries []Summary) string {
	var builder strings.Builder
	builder.WriteString("Walk-Forward Backtest\n")
	builder.WriteString("=====================\n")
	for _, s := range summaries {
		builder.WriteString(fmt.Sprintf("[%s]\n", strings.ToUpper(string(s.League))))
		builder.WriteString(fmt.Sprintf("  Cycles: %d\n", s.Cycles))
		builder.WriteString(fmt.Sprintf("  Predictions: %d (%d labelled)\n", s.Predictions, s.Labelled))
		builder.WriteString(fmt.Sprintf("  Brier: %.4f\n", s.Brier))
		builder.WriteString(fmt.Sprintf("  Log Loss: %.4f\n", s.LogLoss))
		builder.WriteString(fmt.Sprintf("  AUC: %.4f\n", s.AUC))
		builder.WriteString(fmt.Sprintf("  Accuracy: %.2f%%\n", s.Accuracy*100))
		builder.WriteString(fmt.Sprintf("  Totals MAE: %.2f\n", s.TotalsMAE))
	}
	return builder.String()
}

// GenerateCSVExport exports summaries for spreadsheets
func GenerateCSVExport(summaries []Summary, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	var builder strings.Builder
	builder.WriteString("league,cycles,predictions,labelled,brier,logloss,auc,accuracy,totals_mae\n")
	for _, s := range summaries {
		builder.WriteString(fmt.Sprintf("%s,%d,%d,%d,%.4f,%.4f,%.4f,%.4f,%.4f\n",
			s.League, s.Cycles, s.Predictions, s.Labelled, s.Brier, s.LogLoss, s.AUC, s.Accuracy, s.TotalsMAE))
	}
	return os.WriteFile(outputPath, []byte(builder.String()), 0o644)
}
