package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maschh/sports-edge/internal/backtest"
	"github.com/maschh/sports-edge/internal/service"
)

func newBacktestCmd(opts *options) *cobra.Command {
	var (
		summaryCSV string
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Evaluate the walk-forward models and print per-league metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			built, err := service.NewFromConfig(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer built.Close()

			summaries, err := built.Service.Evaluate(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				for _, s := range summaries {
					fmt.Fprintln(cmd.OutOrStdout(), s.ToJSON())
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), backtest.GenerateConsoleReport(summaries))
			}
			if summaryCSV != "" {
				if err := backtest.GenerateCSVExport(summaries, summaryCSV); err != nil {
					return err
				}
				log.WithField("path", summaryCSV).Info("Backtest summary written")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&summaryCSV, "summary-csv", "", "Write the per-league summary as CSV")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print one JSON object per league instead of the table")
	return cmd
}
