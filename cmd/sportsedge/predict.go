package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/maschh/sports-edge/internal/service"
)

func newPredictCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Run the walk-forward pipeline and write the prediction report",
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

			result, err := built.Service.Run(cmd.Context())
			if err != nil {
				return err
			}

			for _, lr := range result.Leagues {
				entry := log.WithFields(logrus.Fields{
					"league":   lr.League,
					"games":    lr.Games,
					"rejected": lr.Rejected,
					"rows":     len(lr.Records),
				})
				if lr.SkipReason != "" {
					entry.WithField("reason", lr.SkipReason).Warn("League skipped")
					continue
				}
				entry.Info("League predicted")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d predictions\n", result.RunID, len(result.Records))
			if cfg.Output.HTMLPath != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "html: %s\n", cfg.Output.HTMLPath)
			}
			if cfg.Output.CSVPath != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "csv:  %s\n", cfg.Output.CSVPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.htmlOut, "html-out", "predictions.html", "HTML report path, empty disables")
	cmd.Flags().StringVar(&opts.csvOut, "csv-out", "predictions.csv", "CSV export path, empty disables")
	return cmd
}
