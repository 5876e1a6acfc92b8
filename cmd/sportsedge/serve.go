package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/maschh/sports-edge/internal/health"
	"github.com/maschh/sports-edge/internal/scheduler"
	"github.com/maschh/sports-edge/internal/service"
)

func newServeCmd(opts *options) *cobra.Command {
	var runOnStart bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run predictions on the configured cron schedule with health and metrics endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			built, err := service.NewFromConfig(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer built.Close()

			timeout, err := time.ParseDuration(cfg.Schedule.Timeout)
			if err != nil {
				return err
			}
			sched := scheduler.NewScheduler(built.Service, timeout, log)
			if err := sched.Schedule(cfg.Schedule.Cron); err != nil {
				return err
			}

			checks := map[string]health.Checker{"last_run": sched}
			if built.Repository != nil {
				checks["repository"] = health.CheckFunc(built.Repository.Ping)
			}
			metricsPath := ""
			if cfg.Metrics.Enabled {
				metricsPath = cfg.Metrics.Path
			}
			srv := health.NewServer(health.Config{
				ServiceName: cfg.App.Name,
				Version:     Version,
				Port:        cfg.Metrics.Port,
				MetricsPath: metricsPath,
				Logger:      log,
				Checks:      checks,
			})
			if err := srv.Start(ctx); err != nil {
				return err
			}

			if err := sched.Start(); err != nil {
				return err
			}
			srv.SetReady(true)
			log.WithField("next_run", sched.NextRun()).Info("Daemon started")

			if runOnStart {
				go func() {
					runCtx, cancel := context.WithTimeout(ctx, timeout)
					defer cancel()
					if err := sched.RunNow(runCtx); err != nil {
						log.WithError(err).Error("Startup prediction run failed")
					}
				}()
			}

			<-ctx.Done()
			srv.SetReady(false)
			stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return sched.Stop(stopCtx)
		},
	}
	cmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "Run once immediately instead of waiting for the first tick")
	return cmd
}
