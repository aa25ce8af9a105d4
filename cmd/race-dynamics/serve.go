package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/race-dynamics/internal/health"
	"github.com/yourusername/race-dynamics/internal/metrics"
	"github.com/yourusername/race-dynamics/internal/scheduler"
)

var warmOnStart bool

func init() {
	serveCmd.Flags().BoolVar(&warmOnStart, "warm-on-start", true, "Run one warm pass before waiting for the schedule")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the cache warming scheduler with health and metrics endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		deps, err := setupDependencies(ctx)
		if err != nil {
			return err
		}
		defer deps.Close()

		healthCfg := health.Config{
			ServiceName: cfg.App.Name,
			Version:     Version,
			Port:        cfg.Metrics.Port,
			Logger:      appLog,
			Checks: map[string]health.Pinger{
				"database": health.PingFunc(deps.db.HealthCheck),
				"cache":    deps.store,
			},
		}
		if cfg.Metrics.Enabled {
			metrics.InitRegistry()
			healthCfg.MetricsPath = cfg.Metrics.Path
			healthCfg.MetricsHandler = metrics.Handler()
		}
		healthServer := health.NewServer(healthCfg)
		if err := healthServer.Start(ctx); err != nil {
			return err
		}

		var sched *scheduler.Scheduler
		if cfg.Scheduler.Enabled {
			sched = scheduler.NewScheduler(deps.service, appLog)
			if err := sched.ScheduleWarm(cfg.Scheduler.WarmSchedule, cfg.Scheduler.LookaheadDays); err != nil {
				return err
			}
			if warmOnStart {
				if _, err := sched.RunWarm(ctx); err != nil {
					appLog.WithError(err).Warn("Initial warm run failed")
				}
			}
			if err := sched.Start(); err != nil {
				return err
			}
			defer sched.Stop()
		}

		healthServer.SetReady(true)
		appLog.WithFields(logrus.Fields{
			"version":   Version,
			"scheduler": cfg.Scheduler.Enabled,
			"metrics":   cfg.Metrics.Enabled,
			"cache":     cfg.Cache.Backend,
		}).Info("race-dynamics serving")

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		select {
		case sig := <-sigChan:
			appLog.WithField("signal", sig).Info("Shutdown signal received")
		case <-ctx.Done():
		}

		healthServer.SetReady(false)
		return healthServer.Shutdown()
	},
}
