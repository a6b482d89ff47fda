package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"ridedash/internal/config"
	"ridedash/internal/service"
)

// syncCmd runs one sync and logs its progress.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch new rides from Strava and compute their metrics",
	Long: `Run one full sync:

1. Fetch recent ride summaries
2. Download stream data for rides that have none
3. Compute metrics for new rides and rides analyzed with older settings

Failures on individual rides are reported and do not stop the sync.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withSyncService(cmd, func(ctx context.Context, svc *service.SyncService, _ *config.Config, logger *slog.Logger) error {
			_, err := runSync(ctx, svc, logger)
			return err
		})
	},
}

// watchCmd syncs on a cron schedule until interrupted.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Sync on a schedule until interrupted",
	Long: `Run a sync immediately and then on the schedule in sync.schedule
(default "@every 1h"). Accepts standard cron expressions and descriptors
such as @hourly or "@every 30m".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withSyncService(cmd, func(ctx context.Context, svc *service.SyncService, cfg *config.Config, logger *slog.Logger) error {
			return watch(ctx, svc, logger, resolveSchedule(cfg))
		})
	},
}

// withSyncService loads config, opens the database and connects to Strava before calling fn
func withSyncService(cmd *cobra.Command, fn func(context.Context, *service.SyncService, *config.Config, *slog.Logger) error) error {
	ctx := cmd.Context()
	logger := newLogger(cmd.ErrOrStderr())

	cfg, err := loadConfig(cmd.OutOrStdout(), true)
	if err != nil || cfg == nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	source, err := connect(ctx, cmd.OutOrStdout(), cfg, db)
	if err != nil {
		return err
	}

	return fn(ctx, service.NewSyncService(source, db, cfg, logger), cfg, logger)
}

// resolveSchedule prefers --schedule over the config file
func resolveSchedule(cfg *config.Config) string {
	switch {
	case flags.schedule != "":
		return flags.schedule
	case cfg.Sync.Schedule != "":
		return cfg.Sync.Schedule
	default:
		return config.DefaultConfig().Sync.Schedule
	}
}

// runSync performs one sync, logging every progress update
func runSync(ctx context.Context, svc *service.SyncService, logger *slog.Logger) (*service.SyncResult, error) {
	progress := make(chan service.SyncProgress, 16)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for p := range progress {
			logProgress(logger, p)
		}
	}()

	result, err := svc.SyncAll(ctx, progress)
	wg.Wait()
	if err != nil {
		return result, err
	}

	for _, e := range result.Errors {
		logger.Warn("ride failed", "error", e)
	}
	return result, nil
}

func logProgress(logger *slog.Logger, p service.SyncProgress) {
	switch {
	case p.Error != nil:
		logger.Warn("sync step failed", "phase", p.Phase, "ride", p.CurrentRide, "error", p.Error)
	case p.Total == 0:
		logger.Info("sync phase started", "phase", p.Phase)
	default:
		logger.Debug("sync progress", "phase", p.Phase, "done", p.Completed, "total", p.Total, "ride", p.CurrentRide)
	}
}

// watch syncs now and on every tick of schedule until ctx is done.
// A tick that fires while a sync is still running is skipped.
func watch(ctx context.Context, svc *service.SyncService, logger *slog.Logger, schedule string) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	job := func() {
		if _, err := runSync(ctx, svc, logger); err != nil {
			logger.Error("scheduled sync failed", "error", err)
		}
	}
	if _, err := c.AddFunc(schedule, job); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	logger.Info("watching for new rides", "schedule", schedule)
	job()

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	logger.Info("watch stopped")
	return nil
}
