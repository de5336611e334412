package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nkwenti/pricewatch/app/database"
	"github.com/nkwenti/pricewatch/app/jobs"
	"github.com/nkwenti/pricewatch/app/watch"
)

type ScrapeWatchTask struct {
	Task
	WatchConfig *watch.Config
	runner      *jobs.Runner
	watchRepo   database.WatchRepository
}

func NewScrapeWatchTask(watchName string, watchConfig *watch.Config, runner *jobs.Runner,
	watchRepo database.WatchRepository) *ScrapeWatchTask {
	return &ScrapeWatchTask{
		Task:        NewTask(TaskTypeScrapeWatch, watchName),
		WatchConfig: watchConfig,
		runner:      runner,
		watchRepo:   watchRepo,
	}
}

func (t *ScrapeWatchTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.WatchConfig.Settings.Enabled {
		slog.Debug("Watch disabled, skipping", "watch", t.WatchName)
		return nil
	}

	result := t.runner.RunIngestionJob(ctx, jobs.IngestionParams{
		WatchName:   t.WatchName,
		Query:       t.WatchConfig.Query,
		MinProducts: t.WatchConfig.Settings.MinProducts,
		MaxPages:    t.WatchConfig.Settings.MaxPages,
		DropPercent: t.WatchConfig.Alerts.PriceDropPercent,
	})

	if err := t.updateSchedule(); err != nil {
		return err
	}

	if result.Status == database.RunStatusError {
		return fmt.Errorf("ingestion run failed: %s", result.Error)
	}

	slog.Info("Task completed",
		"type", "ScrapeWatch",
		"watch", t.WatchName,
		"duration", t.GetDuration(),
		"scraped", result.ScrapedCount,
		"new", result.NewCount,
		"updated", result.UpdatedCount)

	return nil
}

func (t *ScrapeWatchTask) updateSchedule() error {
	now := time.Now().UTC()
	nextRun := now.Add(time.Duration(t.WatchConfig.Settings.ScrapeInterval) * time.Second)

	if err := t.watchRepo.UpdateNextRun(t.WatchName, now, nextRun); err != nil {
		return fmt.Errorf("failed to update watch schedule: %w", err)
	}
	return nil
}
