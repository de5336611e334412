package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nkwenti/pricewatch/app/database"
	"github.com/nkwenti/pricewatch/app/watch"
)

type SyncWatchConfigTask struct {
	Task
	WatchConfig *watch.Config
	watchRepo   database.WatchRepository
}

func NewSyncWatchConfigTask(watchName string, watchConfig *watch.Config,
	watchRepo database.WatchRepository) *SyncWatchConfigTask {
	return &SyncWatchConfigTask{
		Task:        NewTask(TaskTypeSyncWatchConfig, watchName),
		WatchConfig: watchConfig,
		watchRepo:   watchRepo,
	}
}

func (t *SyncWatchConfigTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	err := t.watchRepo.UpsertWatch(t.WatchName, t.WatchConfig.Query, t.WatchConfig.Settings.Enabled)
	if err != nil {
		return fmt.Errorf("failed to sync watch config: %w", err)
	}

	slog.Debug("Watch config synced", "watch", t.WatchName, "enabled", t.WatchConfig.Settings.Enabled)
	return nil
}
