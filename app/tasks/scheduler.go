package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nkwenti/pricewatch/app/cfg"
	"github.com/nkwenti/pricewatch/app/database"
	"github.com/nkwenti/pricewatch/app/jobs"
	"github.com/nkwenti/pricewatch/app/watch"
)

const alertInterval = 24 * time.Hour

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	configCache *watch.ConfigCache
	watchRepo   database.WatchRepository
	runner      *jobs.Runner
	interval    time.Duration
	workerCount int
	lastAlertAt time.Time
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
}

func NewScheduler(configCache *watch.ConfigCache, watchRepo database.WatchRepository,
	runner *jobs.Runner) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		configCache: configCache,
		watchRepo:   watchRepo,
		runner:      runner,
		interval:    time.Duration(cfg.SchedulerInterval) * time.Second,
		workerCount: cfg.WorkerCount,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 100),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

// Stop cancels workers and waits for them to drain. The queue is left open:
// a retry goroutine may still call EnqueueTask after shutdown.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueStartupTasks() {
	watchConfigs := s.configCache.GetConfigs()
	if len(watchConfigs) == 0 {
		slog.Debug("No watch configurations found")
		return
	}

	slog.Debug("Syncing watch configurations", "count", len(watchConfigs))

	for _, watchConfig := range watchConfigs {
		syncTask := NewSyncWatchConfigTask(watchConfig.Name, watchConfig, s.watchRepo)
		if err := s.EnqueueTask(syncTask); err != nil {
			slog.Warn("Failed to enqueue SyncWatchConfigTask", "watch", watchConfig.Name, "error", err)
		}
	}
}

func (s *Scheduler) enqueueTasks() {
	watchConfigs := s.configCache.GetEnabledConfigs()
	if len(watchConfigs) == 0 {
		slog.Debug("No enabled watch configurations found")
		return
	}

	for _, watchConfig := range watchConfigs {
		w, err := s.watchRepo.GetWatch(watchConfig.Name)
		if err != nil {
			slog.Warn("Failed to get watch from database, skipping", "watch", watchConfig.Name, "error", err)
			continue
		}
		if w == nil {
			slog.Warn("Watch not found in database, skipping", "watch", watchConfig.Name)
			continue
		}

		now := time.Now().UTC()
		if w.NextRunAt != nil && w.NextRunAt.After(now) {
			slog.Debug("Watch not due yet", "watch", watchConfig.Name, "next_run_at", w.NextRunAt)
			continue
		}

		scrapeTask := NewScrapeWatchTask(watchConfig.Name, watchConfig, s.runner, s.watchRepo)
		if err := s.EnqueueTask(scrapeTask); err != nil {
			slog.Warn("Failed to enqueue ScrapeWatchTask", "watch", watchConfig.Name, "error", err)
		}
	}

	if time.Since(s.lastAlertAt) >= alertInterval {
		valueRatioMin := resolveValueRatioMin(watchConfigs)
		if err := s.EnqueueTask(NewAlertTask(s.runner, valueRatioMin)); err != nil {
			slog.Warn("Failed to enqueue AlertTask", "error", err)
		} else {
			s.lastAlertAt = time.Now()
		}
	}
}

// resolveValueRatioMin picks the lowest per-watch value-ratio override so no
// watch's configured deals are excluded from the shared digest. Zero means no
// watch overrides the global threshold.
func resolveValueRatioMin(configs map[string]*watch.Config) float64 {
	lowest := 0.0
	for _, config := range configs {
		v := config.Alerts.ValueRatioMin
		if v > 0 && (lowest == 0 || v < lowest) {
			lowest = v
		}
	}
	return lowest
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 10*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "watch", task.GetWatchName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
