package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nkwenti/pricewatch/app/database"
	"github.com/nkwenti/pricewatch/app/jobs"
)

type AlertTask struct {
	Task
	runner        *jobs.Runner
	valueRatioMin float64
}

// NewAlertTask creates a digest evaluation task. A zero valueRatioMin uses the
// runner's global threshold.
func NewAlertTask(runner *jobs.Runner, valueRatioMin float64) *AlertTask {
	return &AlertTask{
		Task:          NewTask(TaskTypeRunAlerts, ""),
		runner:        runner,
		valueRatioMin: valueRatioMin,
	}
}

func (t *AlertTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	result := t.runner.RunAlertJob(ctx, jobs.AlertParams{ValueRatioMin: t.valueRatioMin})
	if result.Status == database.RunStatusError {
		return fmt.Errorf("alert run failed: %s", result.Error)
	}

	slog.Info("Task completed", "type", "RunAlerts", "duration", t.GetDuration())
	return nil
}
