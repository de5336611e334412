package api

import (
	"github.com/nkwenti/pricewatch/app/database"
	"github.com/nkwenti/pricewatch/app/jobs"
	"github.com/nkwenti/pricewatch/app/tasks"
	"github.com/nkwenti/pricewatch/app/watch"
)

type Handler struct {
	configCache *watch.ConfigCache
	products    database.ProductRepository
	history     database.HistoryRepository
	alerts      database.AlertRepository
	runLogs     database.RunLogRepository
	watchRepo   database.WatchRepository
	runner      *jobs.Runner
	scheduler   tasks.TaskSchedulerInterface
}
