package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nkwenti/pricewatch/app/database"
	"github.com/nkwenti/pricewatch/app/jobs"
	"github.com/nkwenti/pricewatch/app/tasks"
	"github.com/nkwenti/pricewatch/app/watch"
)

func NewHandler(configCache *watch.ConfigCache, products database.ProductRepository,
	history database.HistoryRepository, alerts database.AlertRepository,
	runLogs database.RunLogRepository, watchRepo database.WatchRepository,
	runner *jobs.Runner, scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		configCache: configCache,
		products:    products,
		history:     history,
		alerts:      alerts,
		runLogs:     runLogs,
		watchRepo:   watchRepo,
		runner:      runner,
		scheduler:   scheduler,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if productCount, err := h.products.GetProductCount(); err == nil {
		health["products"] = productCount
	}
	if watchCount, err := h.watchRepo.GetWatchCount(); err == nil {
		health["watches"] = watchCount
	}

	health["loaded_configurations"] = h.configCache.GetConfigCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{}

	if runCount, err := h.runLogs.GetRunCount(); err == nil {
		stats["total_runs"] = runCount
	}
	if productCount, err := h.products.GetProductCount(); err == nil {
		stats["total_products"] = productCount
	}

	if lastRun, err := h.runLogs.GetLastRun(); err == nil && lastRun != nil {
		stats["last_run"] = runLogEntry(*lastRun)
	}

	if runs, err := h.runLogs.RecentRuns(queryLimit(c, 10)); err == nil {
		recent := make([]map[string]interface{}, 0, len(runs))
		for _, run := range runs {
			recent = append(recent, runLogEntry(run))
		}
		stats["recent_runs"] = recent
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) GetProducts(c *gin.Context) {
	products, err := h.products.RecentProducts(queryLimit(c, 50))
	if err != nil {
		slog.Error("Database error", "operation", "recent_products", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	entries := make([]map[string]interface{}, 0, len(products))
	for _, p := range products {
		entries = append(entries, productEntry(p))
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"products": entries,
		"total":    len(entries),
	})
}

func (h *Handler) GetAlerts(c *gin.Context) {
	limit := queryLimit(c, 50)
	kind := c.Query("kind")

	var alerts []database.Alert
	var err error
	if kind != "" {
		alerts, err = h.alerts.RecentAlertsByKind(kind, limit)
	} else {
		alerts, err = h.alerts.RecentAlerts(limit)
	}
	if err != nil {
		slog.Error("Database error", "operation", "recent_alerts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	entries := make([]map[string]interface{}, 0, len(alerts))
	for _, a := range alerts {
		entries = append(entries, map[string]interface{}{
			"id":          a.ID,
			"kind":        a.Kind,
			"message":     a.Message,
			"product_key": a.Key,
			"old_price":   a.OldPrice,
			"new_price":   a.NewPrice,
			"created_at":  a.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"alerts": entries,
		"total":  len(entries),
	})
}

func (h *Handler) GetHistory(c *gin.Context) {
	key := c.Param("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing product key parameter"})
		return
	}

	points, err := h.history.GetHistory(key, queryLimit(c, 100))
	if err != nil {
		slog.Error("Database error", "operation", "get_history", "key", key, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	entries := make([]map[string]interface{}, 0, len(points))
	for _, pt := range points {
		entries = append(entries, map[string]interface{}{
			"price":       pt.Price,
			"rating":      pt.Rating,
			"observed_at": pt.ObservedAt,
		})
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"product_key": key,
		"history":     entries,
		"total":       len(entries),
	})
}

func (h *Handler) APIListWatches(c *gin.Context) {
	configs := h.configCache.GetConfigs()

	watches := make([]map[string]interface{}, 0, len(configs))
	for _, config := range configs {
		info := map[string]interface{}{
			"name":            config.Name,
			"query":           config.Query,
			"enabled":         config.Settings.Enabled,
			"min_products":    config.Settings.MinProducts,
			"max_pages":       config.Settings.MaxPages,
			"scrape_interval": (time.Duration(config.Settings.ScrapeInterval) * time.Second).String(),
		}

		if w, err := h.watchRepo.GetWatch(config.Name); err == nil && w != nil {
			info["last_run_at"] = w.LastRunAt
			info["next_run_at"] = w.NextRunAt
		}

		watches = append(watches, info)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"watches": watches,
		"total":   len(watches),
	})
}

func (h *Handler) APIRunWatch(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing watch name parameter"})
		return
	}

	config, err := h.configCache.GetConfig(name)
	if err != nil {
		slog.Error("Watch configuration not found", "watch", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Watch configuration not found"})
		return
	}

	scrapeTask := tasks.NewScrapeWatchTask(name, config, h.runner, h.watchRepo)
	if err := h.scheduler.EnqueueTask(scrapeTask); err != nil {
		slog.Error("Error enqueueing scrape task", "watch", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue scrape task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Scrape task enqueued",
		"task": gin.H{
			"id":   scrapeTask.ID,
			"type": scrapeTask.Type,
		},
	})
}

func (h *Handler) APIRunAlerts(c *gin.Context) {
	alertTask := tasks.NewAlertTask(h.runner, 0)
	if err := h.scheduler.EnqueueTask(alertTask); err != nil {
		slog.Error("Error enqueueing alert task", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue alert task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Alert task enqueued",
		"task": gin.H{
			"id":   alertTask.ID,
			"type": alertTask.Type,
		},
	})
}

func queryLimit(c *gin.Context, fallback int) int {
	raw := c.Query("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 || limit > 500 {
		return fallback
	}
	return limit
}

func runLogEntry(run database.RunLog) map[string]interface{} {
	return map[string]interface{}{
		"watch":       run.WatchName,
		"scraped":     run.Scraped,
		"new":         run.New,
		"updated":     run.Updated,
		"duration_ms": run.DurationMs,
		"status":      run.Status,
		"error":       run.Error,
		"created_at":  run.CreatedAt,
	}
}

func productEntry(p database.Product) map[string]interface{} {
	return map[string]interface{}{
		"product_key":   p.Key,
		"title":         p.Title,
		"price":         p.Price,
		"currency":      p.Currency,
		"rating":        p.Rating,
		"image_url":     p.ImageURL,
		"price_bucket":  p.PriceBucket,
		"rating_bucket": p.RatingBucket,
		"value_ratio":   p.ValueRatio,
		"scrape_day":    p.ScrapeDay,
		"scraped_at":    p.ScrapedAt,
	}
}
