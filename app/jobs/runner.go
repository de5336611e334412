package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/nkwenti/pricewatch/app/alert"
	"github.com/nkwenti/pricewatch/app/catalog"
	"github.com/nkwenti/pricewatch/app/database"
	"github.com/nkwenti/pricewatch/app/scraper"
)

// IngestionParams describes one scrape-and-ingest run. DropPercent of zero
// falls back to the runner's default threshold.
type IngestionParams struct {
	WatchName   string
	Query       string
	MinProducts int
	MaxPages    int
	DropPercent float64
}

// IngestionResult is the terminal status object of one run. Faults are carried
// in Status and Error; the runner never panics or leaks errors past this type.
type IngestionResult struct {
	Status          string
	ScrapedCount    int
	NewCount        int
	UpdatedCount    int
	TotalCount      int
	DurationSeconds float64
	Error           string
}

// AlertParams tunes one digest evaluation. ValueRatioMin of zero falls back
// to the runner's default threshold.
type AlertParams struct {
	ValueRatioMin float64
}

type AlertResult struct {
	Status string
	Error  string
}

const newArrivalsTopN = 5

// Runner wires the scrape pipeline and the alert evaluator into the two
// entry points exposed to the scheduler and API.
type Runner struct {
	fetcher  scraper.Fetcher
	products database.ProductRepository
	history  database.HistoryRepository
	alerts   database.AlertRepository
	runLogs  database.RunLogRepository
	sender   alert.Sender

	defaultDropPercent   float64
	defaultValueRatioMin float64
	recentAlertsLimit    int
}

func NewRunner(fetcher scraper.Fetcher, products database.ProductRepository,
	history database.HistoryRepository, alerts database.AlertRepository,
	runLogs database.RunLogRepository, sender alert.Sender,
	defaultDropPercent, defaultValueRatioMin float64, recentAlertsLimit int) *Runner {
	return &Runner{
		fetcher:              fetcher,
		products:             products,
		history:              history,
		alerts:               alerts,
		runLogs:              runLogs,
		sender:               sender,
		defaultDropPercent:   defaultDropPercent,
		defaultValueRatioMin: defaultValueRatioMin,
		recentAlertsLimit:    recentAlertsLimit,
	}
}

// RunIngestionJob scrapes one watch and reconciles the batch into the store.
// A run_logs row is written on both success and failure.
func (r *Runner) RunIngestionJob(ctx context.Context, params IngestionParams) IngestionResult {
	start := time.Now()

	raw, err := r.fetcher.Fetch(ctx, params.Query, params.MinProducts, params.MaxPages)
	if err != nil {
		return r.finishIngestion(params.WatchName, start, 0, catalog.IngestStats{}, err)
	}

	if len(raw) < params.MinProducts {
		slog.Warn("Scrape returned fewer products than requested",
			"watch", params.WatchName, "scraped", len(raw), "min_products", params.MinProducts)
	}

	products := catalog.NewNormalizer().Run(raw)
	products = catalog.NewEnricher().Run(products)
	products, duplicates := catalog.NewDeduplicator().Run(products)
	if duplicates > 0 {
		slog.Debug("Duplicates dropped before reconciliation",
			"watch", params.WatchName, "duplicates", duplicates)
	}

	dropPercent := params.DropPercent
	if dropPercent == 0 {
		dropPercent = r.defaultDropPercent
	}

	ingester := catalog.NewIngester(r.products, r.history, r.alerts, dropPercent)
	stats, err := ingester.Run(products)

	return r.finishIngestion(params.WatchName, start, len(raw), stats, err)
}

func (r *Runner) finishIngestion(watchName string, start time.Time, scraped int,
	stats catalog.IngestStats, runErr error) IngestionResult {
	duration := time.Since(start)

	result := IngestionResult{
		Status:          database.RunStatusSuccess,
		ScrapedCount:    scraped,
		NewCount:        stats.New,
		UpdatedCount:    stats.Updated,
		TotalCount:      stats.Total,
		DurationSeconds: duration.Seconds(),
	}
	if runErr != nil {
		result.Status = database.RunStatusError
		result.Error = runErr.Error()
	}

	entry := database.RunLog{
		WatchName:  watchName,
		Scraped:    scraped,
		New:        stats.New,
		Updated:    stats.Updated,
		DurationMs: duration.Milliseconds(),
		Status:     result.Status,
		Error:      result.Error,
	}
	if err := r.runLogs.InsertRunLog(entry); err != nil {
		slog.Error("Failed to record run log", "watch", watchName, "error", err)
	}

	if runErr != nil {
		slog.Error("Ingestion run failed", "watch", watchName, "error", runErr, "duration", duration)
	} else {
		slog.Info("Ingestion run completed", "watch", watchName,
			"scraped", scraped, "new", stats.New, "updated", stats.Updated, "duration", duration)
	}

	return result
}

// RunAlertJob evaluates all digests against persisted state.
func (r *Runner) RunAlertJob(ctx context.Context, params AlertParams) AlertResult {
	select {
	case <-ctx.Done():
		return AlertResult{Status: database.RunStatusError, Error: ctx.Err().Error()}
	default:
	}

	valueRatioMin := params.ValueRatioMin
	if valueRatioMin == 0 {
		valueRatioMin = r.defaultValueRatioMin
	}

	evaluator := alert.NewEvaluator(r.products, r.alerts, alert.NewRenderer(), r.sender,
		valueRatioMin, r.recentAlertsLimit, newArrivalsTopN)

	if err := evaluator.Run(); err != nil {
		return AlertResult{Status: database.RunStatusError, Error: err.Error()}
	}
	return AlertResult{Status: database.RunStatusSuccess}
}
