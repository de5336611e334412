package catalog

import (
	"fmt"
	"log/slog"

	"github.com/nkwenti/pricewatch/app/database"
)

// Ingester reconciles a deduplicated, enriched batch against the store. Each
// record resolves to at most one daily snapshot row per (key, day); every
// record appends one history observation regardless of snapshot outcome.
type Ingester struct {
	products    database.ProductRepository
	history     database.HistoryRepository
	alerts      database.AlertRepository
	dropPercent float64
}

func NewIngester(products database.ProductRepository, history database.HistoryRepository,
	alerts database.AlertRepository, dropPercent float64) *Ingester {
	return &Ingester{
		products:    products,
		history:     history,
		alerts:      alerts,
		dropPercent: dropPercent,
	}
}

// Run processes the batch in order. A store failure aborts the remaining batch
// and surfaces the error; writes applied before the failure point stand
// (at-least-once, callers tolerate reprocessing).
func (i *Ingester) Run(products []Product) (IngestStats, error) {
	stats := IngestStats{Total: len(products)}

	for _, p := range products {
		isNew, wasUpdated, err := i.ingestOne(p)
		if err != nil {
			return stats, fmt.Errorf("failed to ingest %q: %w", p.Title, err)
		}
		if isNew {
			stats.New++
		}
		if wasUpdated {
			stats.Updated++
		}
	}

	slog.Info("batch ingested", "total", stats.Total, "new", stats.New, "updated", stats.Updated)
	return stats, nil
}

func (i *Ingester) ingestOne(p Product) (isNew, wasUpdated bool, err error) {
	day := database.Day(p.ScrapedAt)
	rec := toRecord(p, day)

	existing, err := i.products.GetDailyProduct(p.Key, day)
	if err != nil {
		return false, false, err
	}

	switch {
	case existing == nil:
		if err := i.products.InsertDailyProduct(rec); err != nil {
			return false, false, err
		}
		isNew = true

	case floatsEqual(existing.Price, p.Price) && floatsEqual(existing.Rating, p.Rating):
		// Unchanged snapshot: no mutation, history still records the sighting.

	default:
		oldPrice := existing.Price
		if err := i.products.UpdateDailyProduct(existing.ID, rec); err != nil {
			return false, false, err
		}
		wasUpdated = true

		if err := i.checkPriceDrop(p, oldPrice); err != nil {
			return false, false, err
		}
	}

	if err := i.history.AppendObservation(p.Key, p.Price, p.Rating); err != nil {
		return false, false, err
	}

	return isNew, wasUpdated, nil
}

// checkPriceDrop emits a PRICE_DROP event when the variation against the
// stored price falls below the negative threshold.
func (i *Ingester) checkPriceDrop(p Product, oldPrice *float64) error {
	if oldPrice == nil || p.Price == nil || *oldPrice == 0 {
		return nil
	}

	variation := (*p.Price - *oldPrice) / *oldPrice * 100
	if variation >= -i.dropPercent {
		return nil
	}

	message := fmt.Sprintf("%s: %.2f -> %.2f (%.1f%%)", p.Title, *oldPrice, *p.Price, variation)
	slog.Info("price drop detected", "title", p.Title, "old", *oldPrice, "new", *p.Price, "variation", variation)

	return i.alerts.InsertAlert(database.AlertPriceDrop, message, p.Key, oldPrice, p.Price)
}

func toRecord(p Product, day string) database.ProductRecord {
	return database.ProductRecord{
		Key:          p.Key,
		Title:        p.Title,
		Price:        p.Price,
		Currency:     string(p.Currency),
		Rating:       p.Rating,
		ImageURL:     p.ImageURL,
		PriceBucket:  string(p.PriceBucket),
		RatingBucket: string(p.RatingBucket),
		ValueRatio:   p.ValueRatio,
		ScrapeDay:    day,
		ScrapedAt:    p.ScrapedAt,
	}
}

func floatsEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
