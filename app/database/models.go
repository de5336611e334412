package database

import (
	"time"
)

// Product is one persisted daily snapshot row: at most one per
// (product_key, scrape_day). Later ingestions on the same day mutate the row
// in place instead of inserting.
type Product struct {
	ID           int64
	Key          string
	Title        string
	Price        *float64
	Currency     string
	Rating       *float64
	ImageURL     string
	PriceBucket  string
	RatingBucket string
	ValueRatio   *float64
	ScrapeDay    string // YYYY-MM-DD, derived at ingestion time
	ScrapedAt    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PricePoint is one append-only observation in the price history. One row is
// written per ingested record per run, including unchanged ones: the table is
// an observation log, not a change log.
type PricePoint struct {
	ID         int64
	Key        string
	Price      *float64
	Rating     *float64
	ObservedAt time.Time
}

// Alert kinds, append-only events raised by the ingester and the evaluator.
const (
	AlertPriceDrop  = "PRICE_DROP"
	AlertNewArrival = "NEW_ARRIVAL"
	AlertBestValue  = "BEST_VALUE"
)

type Alert struct {
	ID        int64
	Kind      string
	Message   string
	Key       string
	OldPrice  *float64
	NewPrice  *float64
	CreatedAt time.Time
}

// Run statuses recorded in run_logs.
const (
	RunStatusSuccess = "SUCCESS"
	RunStatusError   = "ERROR"
)

// RunLog is one row per ingestion run, written at run completion whether the
// run succeeded or failed.
type RunLog struct {
	ID         int64
	WatchName  string
	Scraped    int
	New        int
	Updated    int
	DurationMs int64
	Status     string
	Error      string
	CreatedAt  time.Time
}

// Watch is the persisted state of one tracked search term. The configuration
// itself lives in YAML; this row carries scheduling state.
type Watch struct {
	ID        int64
	Name      string
	Query     string
	Enabled   bool
	LastRunAt *time.Time
	NextRunAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
