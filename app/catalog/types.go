package catalog

import (
	"time"
)

// Currency detected on a scraped price string. An empty value means the price
// could not be parsed at all; CurrencyUnknown means digits were parsed but no
// recognized marker was found.
type Currency string

const (
	CurrencyXAF     Currency = "XAF"
	CurrencyUSD     Currency = "USD"
	CurrencyEUR     Currency = "EUR"
	CurrencyUnknown Currency = "UNKNOWN"
)

type PriceBucket string

const (
	PriceEconomical PriceBucket = "Economical"
	PriceMedium     PriceBucket = "Medium"
	PriceExpensive  PriceBucket = "Expensive"
	PricePremium    PriceBucket = "Premium"
	PriceUnknown    PriceBucket = "Unknown"
)

type RatingBucket string

const (
	RatingUnrated   RatingBucket = "Unrated"
	RatingWeak      RatingBucket = "Weak"
	RatingMedium    RatingBucket = "Medium"
	RatingGood      RatingBucket = "Good"
	RatingExcellent RatingBucket = "Excellent"
)

// RawProduct is one search-result card as delivered by the scraper, before any
// cleaning. All fields are best-effort.
type RawProduct struct {
	Title     string
	RawPrice  string
	RawRating string
	ImageURL  string
	ScrapedAt time.Time
}

// Product is the normalized, enriched record flowing through the pipeline.
//
// Key is a sha256 hash of the trimmed title and is the only correlation key
// across scrape runs: a legitimate title edit is indistinguishable from a new
// product. Accepted modeling limitation.
type Product struct {
	Key      string
	Title    string
	Price    *float64
	Currency Currency
	Rating   *float64
	ImageURL string

	PriceBucket  PriceBucket
	RatingBucket RatingBucket
	ValueRatio   *float64

	ScrapedAt time.Time
}

// IngestStats summarizes one reconciliation pass over a batch.
type IngestStats struct {
	New     int
	Updated int
	Total   int
}
