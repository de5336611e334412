package database

import (
	"time"
)

// ProductRecord is the write model handed to the product repository by the
// ingestion engine.
type ProductRecord struct {
	Key          string
	Title        string
	Price        *float64
	Currency     string
	Rating       *float64
	ImageURL     string
	PriceBucket  string
	RatingBucket string
	ValueRatio   *float64
	ScrapeDay    string
	ScrapedAt    time.Time
}

type ProductRepository interface {
	// GetDailyProduct returns the snapshot row for (key, day), or nil when
	// the product has not been seen that day.
	GetDailyProduct(key, day string) (*Product, error)
	InsertDailyProduct(rec ProductRecord) error
	UpdateDailyProduct(id int64, rec ProductRecord) error

	CountProductsForDay(day string) (int, error)
	TopProductsByValue(day string, limit int) ([]Product, error)
	BestValueProducts(day string, minRatio float64, limit int) ([]Product, error)
	RecentProducts(limit int) ([]Product, error)
	GetProductCount() (int, error)
}

type HistoryRepository interface {
	AppendObservation(key string, price, rating *float64) error
	GetHistory(key string, limit int) ([]PricePoint, error)
}

type AlertRepository interface {
	InsertAlert(kind, message, key string, oldPrice, newPrice *float64) error
	RecentAlerts(limit int) ([]Alert, error)
	RecentAlertsByKind(kind string, limit int) ([]Alert, error)
}

type RunLogRepository interface {
	InsertRunLog(entry RunLog) error
	RecentRuns(limit int) ([]RunLog, error)
	GetRunCount() (int, error)
	GetLastRun() (*RunLog, error)
}

type WatchRepository interface {
	GetWatch(name string) (*Watch, error)
	UpsertWatch(name, query string, enabled bool) error
	UpdateNextRun(name string, lastRun, nextRun time.Time) error
	GetWatchCount() (int, error)
}
