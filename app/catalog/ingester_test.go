package catalog

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/nkwenti/pricewatch/app/database"
)

type mockProductRepo struct {
	rows       map[string]*database.Product
	nextID     int64
	inserts    int
	updates    int
	failInsert bool
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{rows: make(map[string]*database.Product)}
}

func (m *mockProductRepo) GetDailyProduct(key, day string) (*database.Product, error) {
	return m.rows[key+"|"+day], nil
}

func (m *mockProductRepo) InsertDailyProduct(rec database.ProductRecord) error {
	if m.failInsert {
		return errors.New("insert failed")
	}
	m.nextID++
	m.inserts++
	m.rows[rec.Key+"|"+rec.ScrapeDay] = &database.Product{
		ID:        m.nextID,
		Key:       rec.Key,
		Title:     rec.Title,
		Price:     rec.Price,
		Rating:    rec.Rating,
		ScrapeDay: rec.ScrapeDay,
	}
	return nil
}

func (m *mockProductRepo) UpdateDailyProduct(id int64, rec database.ProductRecord) error {
	m.updates++
	for _, row := range m.rows {
		if row.ID == id {
			row.Price = rec.Price
			row.Rating = rec.Rating
		}
	}
	return nil
}

func (m *mockProductRepo) CountProductsForDay(day string) (int, error) { return 0, nil }
func (m *mockProductRepo) TopProductsByValue(day string, limit int) ([]database.Product, error) {
	return nil, nil
}
func (m *mockProductRepo) BestValueProducts(day string, minRatio float64, limit int) ([]database.Product, error) {
	return nil, nil
}
func (m *mockProductRepo) RecentProducts(limit int) ([]database.Product, error) { return nil, nil }
func (m *mockProductRepo) GetProductCount() (int, error)                        { return 0, nil }

type mockHistoryRepo struct {
	observations int
	failAppend   bool
}

func (m *mockHistoryRepo) AppendObservation(key string, price, rating *float64) error {
	if m.failAppend {
		return errors.New("append failed")
	}
	m.observations++
	return nil
}

func (m *mockHistoryRepo) GetHistory(key string, limit int) ([]database.PricePoint, error) {
	return nil, nil
}

type mockAlertRepo struct {
	alerts []database.Alert
}

func (m *mockAlertRepo) InsertAlert(kind, message, key string, oldPrice, newPrice *float64) error {
	m.alerts = append(m.alerts, database.Alert{
		Kind: kind, Message: message, Key: key, OldPrice: oldPrice, NewPrice: newPrice,
	})
	return nil
}

func (m *mockAlertRepo) RecentAlerts(limit int) ([]database.Alert, error) { return nil, nil }
func (m *mockAlertRepo) RecentAlertsByKind(kind string, limit int) ([]database.Alert, error) {
	return nil, nil
}

func newTestIngester() (*Ingester, *mockProductRepo, *mockHistoryRepo, *mockAlertRepo) {
	products := newMockProductRepo()
	history := &mockHistoryRepo{}
	alerts := &mockAlertRepo{}
	return NewIngester(products, history, alerts, 10.0), products, history, alerts
}

func testProduct(title string, price, rating *float64) Product {
	return Product{
		Key:       Identity(title),
		Title:     title,
		Price:     price,
		Rating:    rating,
		ScrapedAt: time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestIngesterInsertsNewProduct(t *testing.T) {
	ingester, products, history, _ := newTestIngester()

	stats, err := ingester.Run([]Product{testProduct("Laptop", fptr(1000), fptr(4.5))})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.New != 1 || stats.Updated != 0 || stats.Total != 1 {
		t.Errorf("expected {new:1 updated:0 total:1}, got %+v", stats)
	}
	if products.inserts != 1 {
		t.Errorf("expected 1 insert, got %d", products.inserts)
	}
	if history.observations != 1 {
		t.Errorf("expected 1 history observation, got %d", history.observations)
	}
}

func TestIngesterSameDayUnchanged(t *testing.T) {
	ingester, products, history, _ := newTestIngester()

	batch := []Product{testProduct("Laptop", fptr(1000), fptr(4.5))}

	if _, err := ingester.Run(batch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stats, err := ingester.Run(batch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.New != 0 || stats.Updated != 0 {
		t.Errorf("expected second identical run to be a no-op, got %+v", stats)
	}
	if products.updates != 0 {
		t.Errorf("expected no update for unchanged values, got %d", products.updates)
	}
	if history.observations != 2 {
		t.Errorf("expected history to grow on every run, got %d observations", history.observations)
	}
}

func TestIngesterUpdatesChangedProduct(t *testing.T) {
	ingester, products, _, _ := newTestIngester()

	if _, err := ingester.Run([]Product{testProduct("Laptop", fptr(1000), fptr(4.5))}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stats, err := ingester.Run([]Product{testProduct("Laptop", fptr(950), fptr(4.5))})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.New != 0 || stats.Updated != 1 {
		t.Errorf("expected {new:0 updated:1}, got %+v", stats)
	}
	if products.updates != 1 {
		t.Errorf("expected 1 update, got %d", products.updates)
	}
}

func TestIngesterPriceDropThreshold(t *testing.T) {
	tests := []struct {
		name        string
		oldPrice    float64
		newPrice    float64
		expectAlert bool
	}{
		{name: "drop beyond threshold", oldPrice: 1000, newPrice: 880, expectAlert: true},
		{name: "drop within threshold", oldPrice: 1000, newPrice: 905, expectAlert: false},
		{name: "price increase", oldPrice: 1000, newPrice: 1200, expectAlert: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ingester, _, _, alerts := newTestIngester()

			if _, err := ingester.Run([]Product{testProduct("Laptop", fptr(tt.oldPrice), fptr(4.5))}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if _, err := ingester.Run([]Product{testProduct("Laptop", fptr(tt.newPrice), fptr(4.5))}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.expectAlert {
				if len(alerts.alerts) != 1 {
					t.Fatalf("expected 1 alert, got %d", len(alerts.alerts))
				}
				a := alerts.alerts[0]
				if a.Kind != database.AlertPriceDrop {
					t.Errorf("expected kind %q, got %q", database.AlertPriceDrop, a.Kind)
				}
				if *a.OldPrice != tt.oldPrice || *a.NewPrice != tt.newPrice {
					t.Errorf("expected prices %v -> %v, got %v -> %v",
						tt.oldPrice, tt.newPrice, *a.OldPrice, *a.NewPrice)
				}
			} else if len(alerts.alerts) != 0 {
				t.Errorf("expected no alerts, got %d", len(alerts.alerts))
			}
		})
	}
}

func TestIngesterNoAlertWhenPriceMissing(t *testing.T) {
	ingester, _, _, alerts := newTestIngester()

	if _, err := ingester.Run([]Product{testProduct("Laptop", nil, fptr(4.0))}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ingester.Run([]Product{testProduct("Laptop", fptr(500), fptr(4.0))}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(alerts.alerts) != 0 {
		t.Errorf("expected no alert when old price missing, got %d", len(alerts.alerts))
	}
}

func TestIngesterStoreErrorAbortsBatch(t *testing.T) {
	ingester, products, history, _ := newTestIngester()
	products.failInsert = true

	batch := []Product{
		testProduct("A", fptr(100), nil),
		testProduct("B", fptr(200), nil),
	}

	stats, err := ingester.Run(batch)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if stats.New != 0 {
		t.Errorf("expected no completed inserts, got %d", stats.New)
	}
	if history.observations != 0 {
		t.Errorf("expected batch aborted before history writes, got %d", history.observations)
	}
}

func TestPipelineEndToEnd(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	raw := make([]RawProduct, 0, 7)
	for i := 0; i < 5; i++ {
		raw = append(raw, RawProduct{
			Title:     fmt.Sprintf("Product %d", i),
			RawPrice:  fmt.Sprintf("$%d.00", 100+i*50),
			RawRating: "4.0 out of 5 stars",
			ScrapedAt: now,
		})
	}
	raw = append(raw,
		RawProduct{Title: "Product 0", RawPrice: "$100.00", ScrapedAt: now},
		RawProduct{Title: "Product 3", RawPrice: "$250.00", ScrapedAt: now},
	)

	products := NewNormalizer().Run(raw)
	products = NewEnricher().Run(products)
	products, duplicates := NewDeduplicator().Run(products)

	if duplicates != 2 {
		t.Fatalf("expected 2 duplicates dropped, got %d", duplicates)
	}

	ingester, _, history, _ := newTestIngester()
	stats, err := ingester.Run(products)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.New != 5 || stats.Total != 5 {
		t.Errorf("expected {new:5 total:5}, got %+v", stats)
	}
	if history.observations != 5 {
		t.Errorf("expected 5 observations, got %d", history.observations)
	}
}
