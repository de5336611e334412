package catalog

import (
	"testing"
)

func fptr(v float64) *float64 {
	return &v
}

func TestPriceBucket(t *testing.T) {
	tests := []struct {
		name     string
		price    *float64
		currency Currency
		expected PriceBucket
	}{
		{name: "nil price", price: nil, currency: CurrencyXAF, expected: PriceUnknown},
		{name: "unknown currency", price: fptr(500), currency: CurrencyUnknown, expected: PriceUnknown},
		{name: "absent currency", price: fptr(500), currency: "", expected: PriceUnknown},
		{name: "XAF economical", price: fptr(50_000), currency: CurrencyXAF, expected: PriceEconomical},
		{name: "XAF medium", price: fptr(150_000), currency: CurrencyXAF, expected: PriceMedium},
		{name: "XAF expensive", price: fptr(400_000), currency: CurrencyXAF, expected: PriceExpensive},
		{name: "XAF premium", price: fptr(600_000), currency: CurrencyXAF, expected: PricePremium},
		{name: "USD economical", price: fptr(99), currency: CurrencyUSD, expected: PriceEconomical},
		{name: "USD premium", price: fptr(1_500), currency: CurrencyUSD, expected: PricePremium},
		{name: "EUR medium", price: fptr(200), currency: CurrencyEUR, expected: PriceMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := priceBucket(tt.price, tt.currency); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestRatingBucket(t *testing.T) {
	tests := []struct {
		name     string
		rating   *float64
		expected RatingBucket
	}{
		{name: "nil", rating: nil, expected: RatingUnrated},
		{name: "weak", rating: fptr(3.4), expected: RatingWeak},
		{name: "medium", rating: fptr(3.5), expected: RatingMedium},
		{name: "good", rating: fptr(4.2), expected: RatingGood},
		{name: "excellent", rating: fptr(4.5), expected: RatingExcellent},
		{name: "perfect", rating: fptr(5.0), expected: RatingExcellent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ratingBucket(tt.rating); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestEnricherValueRatio(t *testing.T) {
	enricher := NewEnricher()

	products := []Product{
		{Key: "a", Title: "A", Price: fptr(100), Currency: CurrencyUSD, Rating: fptr(4.0)},
		{Key: "b", Title: "B", Price: fptr(200), Currency: CurrencyUSD, Rating: fptr(5.0)},
	}

	enriched := enricher.Run(products)

	if enriched[0].ValueRatio == nil || *enriched[0].ValueRatio != 8.0 {
		t.Errorf("expected ratio 8.0 for cheapest, got %v", enriched[0].ValueRatio)
	}
	if enriched[1].ValueRatio == nil || *enriched[1].ValueRatio != 5.0 {
		t.Errorf("expected ratio 5.0 for max price, got %v", enriched[1].ValueRatio)
	}
}

func TestEnricherValueRatioMissingData(t *testing.T) {
	enricher := NewEnricher()

	tests := []struct {
		name     string
		products []Product
	}{
		{
			name:     "missing price",
			products: []Product{{Key: "a", Rating: fptr(4.0)}, {Key: "b", Price: fptr(100), Rating: fptr(4.0)}},
		},
		{
			name:     "missing rating",
			products: []Product{{Key: "a", Price: fptr(100)}, {Key: "b", Price: fptr(200), Rating: fptr(4.0)}},
		},
		{
			name:     "no prices in batch",
			products: []Product{{Key: "a", Rating: fptr(4.0)}, {Key: "b", Rating: fptr(5.0)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enriched := enricher.Run(tt.products)
			if enriched[0].ValueRatio != nil {
				t.Errorf("expected nil ratio, got %v", *enriched[0].ValueRatio)
			}
		})
	}
}
