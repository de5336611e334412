package alert

import (
	"strings"
	"testing"

	"github.com/nkwenti/pricewatch/app/database"
)

func fptr(v float64) *float64 {
	return &v
}

func TestRenderPriceDropDigest(t *testing.T) {
	renderer := NewRenderer()

	alerts := []database.Alert{
		{Kind: database.AlertPriceDrop, Message: "Laptop: 1000.00 -> 880.00 (-12.0%)"},
		{Kind: database.AlertPriceDrop, Message: "Phone: 500.00 -> 400.00 (-20.0%)"},
	}

	subject, body, err := renderer.RenderPriceDropDigest(alerts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(subject, "2 product(s)") {
		t.Errorf("expected count in subject, got %q", subject)
	}
	if !strings.Contains(body, "Laptop: 1000.00 -&gt; 880.00 (-12.0%)") {
		t.Errorf("expected first drop in body, got %q", body)
	}
	if !strings.Contains(body, "Phone") {
		t.Errorf("expected second drop in body, got %q", body)
	}
}

func TestRenderNewArrivalsDigest(t *testing.T) {
	renderer := NewRenderer()

	products := []database.Product{
		{Title: "Gaming Laptop", Price: fptr(1299.99), Currency: "USD", Rating: fptr(4.5), ValueRatio: fptr(9.0)},
		{Title: "Mystery Gadget"},
	}

	subject, body, err := renderer.RenderNewArrivalsDigest(12, products)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(subject, "12 product(s)") {
		t.Errorf("expected count in subject, got %q", subject)
	}
	if !strings.Contains(body, "1,299.99 USD") {
		t.Errorf("expected grouped price in body, got %q", body)
	}
	if !strings.Contains(body, "4.5/5") {
		t.Errorf("expected rating in body, got %q", body)
	}
	if !strings.Contains(body, "price unavailable") {
		t.Errorf("expected placeholder for missing price, got %q", body)
	}
	if !strings.Contains(body, "unrated") {
		t.Errorf("expected placeholder for missing rating, got %q", body)
	}
}

func TestRenderBestValueDigest(t *testing.T) {
	renderer := NewRenderer()

	products := []database.Product{
		{Title: "Budget Phone", Price: fptr(95000), Currency: "XAF", Rating: fptr(4.2), ValueRatio: fptr(8.4)},
	}

	subject, body, err := renderer.RenderBestValueDigest(products)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(subject, "1 product(s)") {
		t.Errorf("expected count in subject, got %q", subject)
	}
	if !strings.Contains(body, "95,000.00 XAF") {
		t.Errorf("expected grouped price in body, got %q", body)
	}
	if !strings.Contains(body, "ratio 8.40") {
		t.Errorf("expected ratio in body, got %q", body)
	}
}
