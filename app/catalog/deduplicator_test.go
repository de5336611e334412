package catalog

import (
	"testing"
)

func TestDeduplicatorDropsRepeatedKeys(t *testing.T) {
	dedup := NewDeduplicator()

	products := []Product{
		{Key: "a", Title: "First A"},
		{Key: "b", Title: "B"},
		{Key: "a", Title: "Second A"},
		{Key: "c", Title: "C"},
		{Key: "b", Title: "Second B"},
	}

	unique, duplicates := dedup.Run(products)

	if len(unique) != 3 {
		t.Fatalf("expected 3 unique products, got %d", len(unique))
	}
	if duplicates != 2 {
		t.Errorf("expected 2 duplicates, got %d", duplicates)
	}

	expectedOrder := []string{"a", "b", "c"}
	for i, key := range expectedOrder {
		if unique[i].Key != key {
			t.Errorf("position %d: expected key %q, got %q", i, key, unique[i].Key)
		}
	}
	if unique[0].Title != "First A" {
		t.Errorf("expected first occurrence kept, got %q", unique[0].Title)
	}
}

func TestDeduplicatorEmptyBatch(t *testing.T) {
	dedup := NewDeduplicator()

	unique, duplicates := dedup.Run(nil)

	if len(unique) != 0 || duplicates != 0 {
		t.Errorf("expected empty result, got %d unique and %d duplicates", len(unique), duplicates)
	}
}
