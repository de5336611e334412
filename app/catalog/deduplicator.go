package catalog

import (
	"log/slog"
)

// Deduplicator drops repeated identities within one batch, keeping the first
// occurrence. Output order is the first-seen order of the input.
type Deduplicator struct{}

func NewDeduplicator() *Deduplicator {
	return &Deduplicator{}
}

// Run returns the deduplicated batch and the number of dropped duplicates.
func (d *Deduplicator) Run(products []Product) ([]Product, int) {
	seen := make(map[string]struct{}, len(products))
	unique := make([]Product, 0, len(products))
	duplicates := 0

	for _, p := range products {
		if _, dup := seen[p.Key]; dup {
			duplicates++
			continue
		}
		seen[p.Key] = struct{}{}
		unique = append(unique, p)
	}

	if duplicates > 0 {
		slog.Debug("Dropped in-batch duplicates", "duplicates", duplicates, "unique", len(unique))
	}

	return unique, duplicates
}
