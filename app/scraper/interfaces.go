package scraper

import (
	"context"

	"github.com/nkwenti/pricewatch/app/catalog"
)

// Fetcher harvests raw search result cards for a query. The pipeline depends
// on this interface only; the browser implementation stays behind it.
type Fetcher interface {
	Fetch(ctx context.Context, query string, minProducts, maxPages int) ([]catalog.RawProduct, error)
}
