package catalog

// priceTiers maps a currency to its Economical/Medium/Expensive step bounds;
// prices at or above the last bound are Premium. EUR tiers follow the USD ones
// at rough parity since the reference market only documents XAF and USD.
var priceTiers = map[Currency][3]float64{
	CurrencyXAF: {100_000, 300_000, 600_000},
	CurrencyUSD: {150, 500, 1_000},
	CurrencyEUR: {150, 450, 900},
}

// Enricher fills in the derived features of a batch: price bucket, rating
// bucket, and the value ratio relative to the batch's maximum price.
type Enricher struct{}

func NewEnricher() *Enricher {
	return &Enricher{}
}

func (e *Enricher) Run(products []Product) []Product {
	maxPrice := batchMaxPrice(products)

	enriched := make([]Product, 0, len(products))
	for _, p := range products {
		p.PriceBucket = priceBucket(p.Price, p.Currency)
		p.RatingBucket = ratingBucket(p.Rating)
		p.ValueRatio = valueRatio(p.Price, p.Rating, maxPrice)
		enriched = append(enriched, p)
	}

	return enriched
}

func batchMaxPrice(products []Product) float64 {
	max := 0.0
	for _, p := range products {
		if p.Price != nil && *p.Price > max {
			max = *p.Price
		}
	}
	return max
}

func priceBucket(price *float64, currency Currency) PriceBucket {
	if price == nil {
		return PriceUnknown
	}
	tiers, ok := priceTiers[currency]
	if !ok {
		return PriceUnknown
	}
	switch {
	case *price < tiers[0]:
		return PriceEconomical
	case *price < tiers[1]:
		return PriceMedium
	case *price < tiers[2]:
		return PriceExpensive
	default:
		return PricePremium
	}
}

func ratingBucket(rating *float64) RatingBucket {
	if rating == nil {
		return RatingUnrated
	}
	switch {
	case *rating < 3.5:
		return RatingWeak
	case *rating < 4.0:
		return RatingMedium
	case *rating < 4.5:
		return RatingGood
	default:
		return RatingExcellent
	}
}

// valueRatio is rating / (price / batchMax). It rewards low price and high
// rating within one batch only; it is not comparable across batches.
func valueRatio(price, rating *float64, batchMax float64) *float64 {
	if price == nil || rating == nil || batchMax <= 0 {
		return nil
	}
	norm := *price / batchMax
	if norm <= 0 {
		return nil
	}
	ratio := *rating / norm
	return &ratio
}
