package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ratingRegexp captures the first decimal number in free text,
	// e.g. "4.5 out of 5 stars" -> 4.5
	ratingRegexp = regexp.MustCompile(`(\d+\.?\d*)`)
	// digitsRegexp strips everything but digits for best-effort parsing
	digitsRegexp = regexp.MustCompile(`[^\d]`)
)

// currencyMarkers are scanned in priority order: an XAF marker wins over a
// dollar sign appearing later in the same string.
var currencyMarkers = []struct {
	currency Currency
	markers  []string
}{
	{CurrencyXAF, []string{"FCFA", "XAF", "CFA"}},
	{CurrencyUSD, []string{"$", "USD"}},
	{CurrencyEUR, []string{"€", "EUR"}},
}

// Normalizer turns raw scraped cards into canonical products. Records without
// a title are rejected; any other field failing to parse becomes nil.
type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Run normalizes a batch. The returned slice preserves input order; rejected
// records are counted, not errored.
func (n *Normalizer) Run(raw []RawProduct) []Product {
	products := make([]Product, 0, len(raw))
	rejected := 0

	for _, r := range raw {
		title := strings.TrimSpace(r.Title)
		if title == "" {
			rejected++
			continue
		}

		p := Product{
			Key:       Identity(title),
			Title:     title,
			ImageURL:  strings.TrimSpace(r.ImageURL),
			ScrapedAt: r.ScrapedAt,
		}
		p.Price, p.Currency = parsePrice(r.RawPrice)
		p.Rating = parseRating(r.RawRating)

		products = append(products, p)
	}

	if rejected > 0 {
		slog.Debug("Normalizer rejected records without title", "rejected", rejected, "kept", len(products))
	}

	return products
}

// Identity derives the stable correlation key for a product title. Hashing the
// same trimmed title always yields the same key.
func Identity(title string) string {
	hash := sha256.Sum256([]byte(strings.TrimSpace(title)))
	return hex.EncodeToString(hash[:])
}

// parsePrice detects the currency and parses the numeric amount. A nil price
// with an empty currency means the text was unparseable; CurrencyUnknown means
// digits were recovered without a recognized marker.
func parsePrice(raw string) (*float64, Currency) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, ""
	}

	currency := CurrencyUnknown
	upper := strings.ToUpper(text)
	for _, cm := range currencyMarkers {
		for _, marker := range cm.markers {
			if strings.Contains(upper, marker) {
				currency = cm.currency
				break
			}
		}
		if currency != CurrencyUnknown {
			break
		}
	}

	value, ok := parseAmount(text, currency)
	if !ok {
		return nil, ""
	}
	return &value, currency
}

// parseAmount applies the per-currency thousands/decimal convention:
// XAF prices are space-grouped integers ("1 250 000 FCFA"), USD uses comma
// thousands with a dot decimal ("$1,299.99"), EUR uses dot thousands with a
// comma decimal ("1.299,99 €").
func parseAmount(text string, currency Currency) (float64, bool) {
	switch currency {
	case CurrencyXAF:
		cleaned := digitsRegexp.ReplaceAllString(text, "")
		if cleaned == "" {
			return 0, false
		}
		v, err := strconv.ParseFloat(cleaned, 64)
		return v, err == nil

	case CurrencyUSD:
		cleaned := strings.ReplaceAll(text, ",", "")
		return parseFirstNumber(cleaned)

	case CurrencyEUR:
		cleaned := strings.ReplaceAll(text, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
		return parseFirstNumber(cleaned)

	default:
		// Best effort: digits only
		cleaned := digitsRegexp.ReplaceAllString(text, "")
		if cleaned == "" {
			return 0, false
		}
		v, err := strconv.ParseFloat(cleaned, 64)
		return v, err == nil
	}
}

var numberRegexp = regexp.MustCompile(`\d+(?:\.\d+)?`)

func parseFirstNumber(text string) (float64, bool) {
	match := numberRegexp.FindString(text)
	if match == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(match, 64)
	return v, err == nil
}

// parseRating extracts the first decimal number and bounds it to the 0-5
// star scale; anything else is nil.
func parseRating(raw string) *float64 {
	match := ratingRegexp.FindStringSubmatch(raw)
	if len(match) < 2 {
		return nil
	}
	v, err := strconv.ParseFloat(match[1], 64)
	if err != nil || v < 0 || v > 5 {
		return nil
	}
	return &v
}
