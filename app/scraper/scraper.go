package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/nkwenti/pricewatch/app/catalog"
)

const searchBaseURL = "https://www.amazon.com/s"

var _ Fetcher = (*ChromeScraper)(nil)

// ChromeScraper drives a headless browser over search result pages. Card
// fields are extracted with ordered selector fallbacks since result markup
// varies between layouts.
type ChromeScraper struct {
	userAgent string
	chromeBin string
	headless  bool
}

func NewChromeScraper(userAgent, chromeBin string, headless bool) *ChromeScraper {
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	return &ChromeScraper{
		userAgent: userAgent,
		chromeBin: chromeBin,
		headless:  headless,
	}
}

// Fetch walks result pages until minProducts cards are collected or maxPages
// is reached. An empty page stops pagination early.
func (s *ChromeScraper) Fetch(ctx context.Context, query string, minProducts, maxPages int) ([]catalog.RawProduct, error) {
	slog.Info("Starting scrape", "query", query, "min_products", minProducts, "max_pages", maxPages)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(s.userAgent),
	)
	if s.chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(s.chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	var products []catalog.RawProduct
	for page := 1; page <= maxPages; page++ {
		cards, err := s.scrapePage(browserCtx, query, page)
		if err != nil {
			if len(products) > 0 {
				slog.Warn("Page scrape failed, keeping partial batch", "page", page, "error", err)
				break
			}
			return nil, fmt.Errorf("failed to scrape page %d: %w", page, err)
		}

		if len(cards) == 0 {
			slog.Warn("Empty results page, stopping pagination", "page", page)
			break
		}

		products = append(products, cards...)
		slog.Debug("Page scraped", "page", page, "cards", len(cards), "collected", len(products))

		if len(products) >= minProducts {
			break
		}
	}

	slog.Info("Scrape complete", "query", query, "products", len(products))
	return products, nil
}

type cardData struct {
	Title    string `json:"title"`
	Price    string `json:"price"`
	Rating   string `json:"rating"`
	ImageURL string `json:"image_url"`
}

func (s *ChromeScraper) scrapePage(browserCtx context.Context, query string, page int) ([]catalog.RawProduct, error) {
	ctx, cancel := context.WithTimeout(browserCtx, 90*time.Second)
	defer cancel()

	var cards []cardData

	err := chromedp.Run(ctx,
		chromedp.Navigate(searchURL(query, page)),
		chromedp.Sleep(4*time.Second),

		// Paced scrolling so lazy-loaded cards and images render
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight / 2)`, nil),
		chromedp.Sleep(2*time.Second),
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
		chromedp.Sleep(2*time.Second),

		chromedp.Evaluate(extractCardsJS, &cards),
	)
	if err != nil {
		return nil, fmt.Errorf("chromedp page extract: %w", err)
	}

	now := time.Now().UTC()
	products := make([]catalog.RawProduct, 0, len(cards))
	for _, c := range cards {
		products = append(products, catalog.RawProduct{
			Title:     c.Title,
			RawPrice:  c.Price,
			RawRating: c.Rating,
			ImageURL:  c.ImageURL,
			ScrapedAt: now,
		})
	}

	return products, nil
}

func searchURL(query string, page int) string {
	return fmt.Sprintf("%s?k=%s&page=%d", searchBaseURL, url.QueryEscape(query), page)
}

// extractCardsJS pulls one record per result card. Each field tries its
// selectors in order and settles for the first non-empty match.
const extractCardsJS = `
	(function() {
		var results = [];

		var cards = document.querySelectorAll('div[data-component-type="s-search-result"]');
		if (cards.length === 0) {
			cards = document.querySelectorAll('div.s-result-item[data-asin]');
		}

		function firstText(root, selectors) {
			for (var i = 0; i < selectors.length; i++) {
				var el = root.querySelector(selectors[i]);
				if (el && el.innerText && el.innerText.trim()) {
					return el.innerText.trim();
				}
			}
			return '';
		}

		for (var i = 0; i < cards.length; i++) {
			var card = cards[i];

			var title = firstText(card, ['h2 a span', 'h2 span', 'h2 a']);

			var price = firstText(card, ['.a-price-whole', 'span.a-price > span.a-offscreen']);
			var fraction = firstText(card, ['.a-price-fraction']);
			if (price && fraction && price.indexOf('.') === -1) {
				price = price + '.' + fraction;
			}
			var symbol = firstText(card, ['.a-price-symbol']);
			if (price && symbol && price.indexOf(symbol) === -1) {
				price = symbol + price;
			}

			var rating = firstText(card, ['span.a-icon-alt', 'i.a-icon-star-small span']);

			var imageURL = '';
			var img = card.querySelector('img.s-image');
			if (img && img.src) {
				imageURL = img.src;
			}

			if (!title && !price) continue;

			results.push({
				title: title,
				price: price,
				rating: rating,
				image_url: imageURL
			});
		}

		return results;
	})()
`

// findChromeBinary locates a Chrome or Chromium binary on the host.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
