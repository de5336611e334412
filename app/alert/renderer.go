package alert

import (
	"fmt"
	"html/template"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nkwenti/pricewatch/app/database"
)

const priceDropTemplate = `<h2>Price drops</h2>
<p>{{len .Alerts}} price drop(s) detected.</p>
<ul>
{{range .Alerts}}<li>{{.Message}}</li>
{{end}}</ul>`

const newArrivalsTemplate = `<h2>New arrivals</h2>
<p>{{.Count}} product(s) first seen today. Top picks by value:</p>
<ul>
{{range .Products}}<li>{{.Title}} &mdash; {{.PriceText}} ({{.RatingText}})</li>
{{end}}</ul>`

const bestValueTemplate = `<h2>Best value today</h2>
<ul>
{{range .Products}}<li>{{.Title}} &mdash; {{.PriceText}}, ratio {{.RatioText}}</li>
{{end}}</ul>`

// Renderer turns query results into digest subjects and HTML bodies. Prices
// are formatted with thousands separators.
type Renderer struct {
	printer   *message.Printer
	priceDrop *template.Template
	arrivals  *template.Template
	bestValue *template.Template
}

func NewRenderer() *Renderer {
	return &Renderer{
		printer:   message.NewPrinter(language.English),
		priceDrop: template.Must(template.New("price_drop").Parse(priceDropTemplate)),
		arrivals:  template.Must(template.New("new_arrivals").Parse(newArrivalsTemplate)),
		bestValue: template.Must(template.New("best_value").Parse(bestValueTemplate)),
	}
}

type productLine struct {
	Title      string
	PriceText  string
	RatingText string
	RatioText  string
}

func (r *Renderer) RenderPriceDropDigest(alerts []database.Alert) (string, string, error) {
	subject := fmt.Sprintf("Price drops: %d product(s)", len(alerts))

	var b strings.Builder
	err := r.priceDrop.Execute(&b, struct{ Alerts []database.Alert }{alerts})
	if err != nil {
		return "", "", fmt.Errorf("failed to render price drop digest: %w", err)
	}
	return subject, b.String(), nil
}

func (r *Renderer) RenderNewArrivalsDigest(count int, products []database.Product) (string, string, error) {
	subject := fmt.Sprintf("New arrivals: %d product(s) today", count)

	data := struct {
		Count    int
		Products []productLine
	}{count, r.productLines(products)}

	var b strings.Builder
	if err := r.arrivals.Execute(&b, data); err != nil {
		return "", "", fmt.Errorf("failed to render new arrivals digest: %w", err)
	}
	return subject, b.String(), nil
}

func (r *Renderer) RenderBestValueDigest(products []database.Product) (string, string, error) {
	subject := fmt.Sprintf("Best value: %d product(s)", len(products))

	data := struct{ Products []productLine }{r.productLines(products)}

	var b strings.Builder
	if err := r.bestValue.Execute(&b, data); err != nil {
		return "", "", fmt.Errorf("failed to render best value digest: %w", err)
	}
	return subject, b.String(), nil
}

func (r *Renderer) productLines(products []database.Product) []productLine {
	lines := make([]productLine, 0, len(products))
	for _, p := range products {
		lines = append(lines, productLine{
			Title:      p.Title,
			PriceText:  r.formatPrice(p.Price, p.Currency),
			RatingText: formatRating(p.Rating),
			RatioText:  formatRatio(p.ValueRatio),
		})
	}
	return lines
}

func (r *Renderer) formatPrice(price *float64, currency string) string {
	if price == nil {
		return "price unavailable"
	}
	if currency == "" {
		currency = "?"
	}
	return r.printer.Sprintf("%.2f %s", *price, currency)
}

func formatRating(rating *float64) string {
	if rating == nil {
		return "unrated"
	}
	return fmt.Sprintf("%.1f/5", *rating)
}

func formatRatio(ratio *float64) string {
	if ratio == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *ratio)
}
