package watch

// Config is one tracked search term, loaded from a YAML file in the watches
// directory. The watch name is the file name without extension.
type Config struct {
	Name     string         `yaml:"-"`
	Query    string         `yaml:"query"`
	Settings Settings       `yaml:"settings"`
	Alerts   AlertOverrides `yaml:"alerts"`
}

// Settings controls how one watch is scraped and scheduled.
type Settings struct {
	Enabled        bool `yaml:"enabled"`
	MinProducts    int  `yaml:"min_products"`
	MaxPages       int  `yaml:"max_pages"`
	ScrapeInterval int  `yaml:"scrape_interval"` // seconds
}

// AlertOverrides are per-watch alert thresholds. Zero values fall back to the
// global configuration.
type AlertOverrides struct {
	PriceDropPercent float64 `yaml:"price_drop_percent"`
	ValueRatioMin    float64 `yaml:"value_ratio_min"`
}
