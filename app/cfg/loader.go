package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBType     string `long:"db-type" env:"DB_TYPE" default:"sqlite" choice:"sqlite" choice:"postgres" description:"Database backend"`
	DBPath     string `long:"db-path" env:"DB_PATH" default:"pricewatch.db" description:"SQLite database file (db-type=sqlite)"`
	DBHost     string `long:"db-host" env:"DB_HOST" default:"localhost" description:"Database host (db-type=postgres)"`
	DBPort     string `long:"db-port" env:"DB_PORT" default:"5432" description:"Database port (db-type=postgres)"`
	DBUser     string `long:"db-user" env:"DB_USER" default:"pricewatch" description:"Database user (db-type=postgres)"`
	DBPassword string `long:"db-password" env:"DB_PASSWORD" description:"Database password (db-type=postgres)"`
	DBName     string `long:"db-name" env:"DB_NAME" default:"pricewatch" description:"Database name (db-type=postgres)"`

	// Application configuration
	WatchesDir        string `long:"watches-dir" env:"WATCHES_DIR" default:"./watches" description:"Directory containing watch configuration files"`
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background workers for scrape processing"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"60" description:"Scheduler interval in seconds"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Alert configuration
	SMTPHost          string  `long:"smtp-host" env:"SMTP_HOST" default:"smtp.gmail.com" description:"SMTP server host"`
	SMTPPort          string  `long:"smtp-port" env:"SMTP_PORT" default:"587" description:"SMTP server port"`
	SMTPUser          string  `long:"smtp-user" env:"SMTP_USER" description:"SMTP sender address (alerts disabled when empty)"`
	SMTPPassword      string  `long:"smtp-password" env:"SMTP_PASSWORD" description:"SMTP password or app password"`
	AlertRecipient    string  `long:"alert-recipient" env:"ALERT_RECIPIENT" description:"Alert recipient address (defaults to smtp-user)"`
	PriceDropPercent  float64 `long:"price-drop-percent" env:"PRICE_DROP_PERCENT" default:"10" description:"Price drop percentage that triggers an alert"`
	ValueRatioMin     float64 `long:"value-ratio-min" env:"VALUE_RATIO_MIN" default:"8.0" description:"Value ratio above which a product counts as a deal"`
	RecentAlertsLimit int     `long:"recent-alerts-limit" env:"RECENT_ALERTS_LIMIT" default:"50" description:"Maximum price-drop events included in one digest"`

	// Scraper configuration
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36" description:"User agent string for browser sessions"`
	ChromeBin string `long:"chrome-bin" env:"CHROME_BIN" description:"Path to the Chrome/Chromium binary (auto-detected when empty)"`
	Headless  bool   `long:"headless" env:"HEADLESS" description:"Run the browser headless"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g. UTC, Africa/Douala)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	// Optional .env file, system environment takes precedence otherwise
	_ = godotenv.Load()

	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBType:            raw.DBType,
		DBPath:            raw.DBPath,
		DBHost:            raw.DBHost,
		DBPort:            raw.DBPort,
		DBUser:            raw.DBUser,
		DBPassword:        raw.DBPassword,
		DBName:            raw.DBName,
		WatchesDir:        raw.WatchesDir,
		Port:              raw.Port,
		WorkerCount:       raw.WorkerCount,
		SchedulerInterval: raw.SchedulerInterval,
		APIAccessKey:      raw.APIAccessKey,
		SMTPHost:          raw.SMTPHost,
		SMTPPort:          raw.SMTPPort,
		SMTPUser:          raw.SMTPUser,
		SMTPPassword:      raw.SMTPPassword,
		AlertRecipient:    cmp.Or(raw.AlertRecipient, raw.SMTPUser),
		PriceDropPercent:  raw.PriceDropPercent,
		ValueRatioMin:     raw.ValueRatioMin,
		RecentAlertsLimit: raw.RecentAlertsLimit,
		UserAgent:         raw.UserAgent,
		ChromeBin:         raw.ChromeBin,
		Headless:          raw.Headless,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
