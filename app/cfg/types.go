package cfg

type Cfg struct {
	// Database configuration
	DBType     string
	DBPath     string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Application configuration
	WatchesDir        string
	Port              string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string

	// Alert configuration
	SMTPHost          string
	SMTPPort          string
	SMTPUser          string
	SMTPPassword      string
	AlertRecipient    string
	PriceDropPercent  float64
	ValueRatioMin     float64
	RecentAlertsLimit int

	// Scraper configuration
	UserAgent string
	ChromeBin string
	Headless  bool

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
