package config

import "time"

// Catalog configures ingestion from the product catalog platform: the signed
// webhook, the hourly incremental poll and the daily full reconciliation.
type Catalog struct {
	BaseURL       string `env:"CATALOG_BASE_URL"`
	APIKey        string `env:"CATALOG_API_KEY"`
	WebhookSecret string `env:"CATALOG_WEBHOOK_SECRET"`

	PageSize  int           `env:"CATALOG_PAGE_SIZE" envDefault:"100"`
	PageDelay time.Duration `env:"CATALOG_PAGE_DELAY" envDefault:"500ms"`

	PollInterval   time.Duration `env:"CATALOG_POLL_INTERVAL" envDefault:"1h"`
	ReconcileHour  int           `env:"CATALOG_RECONCILE_HOUR" envDefault:"3"`
	RequestTimeout time.Duration `env:"CATALOG_REQUEST_TIMEOUT" envDefault:"30s"`

	// ImageBaseURL is the variant service used to derive resized product
	// images. Empty disables derivation and stores the original URL only.
	ImageBaseURL string `env:"CATALOG_IMAGE_BASE_URL"`
}
