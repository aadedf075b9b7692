package app

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/ironmart/ironmart/internal/settings"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	DataDir          string        `envconfig:"DATA_DIR" default:"./data"`
	SnapshotInterval time.Duration `envconfig:"SNAPSHOT_INTERVAL" default:"30s"`

	// PG_DSN and REDIS_ADDR are optional; empty values disable the
	// mirror and the report cache respectively.
	PGDSN     string        `envconfig:"PG_DSN" default:""`
	RedisAddr string        `envconfig:"REDIS_ADDR" default:""`
	CacheTTL  time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	StoreName         string   `envconfig:"STORE_NAME" default:"IronMart Hardware"`
	Currency          string   `envconfig:"CURRENCY" default:"USD"`
	TaxRate           float64  `envconfig:"TAX_RATE" default:"15"`
	LowStockThreshold int      `envconfig:"LOW_STOCK_THRESHOLD" default:"10"`
	PaymentMethods    []string `envconfig:"PAYMENT_METHODS" default:"Cash,Card,Bank Transfer"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if len(cfg.PaymentMethods) == 0 {
		return nil, errors.New("at least one payment method must be configured")
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// StoreDefaults builds the seed system configuration. A loaded snapshot
// overrides these values.
func (c *Config) StoreDefaults() settings.SystemConfig {
	return settings.SystemConfig{
		StoreName:         c.StoreName,
		Currency:          c.Currency,
		LowStockThreshold: c.LowStockThreshold,
		TaxRate:           c.TaxRate,
		PaymentMethods:    c.PaymentMethods,
	}
}
