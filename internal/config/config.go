package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	VWPWindow     time.Duration `envconfig:"VWP_WINDOW" default:"15m"`
	SeedCatalogue bool          `envconfig:"SEED_CATALOGUE" default:"true"`

	BatchSize int `envconfig:"BATCH_SIZE" default:"1000"`
	Workers   int `envconfig:"WORKERS" default:"4"`

	MetricsEnabled bool `envconfig:"METRICS_ENABLED" default:"true"`

	LogLevel    string `envconfig:"LOG_LEVEL" default:"warn"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.VWPWindow <= 0 {
		return nil, fmt.Errorf("VWP_WINDOW must be positive, got %s", cfg.VWPWindow)
	}
	if cfg.Workers <= 0 {
		return nil, fmt.Errorf("WORKERS must be positive, got %d", cfg.Workers)
	}
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("BATCH_SIZE must be positive, got %d", cfg.BatchSize)
	}
	return &cfg, nil
}

func (c *Config) Development() bool {
	return c.Environment == "development"
}
