package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"ledger"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Update struct {
		MaxAttempts    int           `envconfig:"UPDATE_MAX_ATTEMPTS" default:"3"`
		BackoffCeiling time.Duration `envconfig:"UPDATE_BACKOFF_CEILING" default:"100ms"`
	}

	Cache struct {
		NumCounters int64 `envconfig:"CACHE_NUM_COUNTERS" default:"100000"`
		MaxCost     int64 `envconfig:"CACHE_MAX_COST" default:"10000"`
	}
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
