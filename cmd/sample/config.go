package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "REST_SAMPLE"

// config is read from REST_SAMPLE_* environment variables.
type config struct {
	BaseURL  string        `envconfig:"BASE_URL" default:"http://localhost:8080"`
	Contract string        `envconfig:"CONTRACT"`
	Timeout  time.Duration `envconfig:"TIMEOUT" default:"5s"`
	Rate     float64       `envconfig:"RATE" default:"10"`
	Token    string        `envconfig:"TOKEN"`
	LogLevel string        `envconfig:"LOG_LEVEL" default:"info"`
}

func loadConfig() (*config, error) {
	var cfg config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

func (c *config) level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
