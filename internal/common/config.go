package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string         `toml:"environment"` // "development" or "production"
	Server      ServerConfig   `toml:"server"`
	Storage     StorageConfig  `toml:"storage"`
	Gateway     GatewayConfig  `toml:"gateway"`
	Scrape      ScrapeConfig   `toml:"scrape"`
	Analysis    AnalysisConfig `toml:"analysis"`
	Logging     LoggingConfig  `toml:"logging"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Type   string       `toml:"type"` // "badger", "csv" or "memory"
	Badger BadgerConfig `toml:"badger"`
	CSV    CSVConfig    `toml:"csv"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type CSVConfig struct {
	Path string `toml:"path"` // Flat-file database path
}

// GatewayConfig contains settings for the upstream fund site
type GatewayConfig struct {
	BaseURL           string        `toml:"base_url"`            // Site base URL
	RequestTimeout    time.Duration `toml:"request_timeout"`     // HTTP request timeout
	RequestsPerSecond int           `toml:"requests_per_second"` // Polite pacing against the upstream rate limiter
}

// ScrapeConfig controls the scrape pipeline and the refresh job
type ScrapeConfig struct {
	MaxConcurrentRequests int           `toml:"max_concurrent_requests"` // Tickers resolved in flight at once
	BootstrapDelay        time.Duration `toml:"bootstrap_delay"`         // Grace delay before the initial seed
	RefreshSchedule       string        `toml:"refresh_schedule"`        // Cron spec for the recurring refresh
}

type AnalysisConfig struct {
	MinDividendYield float64 `toml:"min_dividend_yield"` // Hard DY floor in percent
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// NewDefaultConfig returns the built-in defaults. The upstream site
// rate-limits aggressively, so scraping defaults to sequential.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8585,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Type: "badger",
			Badger: BadgerConfig{
				Path: "./data/fiiradar",
			},
			CSV: CSVConfig{
				Path: "./data/fiis_db.csv",
			},
		},
		Gateway: GatewayConfig{
			BaseURL:           "https://statusinvest.com.br",
			RequestTimeout:    30 * time.Second,
			RequestsPerSecond: 2,
		},
		Scrape: ScrapeConfig{
			MaxConcurrentRequests: 1,
			BootstrapDelay:        5 * time.Second,
			RefreshSchedule:       "@every 8h",
		},
		Analysis: AnalysisConfig{
			MinDividendYield: 6.0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
	}
}

// LoadConfig loads configuration from TOML files merged over the defaults.
// Later files override earlier files; environment variables override all.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FIIRADAR_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("FIIRADAR_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("FIIRADAR_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if storageType := os.Getenv("FIIRADAR_STORAGE_TYPE"); storageType != "" {
		config.Storage.Type = storageType
	}
	if path := os.Getenv("FIIRADAR_BADGER_PATH"); path != "" {
		config.Storage.Badger.Path = path
	}
	if path := os.Getenv("FIIRADAR_CSV_PATH"); path != "" {
		config.Storage.CSV.Path = path
	}

	if baseURL := os.Getenv("FIIRADAR_GATEWAY_BASE_URL"); baseURL != "" {
		config.Gateway.BaseURL = baseURL
	}

	if concurrency := os.Getenv("FIIRADAR_SCRAPE_CONCURRENCY"); concurrency != "" {
		if n, err := strconv.Atoi(concurrency); err == nil && n > 0 {
			config.Scrape.MaxConcurrentRequests = n
		}
	}
	if schedule := os.Getenv("FIIRADAR_REFRESH_SCHEDULE"); schedule != "" {
		config.Scrape.RefreshSchedule = schedule
	}

	if level := os.Getenv("FIIRADAR_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}
