package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. ANALYZER_DATABASE_DSN.
const EnvPrefix = "ANALYZER_"

// Config holds all application configuration.
type Config struct {
	Database   DatabaseConfig   `yaml:"database" envPrefix:"DATABASE_"`
	DataSource DataSourceConfig `yaml:"data_source" envPrefix:"DATA_SOURCE_"`
	Feed       FeedConfig       `yaml:"feed" envPrefix:"FEED_"`
	Market     MarketConfig     `yaml:"market" envPrefix:"MARKET_"`
	Log        LogConfig        `yaml:"log" envPrefix:"LOG_"`
}

// DatabaseConfig selects the durable store.
type DatabaseConfig struct {
	Driver  string `yaml:"driver" env:"DRIVER"`     // sqlite | postgres
	DSN     string `yaml:"dsn" env:"DSN"`           // file path for sqlite, URL for postgres
	KeyMode string `yaml:"key_mode" env:"KEY_MODE"` // append | strict | ignore
}

// DataSourceConfig selects the upstream bar provider.
type DataSourceConfig struct {
	Provider      string        `yaml:"provider" env:"PROVIDER"` // yahoo | polygon | mock
	PolygonAPIKey string        `yaml:"polygon_api_key" env:"POLYGON_API_KEY"`
	Proxy         string        `yaml:"proxy" env:"PROXY"`
	Timeout       time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// FeedConfig holds defaults for fetch batches.
type FeedConfig struct {
	Symbols  []string `yaml:"symbols" env:"SYMBOLS" envSeparator:","`
	Days     int      `yaml:"days" env:"DAYS"`
	Interval string   `yaml:"interval" env:"INTERVAL"`
	Cron     string   `yaml:"cron" env:"CRON"`
}

// MarketConfig holds exchange calendar settings.
type MarketConfig struct {
	Timezone string `yaml:"timezone" env:"TIMEZONE"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level   string `yaml:"level" env:"LEVEL"`
	Console bool   `yaml:"console" env:"CONSOLE"`
}

// Load reads config from a YAML file, then .env and environment overrides, then defaults.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env is optional
	_ = godotenv.Load()

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	// Conventional names used by other tools
	if v := os.Getenv("POLYGON_API_KEY"); v != "" && cfg.DataSource.PolygonAPIKey == "" {
		cfg.DataSource.PolygonAPIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" && cfg.DataSource.Proxy == "" {
		cfg.DataSource.Proxy = v
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.DSN == "" && c.Database.Driver == "sqlite" {
		c.Database.DSN = "data/stocks.db"
	}
	if c.Database.KeyMode == "" {
		c.Database.KeyMode = "ignore"
	}
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "yahoo"
	}
	if c.DataSource.Timeout == 0 {
		c.DataSource.Timeout = 30 * time.Second
	}
	if len(c.Feed.Symbols) == 0 {
		c.Feed.Symbols = []string{"NVDA"}
	}
	if c.Feed.Days == 0 {
		c.Feed.Days = 1
	}
	if c.Feed.Interval == "" {
		c.Feed.Interval = "1m"
	}
	if c.Feed.Cron == "" {
		c.Feed.Cron = "0 */5 * * * 1-5"
	}
	if c.Market.Timezone == "" {
		c.Market.Timezone = "America/New_York"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks that all fields hold supported values.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database.driver %q is not supported (sqlite, postgres)", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	switch c.Database.KeyMode {
	case "append", "strict", "ignore":
	default:
		return fmt.Errorf("database.key_mode %q is not supported (append, strict, ignore)", c.Database.KeyMode)
	}
	switch c.DataSource.Provider {
	case "yahoo", "mock":
	case "polygon":
		if c.DataSource.PolygonAPIKey == "" {
			return fmt.Errorf("data_source.polygon_api_key is required for the polygon provider")
		}
	default:
		return fmt.Errorf("data_source.provider %q is not supported (yahoo, polygon, mock)", c.DataSource.Provider)
	}
	if c.Feed.Days <= 0 {
		return fmt.Errorf("feed.days must be positive")
	}
	if _, err := time.LoadLocation(c.Market.Timezone); err != nil {
		return fmt.Errorf("market.timezone: %w", err)
	}
	return nil
}

// Location returns the market time zone, falling back to America/New_York and then UTC.
func (c *Config) Location() *time.Location {
	if loc, err := time.LoadLocation(c.Market.Timezone); err == nil {
		return loc
	}
	if loc, err := time.LoadLocation("America/New_York"); err == nil {
		return loc
	}
	return time.UTC
}
