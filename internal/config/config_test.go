package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("does-not-exist.yaml")
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "data/stocks.db", cfg.Database.DSN)
	assert.Equal(t, "ignore", cfg.Database.KeyMode)
	assert.Equal(t, "yahoo", cfg.DataSource.Provider)
	assert.Equal(t, 30*time.Second, cfg.DataSource.Timeout)
	assert.Equal(t, []string{"NVDA"}, cfg.Feed.Symbols)
	assert.Equal(t, 1, cfg.Feed.Days)
	assert.Equal(t, "1m", cfg.Feed.Interval)
	assert.Equal(t, "America/New_York", cfg.Market.Timezone)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileThenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "config.yaml")
	yml := `
database:
  dsn: /tmp/custom.db
  key_mode: append
feed:
  symbols: [aapl, msft]
  days: 5
  interval: 5m
data_source:
  timeout: 10s
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))
	t.Setenv("ANALYZER_FEED_DAYS", "3")
	t.Setenv("ANALYZER_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/custom.db", cfg.Database.DSN)
	assert.Equal(t, "append", cfg.Database.KeyMode)
	assert.Equal(t, []string{"aapl", "msft"}, cfg.Feed.Symbols)
	assert.Equal(t, 3, cfg.Feed.Days)
	assert.Equal(t, "5m", cfg.Feed.Interval)
	assert.Equal(t, 10*time.Second, cfg.DataSource.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_BadYAML(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := &Config{}
		c.applyDefaults()
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, true},
		{"postgres without dsn", func(c *Config) { c.Database.Driver = "postgres"; c.Database.DSN = "" }, true},
		{"bad key mode", func(c *Config) { c.Database.KeyMode = "upsert" }, true},
		{"polygon without key", func(c *Config) { c.DataSource.Provider = "polygon" }, true},
		{"polygon with key", func(c *Config) {
			c.DataSource.Provider = "polygon"
			c.DataSource.PolygonAPIKey = "k"
		}, false},
		{"unknown provider", func(c *Config) { c.DataSource.Provider = "bloomberg" }, true},
		{"negative days", func(c *Config) { c.Feed.Days = -1 }, true},
		{"bad timezone", func(c *Config) { c.Market.Timezone = "Mars/Olympus" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLocation_Fallback(t *testing.T) {
	c := &Config{Market: MarketConfig{Timezone: "Mars/Olympus"}}
	loc := c.Location()
	require.NotNil(t, loc)
	assert.NotEqual(t, "Mars/Olympus", loc.String())
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
