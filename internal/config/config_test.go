package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "DATA_SOURCE_BASE_URL", "DATA_SOURCE_API_KEY",
		"STOCK_SYMBOL", "SCRAPER_URL", "OUTPUT_PATH", "SQLITE_PATH", "CRON_SCRAPE",
		"LOG_LEVEL", "LOG_FILE", "HTTPS_PROXY",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://www.slickcharts.com/sp500/performance", cfg.Scraper.URL)
	assert.Equal(t, []string{"slickcharts.com", "www.slickcharts.com"}, cfg.Scraper.AllowedDomains)
	assert.Equal(t, 30*time.Second, cfg.Scraper.Timeout)
	assert.Equal(t, "0 30 16 * * 1-5", cfg.Schedule.ScrapeCron)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, ".", cfg.Analyzer.OutputDir)
	require.NotNil(t, cfg.Analyzer.Style.Grid)
	assert.True(t, *cfg.Analyzer.Style.Grid)
	assert.Equal(t, 10.0, cfg.Analyzer.Style.Width)
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
data_source:
  symbol: AAPL
analyzer:
  start: "2024-01-01"
  style:
    color: "#1f77b4"
    grid: false
scraper:
  timeout: 5s
output:
  path: out/rows.csv
telegram:
  bot_token: file-token
  chat_id: "42"
log:
  level: debug
`)
	t.Setenv("STOCK_SYMBOL", "NVDA")
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("SQLITE_PATH", "data/rankings.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "NVDA", cfg.DataSource.Symbol)
	assert.Equal(t, "2024-01-01", cfg.Analyzer.Start)
	assert.Equal(t, "#1f77b4", cfg.Analyzer.Style.Color)
	assert.False(t, *cfg.Analyzer.Style.Grid)
	assert.Equal(t, 5*time.Second, cfg.Scraper.Timeout)
	assert.Equal(t, "out/rows.csv", cfg.Output.Path)
	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
	assert.Equal(t, "data/rankings.db", cfg.Database.SQLitePath)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.TelegramEnabled())
}

func TestLoad_BadYAML(t *testing.T) {
	clearEnv(t)

	_, err := Load(writeConfig(t, "scraper: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"half telegram", func(c *Config) { c.Telegram.BotToken = "x" }},
		{"bad base url", func(c *Config) { c.DataSource.BaseURL = "ftp://example.com" }},
		{"bad scraper url", func(c *Config) { c.Scraper.URL = "slickcharts.com" }},
		{"bad start", func(c *Config) { c.Analyzer.Start = "01/02/2024" }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
