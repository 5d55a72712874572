package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
		Symbol  string `yaml:"symbol"`
	} `yaml:"data_source"`
	Analyzer struct {
		Start     string `yaml:"start"`
		End       string `yaml:"end"`
		OutputDir string `yaml:"output_dir"`
		Style     struct {
			Color    string  `yaml:"color"`
			Grid     *bool   `yaml:"grid"`
			Width    float64 `yaml:"width_in"`
			Height   float64 `yaml:"height_in"`
			FontSize float64 `yaml:"font_size"`
		} `yaml:"style"`
	} `yaml:"analyzer"`
	Scraper struct {
		URL            string        `yaml:"url"`
		AllowedDomains []string      `yaml:"allowed_domains"`
		UserAgent      string        `yaml:"user_agent"`
		Timeout        time.Duration `yaml:"timeout"`
	} `yaml:"scraper"`
	Output struct {
		Path string `yaml:"path"`
	} `yaml:"output"`
	Schedule struct {
		ScrapeCron string `yaml:"scrape_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level  string `yaml:"level"`
		File   string `yaml:"file"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
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

	// Environment variable overrides
	overrides := []struct {
		env string
		dst *string
	}{
		{"TELEGRAM_BOT_TOKEN", &cfg.Telegram.BotToken},
		{"TELEGRAM_CHAT_ID", &cfg.Telegram.ChatID},
		{"DATA_SOURCE_BASE_URL", &cfg.DataSource.BaseURL},
		{"DATA_SOURCE_API_KEY", &cfg.DataSource.APIKey},
		{"STOCK_SYMBOL", &cfg.DataSource.Symbol},
		{"SCRAPER_URL", &cfg.Scraper.URL},
		{"OUTPUT_PATH", &cfg.Output.Path},
		{"SQLITE_PATH", &cfg.Database.SQLitePath},
		{"CRON_SCRAPE", &cfg.Schedule.ScrapeCron},
		{"LOG_LEVEL", &cfg.Log.Level},
		{"LOG_FILE", &cfg.Log.File},
		{"HTTPS_PROXY", &cfg.Proxy},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.dst = v
		}
	}

	// Defaults
	if cfg.Analyzer.OutputDir == "" {
		cfg.Analyzer.OutputDir = "."
	}
	if cfg.Analyzer.Style.Color == "" {
		cfg.Analyzer.Style.Color = "#008000"
	}
	if cfg.Analyzer.Style.Grid == nil {
		grid := true
		cfg.Analyzer.Style.Grid = &grid
	}
	if cfg.Analyzer.Style.Width == 0 {
		cfg.Analyzer.Style.Width = 10
	}
	if cfg.Analyzer.Style.Height == 0 {
		cfg.Analyzer.Style.Height = 6
	}
	if cfg.Analyzer.Style.FontSize == 0 {
		cfg.Analyzer.Style.FontSize = 12
	}
	if cfg.Scraper.URL == "" {
		cfg.Scraper.URL = "https://www.slickcharts.com/sp500/performance"
	}
	if len(cfg.Scraper.AllowedDomains) == 0 {
		cfg.Scraper.AllowedDomains = []string{"slickcharts.com", "www.slickcharts.com"}
	}
	if cfg.Scraper.Timeout == 0 {
		cfg.Scraper.Timeout = 30 * time.Second
	}
	if cfg.Schedule.ScrapeCron == "" {
		cfg.Schedule.ScrapeCron = "0 30 16 * * 1-5"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}

	return cfg, nil
}

// TelegramEnabled reports whether notifications can be sent.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks field formats. Nothing is strictly required; every flow has defaults.
func (c *Config) Validate() error {
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if c.DataSource.BaseURL != "" {
		if err := checkHTTPURL(c.DataSource.BaseURL); err != nil {
			return fmt.Errorf("data_source.base_url: %w", err)
		}
	}
	if err := checkHTTPURL(c.Scraper.URL); err != nil {
		return fmt.Errorf("scraper.url: %w", err)
	}
	for _, d := range []struct{ name, v string }{
		{"analyzer.start", c.Analyzer.Start},
		{"analyzer.end", c.Analyzer.End},
	} {
		if d.v == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d.v); err != nil {
			return fmt.Errorf("%s must be YYYY-MM-DD, got %q", d.name, d.v)
		}
	}
	if c.Scraper.Timeout < 0 {
		return fmt.Errorf("scraper.timeout must be positive")
	}
	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}
	return nil
}

func checkHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme in %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}
	return nil
}
