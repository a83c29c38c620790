package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"VNScreener/internal/screener"
)

// NewsSource is one RSS feed to ingest.
type NewsSource struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Config holds all application configuration.
type Config struct {
	NewsSources []NewsSource `yaml:"news_sources"`

	// Screen sections are decoded per screen so a malformed section only
	// disables its own screen.
	FinancialThresholds yaml.Node `yaml:"financial_thresholds"`
	Screener            yaml.Node `yaml:"screener"`

	Data struct {
		FinancialsDir string   `yaml:"financials_dir"`
		DividendsCSV  string   `yaml:"dividends_csv"`
		PricesCSV     string   `yaml:"prices_csv"`
		PriceSource   string   `yaml:"price_source"` // csv or yahoo
		Watchlist     []string `yaml:"watchlist"`
		YahooSuffix   string   `yaml:"yahoo_suffix"`
	} `yaml:"data"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Schedule struct {
		IngestCron string `yaml:"ingest_cron"`
		ScreenCron string `yaml:"screen_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	News struct {
		Limit int `yaml:"limit"`
	} `yaml:"news"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Price sources.
const (
	PriceSourceCSV   = "csv"
	PriceSourceYahoo = "yahoo"
)

// Load reads config from a YAML file, then applies .env and environment
// variable overrides, then defaults. A missing file yields a default config.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

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
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("PRICES_CSV"); v != "" {
		cfg.Data.PricesCSV = v
	}
	if v := os.Getenv("PRICE_SOURCE"); v != "" {
		cfg.Data.PriceSource = v
	}
	if v := os.Getenv("CRON_INGEST"); v != "" {
		cfg.Schedule.IngestCron = v
	}
	if v := os.Getenv("CRON_SCREEN"); v != "" {
		cfg.Schedule.ScreenCron = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("NEWS_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.News.Limit = n
		}
	}

	// Defaults
	if cfg.Data.FinancialsDir == "" {
		cfg.Data.FinancialsDir = "data/financials"
	}
	if cfg.Data.DividendsCSV == "" {
		cfg.Data.DividendsCSV = "data/dividend_calendar.csv"
	}
	if cfg.Data.PricesCSV == "" {
		cfg.Data.PricesCSV = "data/prices.csv"
	}
	if cfg.Data.PriceSource == "" {
		cfg.Data.PriceSource = PriceSourceCSV
	}
	if cfg.Data.YahooSuffix == "" {
		cfg.Data.YahooSuffix = ".VN"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/vnscreener.db"
	}
	if cfg.Schedule.IngestCron == "" {
		cfg.Schedule.IngestCron = "CRON_TZ=Asia/Ho_Chi_Minh 0 0 7 * * 1-5"
	}
	if cfg.Schedule.ScreenCron == "" {
		cfg.Schedule.ScreenCron = "CRON_TZ=Asia/Ho_Chi_Minh 0 30 15 * * 1-5"
	}
	if cfg.News.Limit == 0 {
		cfg.News.Limit = 60
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}

// Validate checks the process-level settings. Screen sections are validated
// separately by ScreenRules.
func (c *Config) Validate() error {
	switch c.Data.PriceSource {
	case PriceSourceCSV:
	case PriceSourceYahoo:
		if len(c.Data.Watchlist) == 0 {
			return fmt.Errorf("data.watchlist is required when data.price_source is %q", PriceSourceYahoo)
		}
	default:
		return fmt.Errorf("data.price_source must be %q or %q, got %q", PriceSourceCSV, PriceSourceYahoo, c.Data.PriceSource)
	}
	for i, s := range c.NewsSources {
		if strings.TrimSpace(s.URL) == "" {
			return fmt.Errorf("news_sources[%d].url is required", i)
		}
	}
	if c.News.Limit < 0 {
		return fmt.Errorf("news.limit must not be negative")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

// TelegramEnabled reports whether Telegram delivery is configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// FundamentalThresholds decodes the financial_thresholds section.
func (c *Config) FundamentalThresholds() (screener.Thresholds, error) {
	var th screener.Thresholds
	if err := decodeNode(&c.FinancialThresholds, &th, false); err != nil {
		return screener.Thresholds{}, &screener.ConfigurationError{Screen: "fundamental", Field: "financial_thresholds", Reason: err.Error()}
	}
	return th, nil
}

// TechnicalConfig decodes the screener section. Unknown keys are rejected.
func (c *Config) TechnicalConfig() (screener.TechnicalConfig, error) {
	var tc screener.TechnicalConfig
	if err := decodeNode(&c.Screener, &tc, true); err != nil {
		return screener.TechnicalConfig{}, &screener.ConfigurationError{Screen: "technical", Field: "screener", Reason: err.Error()}
	}
	return tc, nil
}

// ScreenRules decodes and compiles both screens. A failure in one section is
// recorded on that screen only.
func (c *Config) ScreenRules() screener.Rules {
	var r screener.Rules

	th, err := c.FundamentalThresholds()
	if err == nil {
		r.Fundamental, err = th.Compile()
	}
	r.FundamentalErr = err

	tc, err := c.TechnicalConfig()
	if err == nil {
		r.Technical, err = tc.Compile()
	}
	r.TechnicalErr = err

	return r
}

func decodeNode(node *yaml.Node, out interface{}, strict bool) error {
	if node.Kind == 0 {
		return nil
	}
	if !strict {
		return node.Decode(out)
	}
	raw, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
