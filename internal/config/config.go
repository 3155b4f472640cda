package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"PriceCycle/internal/collector"
	"PriceCycle/internal/cycle"
)

// Config holds all application configuration.
type Config struct {
	Exchange struct {
		Timezone     string `yaml:"timezone"`
		CloseWeekday string `yaml:"close_weekday"`
		CloseTime    string `yaml:"close_time"`
		Suffix       string `yaml:"suffix"`
	} `yaml:"exchange"`
	DataSource struct {
		BaseURL        string `yaml:"base_url"`
		APIKey         string `yaml:"api_key"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"data_source"`
	Cycle struct {
		DefaultPreset string            `yaml:"default_preset"`
		Presets       map[string]string `yaml:"presets"`
		ATRPeriod     *int              `yaml:"atr_period"` // 0 disables ATR, unset means 14
	} `yaml:"cycle"`
	Symbols []string `yaml:"symbols"`
	Scan    struct {
		Concurrency int    `yaml:"concurrency"`
		Cron        string `yaml:"cron"`
	} `yaml:"scan"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	API struct {
		Port           int `yaml:"port"`
		TimeoutSeconds int `yaml:"timeout_seconds"`
	} `yaml:"api"`
	Logging struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"logging"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides, then defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

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
	if v := os.Getenv("DATA_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("EXCHANGE_TZ"); v != "" {
		cfg.Exchange.Timezone = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("SCAN_CRON"); v != "" {
		cfg.Scan.Cron = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Exchange.Timezone == "" {
		c.Exchange.Timezone = "Asia/Kolkata"
	}
	if c.Exchange.CloseWeekday == "" {
		c.Exchange.CloseWeekday = "friday"
	}
	if c.Exchange.CloseTime == "" {
		c.Exchange.CloseTime = "15:30"
	}
	if c.Exchange.Suffix == "" {
		c.Exchange.Suffix = ".NS"
	}
	if c.DataSource.TimeoutSeconds == 0 {
		c.DataSource.TimeoutSeconds = 30
	}
	presets := cycle.DefaultPresets()
	for name, steps := range c.Cycle.Presets {
		presets[name] = steps
	}
	c.Cycle.Presets = presets
	if c.Cycle.DefaultPreset == "" {
		c.Cycle.DefaultPreset = "medium"
	}
	if c.Cycle.ATRPeriod == nil {
		period := 14
		c.Cycle.ATRPeriod = &period
	}
	if len(c.Symbols) == 0 {
		c.Symbols = append([]string(nil), collector.DefaultSymbols...)
	}
	if c.Scan.Concurrency == 0 {
		c.Scan.Concurrency = 4
	}
	if c.Scan.Cron == "" {
		// Friday 15:45 exchange time, after the weekly bar settles.
		c.Scan.Cron = "0 45 15 * * 5"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/price_cycle.db"
	}
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.API.TimeoutSeconds == 0 {
		c.API.TimeoutSeconds = 30
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks that all fields are usable.
func (c *Config) Validate() error {
	if _, err := c.Session(); err != nil {
		return err
	}
	presets := c.Presets()
	for _, name := range presets.Names() {
		if _, err := presets.Steps(name); err != nil {
			return fmt.Errorf("cycle.presets.%s: %w", name, err)
		}
	}
	if _, ok := presets[c.Cycle.DefaultPreset]; !ok {
		return fmt.Errorf("cycle.default_preset %q is not a known preset", c.Cycle.DefaultPreset)
	}
	if c.ATRPeriod() < 0 {
		return fmt.Errorf("cycle.atr_period must not be negative")
	}
	if c.Scan.Concurrency < 1 {
		return fmt.Errorf("scan.concurrency must be positive")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

// TelegramEnabled reports whether notifications are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// ATRPeriod returns the configured ATR period; 0 means ATR is disabled.
func (c *Config) ATRPeriod() int {
	if c.Cycle.ATRPeriod == nil {
		return 0
	}
	return *c.Cycle.ATRPeriod
}

// Presets returns the merged step presets.
func (c *Config) Presets() cycle.Presets {
	return cycle.Presets(c.Cycle.Presets)
}

// Location loads the exchange time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Exchange.Timezone)
	if err != nil {
		return nil, fmt.Errorf("exchange.timezone: %w", err)
	}
	return loc, nil
}

// Session builds the weekly settlement rule from the exchange section.
func (c *Config) Session() (cycle.Session, error) {
	loc, err := c.Location()
	if err != nil {
		return cycle.Session{}, err
	}
	wd, err := parseWeekday(c.Exchange.CloseWeekday)
	if err != nil {
		return cycle.Session{}, err
	}
	t, err := time.Parse("15:04", c.Exchange.CloseTime)
	if err != nil {
		return cycle.Session{}, fmt.Errorf("exchange.close_time: %w", err)
	}
	return cycle.Session{
		Location:     loc,
		CloseWeekday: wd,
		CloseHour:    t.Hour(),
		CloseMinute:  t.Minute(),
	}, nil
}

func parseWeekday(s string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := d.String()
		if strings.EqualFold(s, name) || strings.EqualFold(s, name[:3]) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("exchange.close_weekday: unknown weekday %q", s)
}
