package config

import (
	"fmt"
	"os"
	"strconv"
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
		Provider  string `yaml:"provider"` // yahoo | stooq | mock
		Symbol    string `yaml:"symbol"`
		StartDate string `yaml:"start_date"` // YYYY-MM-DD
	} `yaml:"data_source"`
	Schedule struct {
		WeeklyCron string `yaml:"weekly_cron"`
	} `yaml:"schedule"`
	HMM struct {
		MaxIterations int     `yaml:"max_iterations"`
		Tolerance     float64 `yaml:"tolerance"`
		Seed          int64   `yaml:"seed"`
		Epsilon       float64 `yaml:"epsilon"`    // variance regularization floor
		Covariance    string  `yaml:"covariance"` // full | diagonal (equivalent for scalar emissions)
	} `yaml:"hmm"`
	Track struct {
		StateFile string `yaml:"state_file"`
	} `yaml:"track"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
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
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("SYMBOL"); v != "" {
		cfg.DataSource.Symbol = v
	}
	if v := os.Getenv("START_DATE"); v != "" {
		cfg.DataSource.StartDate = v
	}
	if v := os.Getenv("HMM_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.HMM.Seed = seed
		}
	}
	if v := os.Getenv("CRON_WEEKLY"); v != "" {
		cfg.Schedule.WeeklyCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "yahoo"
	}
	if cfg.DataSource.Symbol == "" {
		cfg.DataSource.Symbol = "AAPL"
	}
	if cfg.DataSource.StartDate == "" {
		cfg.DataSource.StartDate = "2015-01-01"
	}
	if cfg.Schedule.WeeklyCron == "" {
		// Friday 22:30, after US market close
		cfg.Schedule.WeeklyCron = "0 30 22 * * 5"
	}
	if cfg.HMM.MaxIterations == 0 {
		cfg.HMM.MaxIterations = 10000
	}
	if cfg.HMM.Tolerance == 0 {
		cfg.HMM.Tolerance = 1e-6
	}
	if cfg.HMM.Seed == 0 {
		cfg.HMM.Seed = 2606
	}
	if cfg.HMM.Epsilon == 0 {
		cfg.HMM.Epsilon = 1e-6
	}
	if cfg.HMM.Covariance == "" {
		cfg.HMM.Covariance = "full"
	}
	if cfg.Track.StateFile == "" {
		cfg.Track.StateFile = "data/track_state.json"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/regime_sentinel.db"
	}

	return cfg, nil
}

// StartTime parses the configured start date.
func (c *Config) StartTime() (time.Time, error) {
	t, err := time.Parse("2006-01-02", c.DataSource.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse start_date %q: %w", c.DataSource.StartDate, err)
	}
	return t, nil
}

// Validate checks that all required fields are set and consistent.
// Telegram credentials are only required when bot mode is requested.
func (c *Config) Validate(botMode bool) error {
	if botMode {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required in bot mode")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required in bot mode")
		}
	}
	switch c.DataSource.Provider {
	case "yahoo", "stooq", "mock":
	default:
		return fmt.Errorf("data_source.provider must be yahoo, stooq or mock, got %q", c.DataSource.Provider)
	}
	if _, err := c.StartTime(); err != nil {
		return err
	}
	if c.HMM.MaxIterations < 1 {
		return fmt.Errorf("hmm.max_iterations must be positive")
	}
	if c.HMM.Tolerance <= 0 {
		return fmt.Errorf("hmm.tolerance must be positive")
	}
	if c.HMM.Epsilon <= 0 {
		return fmt.Errorf("hmm.epsilon must be positive")
	}
	switch c.HMM.Covariance {
	case "full", "diagonal":
	default:
		return fmt.Errorf("hmm.covariance must be full or diagonal, got %q", c.HMM.Covariance)
	}
	return nil
}
