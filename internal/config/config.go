package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	API struct {
		BaseURL      string        `yaml:"base_url"`
		RequestDelay time.Duration `yaml:"request_delay"`
		Timeout      time.Duration `yaml:"timeout"`
	} `yaml:"api"`
	Run struct {
		Tickers   []string `yaml:"tickers"`
		StartYear int      `yaml:"start_year"`
		EndYear   int      `yaml:"end_year"`
	} `yaml:"run"`
	Output struct {
		Dir string `yaml:"dir"`
	} `yaml:"output"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
		Disabled   bool   `yaml:"disabled"`
	} `yaml:"database"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Path   string `yaml:"path"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

var (
	DefaultTickers   = []string{"eth-ethereum", "btc-bitcoin", "ltc-litecoin"}
	DefaultStartYear = 2013
	DefaultEndYear   = 2019
)

const (
	defaultBaseURL      = "https://api.coinpaprika.com/v1/coins"
	defaultRequestDelay = 120 * time.Millisecond
	defaultOutputDir    = "data"
	defaultSQLitePath   = "data/fetch_history.db"
)

// Load reads config from a YAML file, then .env, then environment variable overrides.
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

	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("COINPAPRIKA_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("REQUEST_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("REQUEST_DELAY: %w", err)
		}
		c.API.RequestDelay = d
	}
	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("HTTP_TIMEOUT: %w", err)
		}
		c.API.Timeout = d
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("TICKERS"); v != "" {
		c.Run.Tickers = splitList(v)
	}
	if v := os.Getenv("START_YEAR"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("START_YEAR: %w", err)
		}
		c.Run.StartYear = y
	}
	if v := os.Getenv("END_YEAR"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("END_YEAR: %w", err)
		}
		c.Run.EndYear = y
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		c.Output.Dir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("SQLITE_DISABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SQLITE_DISABLED: %w", err)
		}
		c.Database.Disabled = b
	}
	if v := os.Getenv("FETCH_CRON"); v != "" {
		c.Schedule.Cron = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("LOG_PATH"); v != "" {
		c.Log.Path = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaultBaseURL
	}
	if c.API.RequestDelay == 0 {
		c.API.RequestDelay = defaultRequestDelay
	}
	if len(c.Run.Tickers) == 0 {
		c.Run.Tickers = append([]string(nil), DefaultTickers...)
	}
	if c.Run.StartYear == 0 {
		c.Run.StartYear = DefaultStartYear
	}
	if c.Run.EndYear == 0 {
		c.Run.EndYear = DefaultEndYear
	}
	if c.Output.Dir == "" {
		c.Output.Dir = defaultOutputDir
	}
	// An empty path means the fetch history recorder is off.
	if c.Database.Disabled {
		c.Database.SQLitePath = ""
	} else if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = defaultSQLitePath
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Years expands the configured year range in ascending order.
func (c *Config) Years() []int {
	if c.Run.EndYear < c.Run.StartYear {
		return nil
	}
	years := make([]int, 0, c.Run.EndYear-c.Run.StartYear+1)
	for y := c.Run.StartYear; y <= c.Run.EndYear; y++ {
		years = append(years, y)
	}
	return years
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.API.RequestDelay < 0 {
		return fmt.Errorf("api.request_delay must not be negative")
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}
	if len(c.Run.Tickers) == 0 {
		return fmt.Errorf("run.tickers must not be empty")
	}
	for i, t := range c.Run.Tickers {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("run.tickers[%d] is blank", i)
		}
	}
	if c.Run.StartYear > c.Run.EndYear {
		return fmt.Errorf("run.start_year %d is after run.end_year %d", c.Run.StartYear, c.Run.EndYear)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
