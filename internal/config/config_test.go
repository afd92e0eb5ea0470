package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"COINPAPRIKA_BASE_URL", "REQUEST_DELAY", "HTTP_TIMEOUT", "HTTPS_PROXY", "TICKERS",
	"START_YEAR", "END_YEAR", "OUTPUT_DIR", "SQLITE_PATH", "SQLITE_DISABLED", "FETCH_CRON",
	"LOG_LEVEL", "LOG_FORMAT", "LOG_PATH",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://api.coinpaprika.com/v1/coins", cfg.API.BaseURL)
	assert.Equal(t, 120*time.Millisecond, cfg.API.RequestDelay)
	assert.Zero(t, cfg.API.Timeout)
	assert.Equal(t, []string{"eth-ethereum", "btc-bitcoin", "ltc-litecoin"}, cfg.Run.Tickers)
	assert.Equal(t, []int{2013, 2014, 2015, 2016, 2017, 2018, 2019}, cfg.Years())
	assert.Equal(t, "data", cfg.Output.Dir)
	assert.Equal(t, "data/fetch_history.db", cfg.Database.SQLitePath)
	assert.Empty(t, cfg.Schedule.Cron)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_YAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
api:
  base_url: http://localhost:9000/v1/coins
  request_delay: 250ms
  timeout: 10s
run:
  tickers: [btc-bitcoin]
  start_year: 2017
  end_year: 2018
output:
  dir: out
schedule:
  cron: "0 0 3 * * *"
log:
  format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "http://localhost:9000/v1/coins", cfg.API.BaseURL)
	assert.Equal(t, 250*time.Millisecond, cfg.API.RequestDelay)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, []string{"btc-bitcoin"}, cfg.Run.Tickers)
	assert.Equal(t, []int{2017, 2018}, cfg.Years())
	assert.Equal(t, "out", cfg.Output.Dir)
	assert.Equal(t, "0 0 3 * * *", cfg.Schedule.Cron)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
run:
  tickers: [btc-bitcoin]
  start_year: 2017
`)
	t.Setenv("TICKERS", " eth-ethereum , ,ltc-litecoin")
	t.Setenv("START_YEAR", "2015")
	t.Setenv("END_YEAR", "2016")
	t.Setenv("REQUEST_DELAY", "1s")
	t.Setenv("OUTPUT_DIR", "/tmp/candles")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"eth-ethereum", "ltc-litecoin"}, cfg.Run.Tickers)
	assert.Equal(t, []int{2015, 2016}, cfg.Years())
	assert.Equal(t, time.Second, cfg.API.RequestDelay)
	assert.Equal(t, "/tmp/candles", cfg.Output.Dir)
}

func TestLoad_DisableHistory(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeConfig(t, `
database:
  sqlite_path: custom.db
  disabled: true
`))
	require.NoError(t, err)
	assert.True(t, cfg.Database.Disabled)
	assert.Empty(t, cfg.Database.SQLitePath)

	t.Setenv("SQLITE_DISABLED", "true")
	cfg, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Database.SQLitePath)

	t.Setenv("SQLITE_DISABLED", "false")
	cfg, err = Load(writeConfig(t, "database:\n  disabled: true\n"))
	require.NoError(t, err)
	assert.Equal(t, "data/fetch_history.db", cfg.Database.SQLitePath)

	t.Setenv("SQLITE_DISABLED", "maybe")
	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_BadInput(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeConfig(t, "run: [unclosed"))
	assert.Error(t, err)

	t.Setenv("START_YEAR", "twenty")
	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	base := func() *Config {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"no tickers", func(c *Config) { c.Run.Tickers = nil }},
		{"blank ticker", func(c *Config) { c.Run.Tickers = []string{"btc-bitcoin", " "} }},
		{"inverted years", func(c *Config) { c.Run.StartYear, c.Run.EndYear = 2019, 2013 }},
		{"negative delay", func(c *Config) { c.API.RequestDelay = -time.Second }},
		{"no base url", func(c *Config) { c.API.BaseURL = "" }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
	}
	for _, tt := range tests {
		cfg := base()
		tt.mutate(cfg)
		assert.Error(t, cfg.Validate(), tt.name)
	}
}
