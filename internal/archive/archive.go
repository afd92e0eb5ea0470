package archive

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"CoinArchive/internal/calculator"
	"CoinArchive/internal/model"
)

// DefaultDir is the output directory relative to the working directory.
const DefaultDir = "data"

// ErrEmptySeries is returned when a ticker's combined series has no records.
var ErrEmptySeries = errors.New("no candle data fetched")

// Archive writes candle series as indented JSON files under Dir.
type Archive struct {
	Dir string
}

// New creates an Archive rooted at dir.
func New(dir string) *Archive {
	if dir == "" {
		dir = DefaultDir
	}
	return &Archive{Dir: dir}
}

// YearFileName returns the base name of a per-year file.
func YearFileName(ticker string, year int) string {
	return fmt.Sprintf("%s-%d-ohlcv", ticker, year)
}

// SeriesFileName returns the base name of a combined multi-year file.
func SeriesFileName(ticker string, yearStart, yearEnd int) string {
	return fmt.Sprintf("%s-%d-%d-ohlcv", ticker, yearStart, yearEnd)
}

// WriteJSON serializes v with 2-space indentation and no HTML escaping to <Dir>/<name>.json,
// replacing any existing file. It returns the written path.
func (a *Archive) WriteJSON(name string, v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("encode %s: %w", name, err)
	}
	data := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	if err := os.MkdirAll(a.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(a.Dir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// PersistYear writes a fetched year to <ticker>-<year>-ohlcv.json.
// Years without data are skipped and return an empty path.
func (a *Archive) PersistYear(d *model.AnnualData) (string, error) {
	if !d.HasData() {
		return "", nil
	}
	return a.WriteJSON(YearFileName(d.Ticker, d.Year), d.Data)
}

// PersistSeries writes a ticker's accumulated candles to
// <ticker>-<yearStart>-<yearEnd>-ohlcv.json, where the years come from the
// time_open of the first and last record.
func (a *Archive) PersistSeries(ticker string, candles []model.Candle) (string, error) {
	if len(candles) == 0 {
		return "", fmt.Errorf("%s: %w", ticker, ErrEmptySeries)
	}
	start, end, err := calculator.YearSpan(candles)
	if err != nil {
		return "", fmt.Errorf("%s: derive year range: %w", ticker, err)
	}
	return a.WriteJSON(SeriesFileName(ticker, start, end), candles)
}
