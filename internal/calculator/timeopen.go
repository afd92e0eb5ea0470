package calculator

import (
	"errors"
	"fmt"
	"time"

	"CoinArchive/internal/model"

	"github.com/tidwall/gjson"
)

// OpenTime reads the time_open field of a candle.
func OpenTime(c model.Candle) (time.Time, error) {
	r := gjson.GetBytes(c, "time_open")
	if !r.Exists() || r.Type != gjson.String {
		return time.Time{}, errors.New("candle has no time_open string")
	}
	t, err := time.Parse(time.RFC3339, r.Str)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time_open %q: %w", r.Str, err)
	}
	return t.UTC(), nil
}

// OpenYear returns the UTC calendar year of a candle's time_open.
func OpenYear(c model.Candle) (int, error) {
	t, err := OpenTime(c)
	if err != nil {
		return 0, err
	}
	return t.Year(), nil
}

// YearSpan returns the years of the first and last candle of a series.
func YearSpan(candles []model.Candle) (start, end int, err error) {
	if len(candles) == 0 {
		return 0, 0, errors.New("no candles provided")
	}
	if start, err = OpenYear(candles[0]); err != nil {
		return 0, 0, fmt.Errorf("first candle: %w", err)
	}
	if end, err = OpenYear(candles[len(candles)-1]); err != nil {
		return 0, 0, fmt.Errorf("last candle: %w", err)
	}
	return start, end, nil
}
