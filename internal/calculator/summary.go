package calculator

import (
	"errors"
	"fmt"

	"CoinArchive/internal/model"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// Summarize folds a candle series into one bar: open of the first record,
// close of the last, extreme high/low and the summed volume.
// Records missing a numeric field are skipped for that field only.
func Summarize(candles []model.Candle) (model.PeriodSummary, error) {
	if len(candles) == 0 {
		return model.PeriodSummary{}, errors.New("no candles provided")
	}
	s := model.PeriodSummary{Records: len(candles)}

	first, err := OpenTime(candles[0])
	if err != nil {
		return s, fmt.Errorf("first candle: %w", err)
	}
	last, err := OpenTime(candles[len(candles)-1])
	if err != nil {
		return s, fmt.Errorf("last candle: %w", err)
	}
	s.FirstOpenTime, s.LastOpenTime = first, last

	if v, ok := number(candles[0], "open"); ok {
		s.Open = v
	}
	if v, ok := number(candles[len(candles)-1], "close"); ok {
		s.Close = v
	}

	var haveHigh, haveLow bool
	for _, c := range candles {
		if h, ok := number(c, "high"); ok && (!haveHigh || h.GreaterThan(s.High)) {
			s.High, haveHigh = h, true
		}
		if l, ok := number(c, "low"); ok && (!haveLow || l.LessThan(s.Low)) {
			s.Low, haveLow = l, true
		}
		if v, ok := number(c, "volume"); ok {
			s.Volume = s.Volume.Add(v)
		}
	}
	return s, nil
}

// number reads a numeric field, accepting both JSON numbers and numeric strings.
func number(c model.Candle, field string) (decimal.Decimal, bool) {
	r := gjson.GetBytes(c, field)
	var text string
	switch r.Type {
	case gjson.Number:
		text = r.Raw
	case gjson.String:
		text = r.Str
	default:
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
