package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Candle is one OHLCV record exactly as returned by the upstream API.
// Only time_open and the price/volume fields are ever read from it.
type Candle = json.RawMessage

// Half selects one of the two six-month request windows of a year.
type Half int

const (
	FirstHalf  Half = iota // January to June
	SecondHalf             // July to December
)

func (h Half) String() string {
	if h == SecondHalf {
		return "H2"
	}
	return "H1"
}

// FirstMonth returns the first calendar month covered by the half.
func (h Half) FirstMonth() time.Month {
	if h == SecondHalf {
		return time.July
	}
	return time.January
}

// PeriodSummary condenses a run of candles into a single bar.
type PeriodSummary struct {
	Records       int
	FirstOpenTime time.Time
	LastOpenTime  time.Time
	Open          decimal.Decimal
	High          decimal.Decimal
	Low           decimal.Decimal
	Close         decimal.Decimal
	Volume        decimal.Decimal
}
