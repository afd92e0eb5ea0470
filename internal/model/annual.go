package model

// YearState tracks the lifecycle of one (ticker, year) fetch.
type YearState string

const (
	YearPending YearState = "PENDING"
	YearFetched YearState = "FETCHED"
	YearFailed  YearState = "FAILED"
)

// AnnualData holds the candles of one ticker for one calendar year.
// Data stays nil until the fetch completes.
type AnnualData struct {
	Ticker string
	Year   int
	Data   []Candle
	State  YearState
	Err    error
}

// NewAnnualData creates a pending AnnualData.
func NewAnnualData(ticker string, year int) *AnnualData {
	return &AnnualData{Ticker: ticker, Year: year, State: YearPending}
}

// HasData reports whether the year produced at least one record.
func (a *AnnualData) HasData() bool {
	return a != nil && len(a.Data) > 0
}
