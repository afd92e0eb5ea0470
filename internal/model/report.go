package model

import "time"

// YearResult is the outcome of one (ticker, year) step of a run.
type YearResult struct {
	Year    int
	Records int
	State   YearState
	Path    string // empty when nothing was written
	Err     string
}

// TickerReport collects the year results and combined file of one ticker.
type TickerReport struct {
	Ticker       string
	Years        []YearResult
	Records      int
	CombinedPath string
	Err          string
}

// NonEmptyYears counts the years that produced at least one record.
func (t *TickerReport) NonEmptyYears() int {
	n := 0
	for _, y := range t.Years {
		if y.Records > 0 {
			n++
		}
	}
	return n
}

// RunReport is the outcome of one full run over all tickers.
type RunReport struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Tickers    []TickerReport
	Cancelled  bool
}

// OK reports whether every ticker produced at least one non-empty year.
func (r *RunReport) OK() bool {
	if r == nil || r.Cancelled || len(r.Tickers) == 0 {
		return false
	}
	for i := range r.Tickers {
		if r.Tickers[i].NonEmptyYears() == 0 {
			return false
		}
	}
	return true
}
