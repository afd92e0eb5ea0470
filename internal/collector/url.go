package collector

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"CoinArchive/internal/model"
)

// DefaultBaseURL is the coinpaprika coins endpoint.
const DefaultBaseURL = "https://api.coinpaprika.com/v1/coins"

// isoLayout matches JavaScript's Date.prototype.toISOString output.
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// HalfYearWindow returns the first and last calendar day (UTC midnight) of a half.
// The end is day 0 of the month following the window, so the second half ends
// on December 31 and never spills into January of the next year.
func HalfYearWindow(year int, half model.Half) (start, end time.Time) {
	first := half.FirstMonth()
	start = time.Date(year, first, 1, 0, 0, 0, 0, time.UTC)
	end = time.Date(year, first+6, 0, 0, 0, 0, 0, time.UTC)
	return start, end
}

// FormatISO renders t in UTC with millisecond precision.
func FormatISO(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// BuildURL renders the historical OHLCV request URL for one half-year window.
func BuildURL(baseURL, ticker string, year int, half model.Half) string {
	start, end := HalfYearWindow(year, half)
	return fmt.Sprintf("%s/%s/ohlcv/historical?start=%s&end=%s",
		strings.TrimRight(baseURL, "/"), url.PathEscape(ticker), FormatISO(start), FormatISO(end))
}
