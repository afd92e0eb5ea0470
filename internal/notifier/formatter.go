package notifier

import (
	"fmt"
	"strings"
	"time"

	"CoinArchive/internal/model"
)

// FormatRunReport renders a plain-text summary of a finished run.
func FormatRunReport(rep *model.RunReport) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("CoinArchive run %s | %s (took %s)\n",
		rep.RunID, rep.StartedAt.Format("2006-01-02 15:04"), rep.FinishedAt.Sub(rep.StartedAt).Round(time.Millisecond)))

	for i := range rep.Tickers {
		t := &rep.Tickers[i]
		b.WriteString(fmt.Sprintf("%s: %d/%d years with data, %d records", t.Ticker, t.NonEmptyYears(), len(t.Years), t.Records))
		if t.CombinedPath != "" {
			b.WriteString(" -> " + t.CombinedPath)
		}
		b.WriteString("\n")
		for _, y := range t.Years {
			b.WriteString(fmt.Sprintf("  %d: %s\n", y.Year, formatYear(y)))
		}
		if t.Err != "" {
			b.WriteString(fmt.Sprintf("  error: %s\n", t.Err))
		}
	}

	switch {
	case rep.Cancelled:
		b.WriteString("Result: CANCELLED")
	case rep.OK():
		b.WriteString("Result: OK")
	default:
		b.WriteString(fmt.Sprintf("Result: FAILED (%d ticker(s) without data)", tickersWithoutData(rep)))
	}
	return b.String()
}

func formatYear(y model.YearResult) string {
	if y.State == model.YearFailed {
		return "FAILED: " + y.Err
	}
	if y.Records == 0 {
		return "no data"
	}
	s := fmt.Sprintf("%d records", y.Records)
	if y.Path != "" {
		s += " -> " + y.Path
	}
	if y.Err != "" {
		s += " (" + y.Err + ")"
	}
	return s
}

func tickersWithoutData(rep *model.RunReport) int {
	n := 0
	for i := range rep.Tickers {
		if rep.Tickers[i].NonEmptyYears() == 0 {
			n++
		}
	}
	return n
}
