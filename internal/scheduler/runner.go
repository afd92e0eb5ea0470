package scheduler

import (
	"context"
	"errors"
	"time"

	"CoinArchive/internal/archive"
	"CoinArchive/internal/calculator"
	"CoinArchive/internal/collector"
	"CoinArchive/internal/logger"
	"CoinArchive/internal/model"
	"CoinArchive/internal/notifier"
	"CoinArchive/internal/recorder"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Runner drives one sequential pass over every ticker and year.
type Runner struct {
	Fetcher  collector.Fetcher
	BaseURL  string
	Archive  *archive.Archive
	Recorder recorder.Recorder
	Tickers  []string
	Years    []int
}

// NewRunner creates a Runner. A nil recorder is replaced with a no-op one.
func NewRunner(fetcher collector.Fetcher, baseURL string, arc *archive.Archive, rec recorder.Recorder, tickers []string, years []int) *Runner {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Runner{
		Fetcher:  fetcher,
		BaseURL:  baseURL,
		Archive:  arc,
		Recorder: rec,
		Tickers:  tickers,
		Years:    years,
	}
}

// Run fetches and persists every (ticker, year) in configured order, one at a
// time, then writes each ticker's combined series. Per-year failures are
// logged and never stop the run; cancellation stops it between steps.
func (r *Runner) Run(ctx context.Context) *model.RunReport {
	rep := &model.RunReport{RunID: uuid.NewString(), StartedAt: time.Now()}
	r.recordRun(rep, false)
	logrus.WithFields(logrus.Fields{"run_id": rep.RunID, "tickers": r.Tickers, "years": len(r.Years)}).
		Infof("run started via %s", r.Fetcher.Name())

	col := collector.NewCollector(r.Fetcher, r.BaseURL, r.Recorder, rep.RunID)
	for _, ticker := range r.Tickers {
		if ctx.Err() != nil {
			break
		}
		rep.Tickers = append(rep.Tickers, r.runTicker(ctx, col, rep.RunID, ticker))
	}

	rep.Cancelled = ctx.Err() != nil
	rep.FinishedAt = time.Now()
	r.recordRun(rep, true)
	logger.InfoBlock(notifier.FormatRunReport(rep))
	return rep
}

func (r *Runner) runTicker(ctx context.Context, col *collector.Collector, runID, ticker string) model.TickerReport {
	tr := model.TickerReport{Ticker: ticker}
	var series []model.Candle

	for _, year := range r.Years {
		if ctx.Err() != nil {
			break
		}
		d := model.NewAnnualData(ticker, year)
		col.FetchData(ctx, d)

		yr := model.YearResult{Year: year, Records: len(d.Data), State: d.State}
		if d.Err != nil {
			yr.Err = d.Err.Error()
		}
		path, err := r.Archive.PersistYear(d)
		if err != nil {
			logrus.WithFields(logrus.Fields{"ticker": ticker, "year": year}).Errorf("persist year: %v", err)
			yr.Err = err.Error()
		} else if path != "" {
			yr.Path = path
			r.recordFile(runID, ticker, path, len(d.Data), "YEAR")
		}
		r.recordYear(runID, d)

		series = append(series, d.Data...)
		tr.Years = append(tr.Years, yr)
	}
	tr.Records = len(series)

	// A cancelled ticker would produce a combined file missing its later years.
	if ctx.Err() != nil {
		return tr
	}

	path, err := r.Archive.PersistSeries(ticker, series)
	if err != nil {
		tr.Err = err.Error()
		if errors.Is(err, archive.ErrEmptySeries) {
			logrus.WithField("ticker", ticker).Errorf("no candle data fetched for %s in any year, combined file not written", ticker)
		} else {
			logrus.WithField("ticker", ticker).Errorf("persist combined series: %v", err)
		}
		return tr
	}
	tr.CombinedPath = path
	r.recordFile(runID, ticker, path, len(series), "SERIES")
	logrus.WithFields(logrus.Fields{"ticker": ticker, "records": len(series), "path": path}).Info("combined series written")
	return tr
}

func (r *Runner) recordRun(rep *model.RunReport, finished bool) {
	evt := &recorder.RunEvent{
		RunID:     rep.RunID,
		StartedAt: rep.StartedAt,
		Tickers:   r.Tickers,
	}
	if len(r.Years) > 0 {
		evt.StartYear, evt.EndYear = r.Years[0], r.Years[len(r.Years)-1]
	}
	if finished {
		evt.FinishedAt = rep.FinishedAt
		evt.OK = rep.OK()
	}
	if err := r.Recorder.RecordRun(evt); err != nil {
		logrus.Errorf("record run: %v", err)
	}
}

func (r *Runner) recordYear(runID string, d *model.AnnualData) {
	evt := &recorder.YearEvent{RunID: runID, Ticker: d.Ticker, Year: d.Year, State: d.State}
	if d.Err != nil {
		evt.Error = d.Err.Error()
	}
	if d.HasData() {
		if s, err := calculator.Summarize(d.Data); err != nil {
			logrus.WithFields(logrus.Fields{"ticker": d.Ticker, "year": d.Year}).Warnf("summarize year: %v", err)
		} else {
			evt.Summary = &s
		}
	}
	if err := r.Recorder.RecordYear(evt); err != nil {
		logrus.Errorf("record year: %v", err)
	}
}

func (r *Runner) recordFile(runID, ticker, path string, records int, kind string) {
	if err := r.Recorder.RecordFile(&recorder.FileEvent{
		RunID: runID, Ticker: ticker, Path: path, Records: records, Kind: kind,
	}); err != nil {
		logrus.Errorf("record file: %v", err)
	}
}
