package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"CoinArchive/internal/model"
	"CoinArchive/internal/recorder"

	"github.com/sirupsen/logrus"
)

// MockFetcher returns canned windows keyed by URL for development and testing.
// URLs with no entry return an empty array.
type MockFetcher struct {
	Windows map[string][]model.Candle
	Errors  map[string]error

	mu    sync.Mutex
	Calls []string
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchCandles(ctx context.Context, url string) ([]model.Candle, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, url)
	m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := m.Errors[url]; ok {
		return nil, err
	}
	if data, ok := m.Windows[url]; ok {
		return data, nil
	}
	return []model.Candle{}, nil
}

// Collector fetches a full year as two sequential half-year windows.
type Collector struct {
	Fetcher  Fetcher
	BaseURL  string
	Recorder recorder.Recorder
	RunID    string
}

// NewCollector creates a Collector bound to one run.
func NewCollector(fetcher Fetcher, baseURL string, rec recorder.Recorder, runID string) *Collector {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Collector{Fetcher: fetcher, BaseURL: baseURL, Recorder: rec, RunID: runID}
}

// FetchData fills a.Data with the first half followed by the second half.
// A transport error on a half drops that half only. Malformed upstream data
// or cancellation marks the whole year failed with empty data.
func (c *Collector) FetchData(ctx context.Context, a *model.AnnualData) {
	data := []model.Candle{}
	for _, half := range []model.Half{model.FirstHalf, model.SecondHalf} {
		candles, err := c.fetchWindow(ctx, a, half)
		if err != nil {
			a.Data = []model.Candle{}
			a.State = model.YearFailed
			a.Err = fmt.Errorf("fetch %s %d %s: %w", a.Ticker, a.Year, half, err)
			return
		}
		data = append(data, candles...)
	}
	a.Data = data
	a.State = model.YearFetched
	a.Err = nil
	logrus.WithFields(logrus.Fields{"ticker": a.Ticker, "year": a.Year, "records": len(data)}).
		Infof("got %s data for %d, %d records", a.Ticker, a.Year, len(data))
}

func (c *Collector) fetchWindow(ctx context.Context, a *model.AnnualData, half model.Half) ([]model.Candle, error) {
	url := BuildURL(c.BaseURL, a.Ticker, a.Year, half)
	candles, err := c.Fetcher.FetchCandles(ctx, url)

	evt := &recorder.WindowEvent{
		RunID:  c.RunID,
		Ticker: a.Ticker,
		Year:   a.Year,
		Half:   half.String(),
		URL:    url,
		Status: recorder.WindowOK,
	}
	fields := logrus.Fields{"ticker": a.Ticker, "year": a.Year, "half": half.String(), "url": url}

	var transportErr *TransportError
	switch {
	case err == nil:
		evt.Records = len(candles)
	case ctx.Err() != nil:
		evt.Status = recorder.WindowCancelled
		evt.Error = ctx.Err().Error()
		err = ctx.Err()
	case errors.As(err, &transportErr):
		logrus.WithFields(fields).Warnf("transport error, continuing with empty window: %v", transportErr.Err)
		evt.Status = recorder.WindowTransportError
		evt.Error = err.Error()
		candles, err = []model.Candle{}, nil
	default:
		logrus.WithFields(fields).Errorf("window fetch failed: %v", err)
		evt.Status = recorder.WindowMalformed
		evt.Error = err.Error()
	}

	if recErr := c.Recorder.RecordWindow(evt); recErr != nil {
		logrus.WithFields(fields).Errorf("record window: %v", recErr)
	}
	if err != nil {
		return nil, err
	}
	return candles, nil
}
