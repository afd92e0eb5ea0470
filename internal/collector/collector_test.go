package collector

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"CoinArchive/internal/model"
	"CoinArchive/internal/recorder"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBase = "http://stub/v1/coins"

func TestMain(m *testing.M) {
	logrus.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type captureRecorder struct {
	recorder.NoopRecorder
	windows []recorder.WindowEvent
}

func (c *captureRecorder) RecordWindow(evt *recorder.WindowEvent) error {
	c.windows = append(c.windows, *evt)
	return nil
}

func raw(s ...string) []model.Candle {
	out := make([]model.Candle, len(s))
	for i, v := range s {
		out[i] = model.Candle(v)
	}
	return out
}

func strs(c []model.Candle) []string {
	out := make([]string, len(c))
	for i, v := range c {
		out[i] = string(v)
	}
	return out
}

func TestFetchData_ConcatenatesHalvesInOrder(t *testing.T) {
	h1 := BuildURL(testBase, "btc-bitcoin", 2013, model.FirstHalf)
	h2 := BuildURL(testBase, "btc-bitcoin", 2013, model.SecondHalf)
	f := &MockFetcher{Windows: map[string][]model.Candle{
		h1: raw(`{"time_open":"2013-01-01T00:00:00.000Z"}`, `{"time_open":"2013-01-02T00:00:00.000Z"}`),
		h2: raw(`{"time_open":"2013-07-01T00:00:00.000Z"}`),
	}}
	rec := &captureRecorder{}
	c := NewCollector(f, testBase, rec, "run-1")

	d := model.NewAnnualData("btc-bitcoin", 2013)
	c.FetchData(context.Background(), d)

	assert.Equal(t, model.YearFetched, d.State)
	assert.NoError(t, d.Err)
	assert.Equal(t, []string{
		`{"time_open":"2013-01-01T00:00:00.000Z"}`,
		`{"time_open":"2013-01-02T00:00:00.000Z"}`,
		`{"time_open":"2013-07-01T00:00:00.000Z"}`,
	}, strs(d.Data))
	assert.Equal(t, []string{h1, h2}, f.Calls, "halves must be requested first then second")

	require.Len(t, rec.windows, 2)
	assert.Equal(t, "H1", rec.windows[0].Half)
	assert.Equal(t, 2, rec.windows[0].Records)
	assert.Equal(t, recorder.WindowOK, rec.windows[1].Status)
	assert.Equal(t, "run-1", rec.windows[1].RunID)
}

func TestFetchData_TransportErrorDropsOnlyThatHalf(t *testing.T) {
	h1 := BuildURL(testBase, "eth-ethereum", 2016, model.FirstHalf)
	h2 := BuildURL(testBase, "eth-ethereum", 2016, model.SecondHalf)
	f := &MockFetcher{
		Windows: map[string][]model.Candle{h2: raw(`{"n":2}`)},
		Errors:  map[string]error{h1: &TransportError{URL: h1, Err: errors.New("connection reset")}},
	}
	rec := &captureRecorder{}
	d := model.NewAnnualData("eth-ethereum", 2016)
	NewCollector(f, testBase, rec, "run").FetchData(context.Background(), d)

	assert.Equal(t, model.YearFetched, d.State)
	assert.Equal(t, []string{`{"n":2}`}, strs(d.Data))
	require.Len(t, rec.windows, 2)
	assert.Equal(t, recorder.WindowTransportError, rec.windows[0].Status)
}

func TestFetchData_BothHalvesTransportError(t *testing.T) {
	h1 := BuildURL(testBase, "ltc-litecoin", 2013, model.FirstHalf)
	h2 := BuildURL(testBase, "ltc-litecoin", 2013, model.SecondHalf)
	f := &MockFetcher{Errors: map[string]error{
		h1: &TransportError{URL: h1, Err: errors.New("dns")},
		h2: &TransportError{URL: h2, Err: errors.New("dns")},
	}}
	d := model.NewAnnualData("ltc-litecoin", 2013)
	NewCollector(f, testBase, nil, "run").FetchData(context.Background(), d)

	assert.Equal(t, model.YearFetched, d.State)
	assert.NotNil(t, d.Data)
	assert.Empty(t, d.Data)
	assert.False(t, d.HasData())
}

func TestFetchData_MalformedMarksYearFailed(t *testing.T) {
	h1 := BuildURL(testBase, "btc-bitcoin", 2014, model.FirstHalf)
	h2 := BuildURL(testBase, "btc-bitcoin", 2014, model.SecondHalf)
	f := &MockFetcher{
		Windows: map[string][]model.Candle{h1: raw(`{"n":1}`)},
		Errors:  map[string]error{h2: &MalformedDataError{URL: h2, Status: 429, Err: errors.New("not an array")}},
	}
	rec := &captureRecorder{}
	d := model.NewAnnualData("btc-bitcoin", 2014)
	NewCollector(f, testBase, rec, "run").FetchData(context.Background(), d)

	assert.Equal(t, model.YearFailed, d.State)
	assert.Empty(t, d.Data)
	var malformed *MalformedDataError
	require.True(t, errors.As(d.Err, &malformed))
	assert.Equal(t, h2, malformed.URL)
	require.Len(t, rec.windows, 2)
	assert.Equal(t, recorder.WindowMalformed, rec.windows[1].Status)
}

func TestFetchData_MalformedFirstHalfSkipsSecond(t *testing.T) {
	h1 := BuildURL(testBase, "btc-bitcoin", 2015, model.FirstHalf)
	f := &MockFetcher{Errors: map[string]error{h1: &MalformedDataError{URL: h1, Err: errors.New("bad")}}}
	d := model.NewAnnualData("btc-bitcoin", 2015)
	NewCollector(f, testBase, nil, "run").FetchData(context.Background(), d)

	assert.Equal(t, model.YearFailed, d.State)
	assert.Equal(t, []string{h1}, f.Calls)
}

func TestFetchData_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &captureRecorder{}
	d := model.NewAnnualData("btc-bitcoin", 2013)
	NewCollector(&MockFetcher{}, testBase, rec, "run").FetchData(ctx, d)

	assert.Equal(t, model.YearFailed, d.State)
	assert.ErrorIs(t, d.Err, context.Canceled)
	require.Len(t, rec.windows, 1)
	assert.Equal(t, recorder.WindowCancelled, rec.windows[0].Status)
}
