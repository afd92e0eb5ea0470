package collector

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"CoinArchive/internal/model"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

// DefaultRequestDelay is the pause taken before every outbound request.
const DefaultRequestDelay = 120 * time.Millisecond

// PaprikaFetcher implements Fetcher against the coinpaprika REST API.
type PaprikaFetcher struct {
	Client       *resty.Client
	RequestDelay time.Duration
}

// NewPaprikaFetcher creates a fetcher with optional proxy support.
// A zero timeout leaves the client without a deadline.
func NewPaprikaFetcher(requestDelay, timeout time.Duration, proxyURL string) *PaprikaFetcher {
	client := resty.New().
		SetTimeout(timeout).
		SetHeaders(map[string]string{
			"Accept":     "application/json",
			"User-Agent": "CoinArchive/1.0",
		})
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}
	return &PaprikaFetcher{Client: client, RequestDelay: requestDelay}
}

func (f *PaprikaFetcher) Name() string { return "coinpaprika" }

// FetchCandles waits for the request delay, then issues one GET.
// The HTTP status is not inspected: any response whose body is a JSON array
// is accepted, anything else is a MalformedDataError.
func (f *PaprikaFetcher) FetchCandles(ctx context.Context, url string) ([]model.Candle, error) {
	if err := Delay(ctx, f.RequestDelay); err != nil {
		return nil, err
	}

	resp, err := f.Client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	return decodeCandles(url, resp.StatusCode(), resp.Body())
}

func decodeCandles(url string, status int, body []byte) ([]model.Candle, error) {
	if !gjson.ValidBytes(body) {
		return nil, &MalformedDataError{URL: url, Status: status, Err: errors.New("body is not valid JSON")}
	}
	if !gjson.ParseBytes(body).IsArray() {
		return nil, &MalformedDataError{URL: url, Status: status, Err: errors.New("body is not a JSON array")}
	}
	candles := []model.Candle{}
	if err := json.Unmarshal(body, &candles); err != nil {
		return nil, &MalformedDataError{URL: url, Status: status, Err: err}
	}
	return candles, nil
}
