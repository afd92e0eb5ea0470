package collector

import (
	"context"
	"fmt"

	"CoinArchive/internal/model"
)

// Fetcher retrieves one window of candles from a fully-formed request URL.
type Fetcher interface {
	FetchCandles(ctx context.Context, url string) ([]model.Candle, error)
	Name() string
}

// TransportError means the request never produced a response
// (DNS, connection refused, reset, timeout).
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// MalformedDataError means the upstream answered but the body is not a JSON array.
type MalformedDataError struct {
	URL    string
	Status int
	Err    error
}

func (e *MalformedDataError) Error() string {
	return fmt.Sprintf("upstream returned malformed data for %s (status %d): %v", e.URL, e.Status, e.Err)
}

func (e *MalformedDataError) Unwrap() error { return e.Err }
