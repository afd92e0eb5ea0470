package recorder

import (
	"time"

	"CoinArchive/internal/model"
)

// WindowStatus is the outcome of one half-year request.
type WindowStatus string

const (
	WindowOK             WindowStatus = "OK"
	WindowTransportError WindowStatus = "TRANSPORT_ERROR"
	WindowMalformed      WindowStatus = "MALFORMED"
	WindowCancelled      WindowStatus = "CANCELLED"
)

// RunEvent marks the start or end of a run.
type RunEvent struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time // zero while the run is in progress
	Tickers    []string
	StartYear  int
	EndYear    int
	OK         bool
}

// WindowEvent records one half-year request.
type WindowEvent struct {
	RunID   string
	Ticker  string
	Year    int
	Half    string // "H1" or "H2"
	URL     string
	Records int
	Status  WindowStatus
	Error   string
}

// YearEvent records the outcome of one (ticker, year).
type YearEvent struct {
	RunID   string
	Ticker  string
	Year    int
	State   model.YearState
	Summary *model.PeriodSummary // nil when the year has no data
	Error   string
}

// FileEvent records one JSON file written to the archive.
type FileEvent struct {
	RunID   string
	Ticker  string
	Path    string
	Records int
	Kind    string // "YEAR" or "SERIES"
}

// Recorder persists fetch history for later inspection.
type Recorder interface {
	RecordRun(evt *RunEvent) error
	RecordWindow(evt *WindowEvent) error
	RecordYear(evt *YearEvent) error
	RecordFile(evt *FileEvent) error
	Close() error
}
