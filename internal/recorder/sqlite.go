package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists fetch history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logrus.Infof("sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id      TEXT PRIMARY KEY,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER,
			tickers     TEXT,
			start_year  INTEGER,
			end_year    INTEGER,
			ok          INTEGER
		)`,

		`CREATE TABLE IF NOT EXISTS window_fetches (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			run_id    TEXT NOT NULL,
			ticker    TEXT NOT NULL,
			year      INTEGER NOT NULL,
			half      TEXT NOT NULL,
			url       TEXT,
			records   INTEGER,
			status    TEXT,
			error     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_window_run ON window_fetches(run_id)`,

		`CREATE TABLE IF NOT EXISTS year_summaries (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp       INTEGER NOT NULL,
			run_id          TEXT NOT NULL,
			ticker          TEXT NOT NULL,
			year            INTEGER NOT NULL,
			state           TEXT,
			records         INTEGER,
			first_time_open INTEGER,
			last_time_open  INTEGER,
			open            TEXT,
			high            TEXT,
			low             TEXT,
			close           TEXT,
			volume          TEXT,
			error           TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_year_ticker ON year_summaries(ticker, year)`,

		`CREATE TABLE IF NOT EXISTS files (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			run_id    TEXT NOT NULL,
			ticker    TEXT NOT NULL,
			kind      TEXT,
			path      TEXT,
			records   INTEGER
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(evt *RunEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var finished sql.NullInt64
	if !evt.FinishedAt.IsZero() {
		finished = sql.NullInt64{Int64: evt.FinishedAt.Unix(), Valid: true}
	}
	_, err := r.db.Exec(`INSERT INTO runs
		(run_id, started_at, finished_at, tickers, start_year, end_year, ok)
		VALUES (?,?,?,?,?,?,?)
		ON CONFLICT(run_id) DO UPDATE SET
		    finished_at=excluded.finished_at,
		    ok=excluded.ok`,
		evt.RunID, evt.StartedAt.Unix(), finished, strings.Join(evt.Tickers, ","),
		evt.StartYear, evt.EndYear, evt.OK,
	)
	return err
}

func (r *SQLiteRecorder) RecordWindow(evt *WindowEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO window_fetches
		(timestamp, run_id, ticker, year, half, url, records, status, error)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.RunID, evt.Ticker, evt.Year, evt.Half,
		evt.URL, evt.Records, string(evt.Status), evt.Error,
	)
	return err
}

func (r *SQLiteRecorder) RecordYear(evt *YearEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		records                   int
		firstOpen, lastOpen       sql.NullInt64
		open, high, low, cls, vol sql.NullString
	)
	if s := evt.Summary; s != nil {
		records = s.Records
		firstOpen = sql.NullInt64{Int64: s.FirstOpenTime.Unix(), Valid: true}
		lastOpen = sql.NullInt64{Int64: s.LastOpenTime.Unix(), Valid: true}
		open = sql.NullString{String: s.Open.String(), Valid: true}
		high = sql.NullString{String: s.High.String(), Valid: true}
		low = sql.NullString{String: s.Low.String(), Valid: true}
		cls = sql.NullString{String: s.Close.String(), Valid: true}
		vol = sql.NullString{String: s.Volume.String(), Valid: true}
	}

	_, err := r.db.Exec(`INSERT INTO year_summaries
		(timestamp, run_id, ticker, year, state, records,
		 first_time_open, last_time_open, open, high, low, close, volume, error)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.RunID, evt.Ticker, evt.Year, string(evt.State), records,
		firstOpen, lastOpen, open, high, low, cls, vol, evt.Error,
	)
	return err
}

func (r *SQLiteRecorder) RecordFile(evt *FileEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO files
		(timestamp, run_id, ticker, kind, path, records)
		VALUES (?,?,?,?,?,?)`,
		time.Now().Unix(), evt.RunID, evt.Ticker, evt.Kind, evt.Path, evt.Records,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	logrus.Info("closing sqlite recorder")
	return r.db.Close()
}
