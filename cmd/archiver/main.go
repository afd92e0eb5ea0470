package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"CoinArchive/internal/archive"
	"CoinArchive/internal/collector"
	"CoinArchive/internal/config"
	"CoinArchive/internal/logger"
	"CoinArchive/internal/recorder"
	"CoinArchive/internal/scheduler"

	"github.com/sirupsen/logrus"
)

const (
	exitOK      = 0
	exitNoData  = 1
	exitStartup = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logrus.Errorf("load config: %v", err)
		return exitStartup
	}
	if err := cfg.Validate(); err != nil {
		logrus.Errorf("config validation: %v", err)
		return exitStartup
	}

	logFile, err := logger.Setup(cfg.Log.Level, cfg.Log.Format, cfg.Log.Path)
	if err != nil {
		logrus.Errorf("init log file: %v", err)
		return exitStartup
	}
	if logFile != nil {
		defer logFile.Close()
	}
	logrus.Info("CoinArchive starting...")

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			logrus.Warnf("init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	fetcher := collector.NewPaprikaFetcher(cfg.API.RequestDelay, cfg.API.Timeout, cfg.Proxy)
	runner := scheduler.NewRunner(fetcher, cfg.API.BaseURL, archive.New(cfg.Output.Dir), rec, cfg.Run.Tickers, cfg.Years())

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.NewScheduler(ctx, runner)
	if cfg.Schedule.Cron == "" {
		rep := sched.RunNow()
		if !rep.OK() {
			return exitNoData
		}
		return exitOK
	}

	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		logrus.Errorf("register cron task: %v", err)
		return exitStartup
	}
	sched.Start()
	logrus.Infof("CoinArchive is running on schedule %q. Press Ctrl+C to stop.", cfg.Schedule.Cron)

	<-ctx.Done()
	logrus.Info("shutdown signal received, stopping...")
	sched.Stop()

	if rep := sched.LastReport(); rep != nil && !rep.OK() {
		return exitNoData
	}
	return exitOK
}
