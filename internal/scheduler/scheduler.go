package scheduler

import (
	"context"
	"fmt"
	"sync"

	"CoinArchive/internal/model"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler triggers runs on a cron schedule. Runs never overlap.
type Scheduler struct {
	Cron   *cron.Cron
	Runner *Runner
	Ctx    context.Context

	runMu  sync.Mutex
	lastMu sync.Mutex
	last   *model.RunReport
}

// NewScheduler creates a new Scheduler using six-field (with seconds) cron expressions.
func NewScheduler(ctx context.Context, runner *Runner) *Scheduler {
	return &Scheduler{
		Cron:   cron.New(cron.WithSeconds()),
		Runner: runner,
		Ctx:    ctx,
	}
}

// Register adds the fetch task under the given cron expression.
func (s *Scheduler) Register(expr string) error {
	if _, err := s.Cron.AddFunc(expr, s.fetchTask); err != nil {
		return fmt.Errorf("register fetch task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	logrus.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running fetch to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	logrus.Info("scheduler stopped")
}

// RunNow executes a run immediately, waiting for any in-progress run first.
func (s *Scheduler) RunNow() *model.RunReport {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.run()
}

// LastReport returns the report of the most recent completed run, if any.
func (s *Scheduler) LastReport() *model.RunReport {
	s.lastMu.Lock()
	defer s.lastMu.Unlock()
	return s.last
}

func (s *Scheduler) fetchTask() {
	if !s.runMu.TryLock() {
		logrus.Warn("previous run still in progress, skipping scheduled run")
		return
	}
	defer s.runMu.Unlock()
	s.run()
}

func (s *Scheduler) run() *model.RunReport {
	rep := s.Runner.Run(s.Ctx)
	s.lastMu.Lock()
	s.last = rep
	s.lastMu.Unlock()
	return rep
}
