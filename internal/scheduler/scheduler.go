package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"StockAnalyzer/internal/collector"
	"StockAnalyzer/internal/logger"
)

// FeedFunc runs one synchronous feed batch.
type FeedFunc func(ctx context.Context) collector.Report

// Scheduler runs feed batches on a cron schedule. A tick that fires while
// the previous batch is still running is skipped.
type Scheduler struct {
	Cron     *cron.Cron
	Feed     FeedFunc
	OnReport func(collector.Report) // optional
	Ctx      context.Context
	Log      *zap.Logger

	job  cron.Job
	runs atomic.Int64
}

// NewScheduler creates a Scheduler whose cron specs carry a seconds field
// and are evaluated in loc.
func NewScheduler(ctx context.Context, feed FeedFunc, loc *time.Location, log *zap.Logger) *Scheduler {
	log = logger.OrNop(log)
	if loc == nil {
		loc = time.Local
	}
	cl := cronLogger{log.Sugar()}
	s := &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(loc),
			cron.WithLogger(cl),
		),
		Feed: feed,
		Ctx:  ctx,
		Log:  log,
	}
	s.job = cron.NewChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)).Then(cron.FuncJob(s.feedTask))
	return s
}

// Register schedules the feed at spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddJob(spec, s.job); err != nil {
		return fmt.Errorf("register feed task %q: %w", spec, err)
	}
	s.Log.Info("feed task registered", zap.String("cron", spec))
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info("scheduler started")
}

// Stop stops the scheduler and waits for a running batch to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Log.Info("scheduler stopped", zap.Int64("runs", s.runs.Load()))
}

// RunNow executes one batch immediately, subject to the same overlap rule
// as scheduled ticks.
func (s *Scheduler) RunNow() {
	s.job.Run()
}

// Runs returns the number of batches started.
func (s *Scheduler) Runs() int64 { return s.runs.Load() }

func (s *Scheduler) feedTask() {
	if err := s.Ctx.Err(); err != nil {
		s.Log.Warn("feed task skipped", zap.Error(err))
		return
	}
	n := s.runs.Add(1)
	s.Log.Info("running feed task", zap.Int64("run", n))
	rep := s.Feed(s.Ctx)
	if rep.AllFailed() {
		s.Log.Error("feed task failed for every symbol", zap.String("run_id", rep.RunID))
	}
	if s.OnReport != nil {
		s.OnReport(rep)
	}
}

// cronLogger adapts zap to cron's logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
