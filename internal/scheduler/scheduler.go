package scheduler

import (
	"context"
	"time"

	"github.com/anonto42/wingit/backend/pkg/metrics"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is one unit of periodic work.
type Job func(ctx context.Context) error

// Scheduler runs jobs on cron schedules (minute precision, no seconds
// field). A failing or panicking job is logged and retried on its next
// tick.
type Scheduler struct {
	cron *cron.Cron
	log  *zap.Logger
	ctx  context.Context
	stop context.CancelFunc
}

func New(log *zap.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(cron.WithChain(cron.Recover(cronLogger{log.Sugar()}))),
		log:  log,
		ctx:  ctx,
		stop: cancel,
	}
}

// Add registers a named job, e.g. Add("retention", "@daily", job).
func (s *Scheduler) Add(name, schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() { s.run(name, job) })
	if err != nil {
		return err
	}
	s.log.Info("scheduled job", zap.String("job", name), zap.String("schedule", schedule))
	return nil
}

func (s *Scheduler) run(name string, job Job) {
	start := time.Now()
	err := job(s.ctx)
	metrics.RecordJobRun(name, err == nil)
	if err != nil {
		s.log.Error("job failed", zap.String("job", name), zap.Duration("duration", time.Since(start)), zap.Error(err))
		return
	}
	s.log.Info("job finished", zap.String("job", name), zap.Duration("duration", time.Since(start)))
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop cancels running jobs' context and waits for them to return or for
// ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	s.stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out")
	}
}

type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
