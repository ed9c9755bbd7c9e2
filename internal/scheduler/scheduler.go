// Package scheduler runs the periodic tier reassessment on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/kkkkikiki/loyalty/internal/config"
	"github.com/kkkkikiki/loyalty/internal/service"
)

// Reassessor is the batch job the scheduler triggers
type Reassessor interface {
	ReassessAllCustomers(ctx context.Context) (service.ReassessResult, error)
}

// Scheduler triggers ReassessAllCustomers on a cron schedule. A run that is
// still going when the next one is due causes the next one to be skipped.
type Scheduler struct {
	cron       *cron.Cron
	reassessor Reassessor
	cfg        config.ReassessConfig
	log        *zap.Logger

	// base is cancelled by Stop so an in-flight run winds down
	base     context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
}

// New parses the schedule and prepares the cron runner without starting it
func New(cfg config.ReassessConfig, reassessor Reassessor, log *zap.Logger) (*Scheduler, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(cfg.Schedule); err != nil {
		return nil, fmt.Errorf("invalid reassessment schedule %q: %w", cfg.Schedule, err)
	}

	cronLog := cronLogger{log: log.Sugar()}
	c := cron.New(
		cron.WithParser(parser),
		cron.WithLocation(time.UTC),
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)

	base, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:       c,
		reassessor: reassessor,
		cfg:        cfg,
		log:        log,
		base:       base,
		cancel:     cancel,
	}
	if _, err := c.AddFunc(cfg.Schedule, s.run); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to register reassessment job: %w", err)
	}
	return s, nil
}

// Start begins firing the job. It does nothing when reassessment is disabled.
func (s *Scheduler) Start() {
	if !s.cfg.Enabled {
		s.log.Info("scheduled reassessment disabled")
		return
	}
	s.cron.Start()
	s.log.Info("scheduled reassessment started",
		zap.String("schedule", s.cfg.Schedule),
		zap.Duration("timeout", s.cfg.Timeout))
}

// Stop cancels any running reassessment and waits for it to return or for
// ctx to expire. Safe to call multiple times.
func (s *Scheduler) Stop(ctx context.Context) {
	s.stopOnce.Do(func() {
		s.cancel()
		select {
		case <-s.cron.Stop().Done():
			s.log.Info("scheduled reassessment stopped")
		case <-ctx.Done():
			s.log.Warn("scheduled reassessment did not stop in time", zap.Error(ctx.Err()))
		}
	})
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(s.base, s.cfg.Timeout)
	defer cancel()

	s.log.Info("scheduled reassessment starting")
	result, err := s.reassessor.ReassessAllCustomers(ctx)
	if err != nil {
		s.log.Error("scheduled reassessment failed",
			zap.Int("processed", result.Processed),
			zap.Int("changed", result.Changed),
			zap.Int("failed", result.Failed),
			zap.Error(err))
		return
	}
	s.log.Info("scheduled reassessment completed",
		zap.Int("processed", result.Processed),
		zap.Int("changed", result.Changed),
		zap.Int("failed", result.Failed))
}

// cronLogger routes cron's own messages to zap
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
