// internal/infra/scheduler/cron_trigger.go
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CronTrigger runs a job once per cron firing instead of looping on an interval.
// Each firing gets a context bounded by the job's Interval.
type CronTrigger struct {
	cronEngine *cron.Cron
	logger     *logrus.Entry

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

func NewCronTrigger(logger *logrus.Entry) *CronTrigger {
	entry := logger.WithField("component", "cron_trigger")
	cronLogger := cron.PrintfLogger(entry)
	return &CronTrigger{
		cronEngine: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		logger: entry,
		ctx:    context.Background(),
	}
}

// Register adds job under a standard 5-field cron spec, e.g. "*/1 * * * *".
func (s *CronTrigger) Register(spec string, job Job) error {
	_, err := s.cronEngine.AddFunc(spec, func() {
		logCtx := s.logger.WithField("job", job.Name())
		parent := s.baseContext()
		if parent.Err() != nil {
			return
		}
		ctx, cancel := context.WithTimeout(parent, job.Interval())
		defer cancel()
		if err := runIteration(ctx, job); err != nil {
			logCtx.WithError(err).Error("Triggered job failed")
		}
	})
	if err != nil {
		return fmt.Errorf("could not add cron job %s with spec %q: %w", job.Name(), spec, err)
	}
	s.logger.WithFields(logrus.Fields{"job": job.Name(), "spec": spec}).Info("Cron job registered")
	return nil
}

// Start begins firing. Once ctx is cancelled, firings are skipped.
func (s *CronTrigger) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()
	s.cronEngine.Start()
	s.logger.Info("Cron trigger started")
}

// Stop halts the engine and waits for running jobs.
func (s *CronTrigger) Stop() {
	s.logger.Info("Stopping cron trigger...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	s.logger.Info("Cron trigger gracefully stopped")
}

func (s *CronTrigger) baseContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}
