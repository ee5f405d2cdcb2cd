// internal/infra/scheduler/runner.go
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	ErrAlreadyStarted = errors.New("job runner already started")
	ErrStopTimeout    = errors.New("job runner stop timed out")
)

const defaultFailureCooldown = 30 * time.Second

// JobRunner starts each registered job as its own supervised loop and
// stops them all through one shared cancellation.
type JobRunner struct {
	mu       sync.Mutex
	jobs     []Job
	started  bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	logger   *logrus.Entry
	cooldown time.Duration
}

// NewJobRunner creates a runner. cooldown is the first wait after a failed
// iteration; it doubles per consecutive failure and never exceeds the job interval.
func NewJobRunner(logger *logrus.Entry, cooldown time.Duration) *JobRunner {
	if cooldown <= 0 {
		cooldown = defaultFailureCooldown
	}
	return &JobRunner{
		logger:   logger.WithField("component", "job_runner"),
		cooldown: cooldown,
	}
}

// Add registers a job. It fails with ErrAlreadyStarted once Start was called.
func (r *JobRunner) Add(job Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return fmt.Errorf("cannot add job %s: %w", job.Name(), ErrAlreadyStarted)
	}
	r.jobs = append(r.jobs, job)
	return nil
}

// Start launches every registered job. Cancelling ctx or calling Stop ends them.
func (r *JobRunner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return ErrAlreadyStarted
	}
	r.started = true

	ctx, r.cancel = context.WithCancel(ctx)
	for _, job := range r.jobs {
		r.wg.Add(1)
		go r.supervise(ctx, job)
	}
	r.logger.Infof("Job runner started with %d jobs", len(r.jobs))
	return nil
}

// Stop cancels all jobs and waits up to timeout for their current iteration
// to finish. On timeout it returns ErrStopTimeout without waiting further.
func (r *JobRunner) Stop(timeout time.Duration) error {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	if cancel == nil {
		return nil
	}

	r.logger.Info("Stopping job runner...")
	cancel()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("Job runner gracefully stopped")
		return nil
	case <-time.After(timeout):
		r.logger.Warnf("Job runner did not stop within %s", timeout)
		return ErrStopTimeout
	}
}

func (r *JobRunner) supervise(ctx context.Context, job Job) {
	defer r.wg.Done()
	logCtx := r.logger.WithField("job", job.Name())
	logCtx.Info("Job started")

	failures := 0
	for ctx.Err() == nil {
		wait := job.Interval()
		if err := runIteration(ctx, job); err != nil {
			if errors.Is(err, ErrUnrecoverable) {
				logCtx.WithError(err).Error("Job stopped on unrecoverable error")
				return
			}
			failures++
			wait = r.backoff(failures, job.Interval())
			logCtx.WithError(err).WithField("retry_in", wait.String()).Error("Job iteration failed")
		} else {
			failures = 0
		}

		if !sleep(ctx, wait) {
			break
		}
	}
	logCtx.Info("Job stopped")
}

// backoff is cooldown * 2^(failures-1), capped at limit.
func (r *JobRunner) backoff(failures int, limit time.Duration) time.Duration {
	d := r.cooldown
	for i := 1; i < failures && d < limit; i++ {
		d *= 2
	}
	if limit > 0 && d > limit {
		d = limit
	}
	return d
}
