package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUnrecoverable, when wrapped by an iteration error, ends the job's loop
// instead of retrying it.
var ErrUnrecoverable = errors.New("unrecoverable job error")

// Job is one self-contained unit of periodic work.
type Job interface {
	Name() string
	Interval() time.Duration
	Run(ctx context.Context) error
}

// runIteration executes a single Run and turns a panic into an error.
func runIteration(ctx context.Context, job Job) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in job %s: %v", job.Name(), rec)
		}
	}()
	return job.Run(ctx)
}

// sleep waits for d or until ctx is done; it reports false on cancellation.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
