package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCronTriggerRunsRegisteredJob(t *testing.T) {
	trigger := NewCronTrigger(testLogger())
	var deadline time.Time
	job := &fakeJob{name: "triggered", interval: time.Minute, run: func(ctx context.Context, _ int32) error {
		deadline, _ = ctx.Deadline()
		return errors.New("logged, not fatal")
	}}
	require.NoError(t, trigger.Register("@every 1s", job))

	trigger.Start(context.Background())
	require.Eventually(t, func() bool { return job.runs.Load() >= 2 }, 3*time.Second, 10*time.Millisecond)
	trigger.Stop()

	assert.False(t, deadline.IsZero(), "triggered run should have a bounded context")
}

func TestCronTriggerRejectsInvalidSpec(t *testing.T) {
	trigger := NewCronTrigger(testLogger())
	err := trigger.Register("not a cron spec", &fakeJob{name: "bad", interval: time.Minute})
	assert.Error(t, err)
}
