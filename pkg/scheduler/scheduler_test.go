package scheduler_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/flarecloud/pkg/scheduler"
)

func newScheduler(t *testing.T) *scheduler.Scheduler {
	t.Helper()

	s, err := scheduler.NewScheduler(zerolog.Nop())
	require.NoError(t, err)

	t.Cleanup(func() { _ = s.Shutdown() })

	return s
}

func TestAddInterval_Runs(t *testing.T) {
	s := newScheduler(t)

	var runs atomic.Int32

	require.NoError(t, s.AddInterval("tick", 20*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	}))

	s.Start()

	require.Eventually(t, func() bool { return runs.Load() >= 2 }, 3*time.Second, 10*time.Millisecond)

	info, err := s.GetJobInfoByName("tick")
	require.NoError(t, err)
	assert.Equal(t, "every 20ms", info.Schedule)
	assert.NotEmpty(t, info.ID)
	assert.False(t, info.LastRun.IsZero())
	assert.GreaterOrEqual(t, info.Runs, int64(1))
}

func TestAdd_DuplicateName(t *testing.T) {
	s := newScheduler(t)

	noop := func(context.Context) error { return nil }

	require.NoError(t, s.AddInterval("dup", time.Hour, noop))
	assert.Error(t, s.AddInterval("dup", time.Hour, noop))
	assert.Error(t, s.AddCron("dup", "0 * * * *", noop))
}

func TestAddInterval_RejectsNonPositive(t *testing.T) {
	s := newScheduler(t)

	assert.Error(t, s.AddInterval("zero", 0, func(context.Context) error { return nil }))
}

func TestAddCron_InvalidExpression(t *testing.T) {
	s := newScheduler(t)

	assert.Error(t, s.AddCron("bad", "not a cron", func(context.Context) error { return nil }))

	_, err := s.GetJobInfoByName("bad")
	assert.ErrorIs(t, err, scheduler.ErrJobNotFound)
}

func TestRunNow_RecordsError(t *testing.T) {
	s := newScheduler(t)

	require.NoError(t, s.AddInterval("fail", time.Hour, func(context.Context) error {
		return errors.New("disk unavailable")
	}))

	s.Start()
	require.NoError(t, s.RunNow("fail"))

	require.Eventually(t, func() bool {
		info, err := s.GetJobInfoByName("fail")
		return err == nil && info.Status == scheduler.StatusError
	}, 3*time.Second, 10*time.Millisecond)

	info, err := s.GetJobInfoByName("fail")
	require.NoError(t, err)
	assert.Equal(t, "disk unavailable", info.Error)
	assert.True(t, info.LastSuccess.IsZero())
}

func TestRunNow_RecoversPanic(t *testing.T) {
	s := newScheduler(t)

	require.NoError(t, s.AddInterval("boom", time.Hour, func(context.Context) error {
		panic("unexpected")
	}))

	s.Start()
	require.NoError(t, s.RunNow("boom"))

	require.Eventually(t, func() bool {
		info, _ := s.GetJobInfoByName("boom")
		return info.Status == scheduler.StatusError
	}, 3*time.Second, 10*time.Millisecond)
}

func TestRemoveJobByName(t *testing.T) {
	s := newScheduler(t)

	require.NoError(t, s.AddInterval("gone", time.Hour, func(context.Context) error { return nil }))
	require.NoError(t, s.RemoveJobByName("gone"))

	assert.Empty(t, s.GetJobInfos())
	assert.ErrorIs(t, s.RemoveJobByName("gone"), scheduler.ErrJobNotFound)
	assert.ErrorIs(t, s.RunNow("gone"), scheduler.ErrJobNotFound)
}

func TestShutdown_CancelsRunningJob(t *testing.T) {
	s := newScheduler(t)

	started := make(chan struct{})
	cancelled := make(chan struct{})

	require.NoError(t, s.AddInterval("long", time.Hour, func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		close(cancelled)

		return ctx.Err()
	}))

	s.Start()
	require.NoError(t, s.RunNow("long"))

	select {
	case <-started:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not start")
	}

	require.NoError(t, s.Shutdown())

	select {
	case <-cancelled:
	case <-time.After(3 * time.Second):
		t.Fatal("job context was not cancelled")
	}

	for _, info := range s.GetJobInfos() {
		assert.Equal(t, scheduler.StatusStopped, info.Status)
	}

	assert.NoError(t, s.Shutdown())
}
