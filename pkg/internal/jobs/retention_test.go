package jobs_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/flarecloud/pkg/configs"
	"github.com/yeisme/flarecloud/pkg/internal/jobs"
	"github.com/yeisme/flarecloud/pkg/internal/storage"
	"github.com/yeisme/flarecloud/pkg/scheduler"
)

func setup(t *testing.T) (*scheduler.Scheduler, *storage.Manager) {
	t.Helper()

	cfg := configs.Default()
	cfg.Storage.Root = filepath.Join(t.TempDir(), "uploads")
	cfg.Events.Enabled = false

	mgr, err := storage.New(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)

	sched, err := scheduler.NewScheduler(zerolog.Nop())
	require.NoError(t, err)

	t.Cleanup(func() { _ = sched.Shutdown() })

	return sched, mgr
}

func TestRegisterRetentionJob_Interval(t *testing.T) {
	sched, mgr := setup(t)

	require.NoError(t, jobs.RegisterRetentionJob(sched, mgr, configs.Default().Retention))

	info, err := sched.GetJobInfoByName(jobs.JobRetentionSweep)
	require.NoError(t, err)
	assert.Equal(t, "every 1h0m0s", info.Schedule)
}

func TestRegisterRetentionJob_Cron(t *testing.T) {
	sched, mgr := setup(t)

	cfg := configs.Default().Retention
	cfg.Cron = "15 * * * *"

	require.NoError(t, jobs.RegisterRetentionJob(sched, mgr, cfg))

	info, err := sched.GetJobInfoByName(jobs.JobRetentionSweep)
	require.NoError(t, err)
	assert.Equal(t, "15 * * * *", info.Schedule)
}

func TestRegisterRetentionJob_Disabled(t *testing.T) {
	sched, mgr := setup(t)

	cfg := configs.Default().Retention
	cfg.Enabled = false

	require.NoError(t, jobs.RegisterRetentionJob(sched, mgr, cfg))
	assert.Empty(t, sched.GetJobInfos())
}

func TestRegisterRetentionJob_NilArgs(t *testing.T) {
	sched, mgr := setup(t)

	assert.Error(t, jobs.RegisterRetentionJob(nil, mgr, configs.Default().Retention))
	assert.Error(t, jobs.RegisterRetentionJob(sched, nil, configs.Default().Retention))
}

func TestRetentionJob_RunOnStartPurgesExpired(t *testing.T) {
	sched, mgr := setup(t)

	old, err := mgr.GetStore().Save(strings.NewReader("old"))
	require.NoError(t, err)

	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(mgr.GetStore().Root(), old.Name), past, past))

	cfg := configs.Default().Retention
	cfg.RunOnStart = true

	require.NoError(t, jobs.RegisterRetentionJob(sched, mgr, cfg))
	sched.Start()

	require.Eventually(t, func() bool {
		_, err := mgr.GetStore().Stat(old.Name)
		return err != nil
	}, 5*time.Second, 20*time.Millisecond)

	require.Eventually(t, func() bool {
		info, _ := sched.GetJobInfoByName(jobs.JobRetentionSweep)
		return info.Runs == 1 && info.Status == scheduler.StatusScheduled
	}, 5*time.Second, 20*time.Millisecond)
}
