// Package jobs 负责注册与实现业务定时任务（基于 scheduler）.
package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-co-op/gocron/v2"

	"github.com/yeisme/flarecloud/pkg/configs"
	ctxPkg "github.com/yeisme/flarecloud/pkg/context"
	"github.com/yeisme/flarecloud/pkg/internal/service"
	"github.com/yeisme/flarecloud/pkg/internal/storage"
	"github.com/yeisme/flarecloud/pkg/scheduler"
)

// RegisterRetentionJob 注册过期清理任务：
//   - retention.cron 非空时按 cron 表达式执行
//   - 否则每 retention.interval 执行一次
//   - retention.run_on_start 为 true 时调度器启动后立即执行一次
//
// retention.enabled 为 false 时不注册任何任务.
func RegisterRetentionJob(sched *scheduler.Scheduler, mgr *storage.Manager, cfg configs.RetentionConfig) error {
	if sched == nil {
		return errors.New("scheduler is nil")
	}

	if mgr == nil {
		return errors.New("storage manager is nil")
	}

	if !cfg.Enabled {
		return nil
	}

	// 将 storage manager 注入到 context，便于 service 使用
	baseCtx := ctxPkg.WithStorageManager(context.Background(), mgr)
	svc := service.NewRetentionService(baseCtx, cfg)

	run := func(ctx context.Context) error {
		_, err := svc.Sweep(ctx)
		return err
	}

	var opts []gocron.JobOption
	if cfg.RunOnStart {
		opts = append(opts, gocron.WithStartAt(gocron.WithStartImmediately()))
	}

	if cfg.Cron != "" {
		if err := sched.AddCron(JobRetentionSweep, cfg.Cron, run, opts...); err != nil {
			return fmt.Errorf("register %s: %w", JobRetentionSweep, err)
		}

		return nil
	}

	if err := sched.AddInterval(JobRetentionSweep, cfg.Interval, run, opts...); err != nil {
		return fmt.Errorf("register %s: %w", JobRetentionSweep, err)
	}

	return nil
}
