package app

import (
	"context"
	"fmt"

	"github.com/yeisme/flarecloud/pkg/configs"
	ctxPkg "github.com/yeisme/flarecloud/pkg/context"
	"github.com/yeisme/flarecloud/pkg/internal/filestore"
	"github.com/yeisme/flarecloud/pkg/internal/service"
	"github.com/yeisme/flarecloud/pkg/internal/storage"
	"github.com/yeisme/flarecloud/pkg/log"
)

// Sweep 在当前进程中执行一轮过期清理，不启动 HTTP 服务和调度器.
func Sweep(ctx context.Context, config *configs.AppConfig) (filestore.SweepResult, error) {
	manager, err := storage.New(ctx, config, log.Component("storage"))
	if err != nil {
		return filestore.SweepResult{}, fmt.Errorf("initializing storage: %w", err)
	}
	defer manager.Close()

	ctx = ctxPkg.WithStorageManager(ctx, manager)

	return service.NewRetentionService(ctx, config.Retention).Sweep(ctx)
}
