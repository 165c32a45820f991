// Package context 拓展上下文功能，将存储资源和追踪信息集成到上下文中，方便在应用程序各处传递和使用.
package context

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/flarecloud/pkg/internal/filestore"
	"github.com/yeisme/flarecloud/pkg/internal/storage"
	mqc "github.com/yeisme/flarecloud/pkg/internal/storage/mq"
	"github.com/yeisme/flarecloud/pkg/scheduler"
)

type ContextKey string

const (
	StorageManagerKey ContextKey = "storageManager"
	SchedulerKey      ContextKey = "scheduler"
)

// WithStorageManager 将 Manager 存储到 context 中.
func WithStorageManager(ctx context.Context, mgr *storage.Manager) context.Context {
	return context.WithValue(ctx, StorageManagerKey, mgr)
}

// GetManager 从 context 中获取 Manager.
func GetManager(ctx context.Context) *storage.Manager {
	if mgr, ok := ctx.Value(StorageManagerKey).(*storage.Manager); ok {
		return mgr
	}

	return nil
}

// GetStore 从 context 中获取文件存储.
func GetStore(ctx context.Context) *filestore.Store {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetStore()
	}

	return nil
}

// GetMQClient 从 context 中获取事件总线客户端.
func GetMQClient(ctx context.Context) *mqc.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetMQClient()
	}

	return nil
}

// WithScheduler 将调度器存储到 context 中.
func WithScheduler(ctx context.Context, sched *scheduler.Scheduler) context.Context {
	return context.WithValue(ctx, SchedulerKey, sched)
}

// GetScheduler 从 context 中获取调度器，未注入时为 nil.
func GetScheduler(ctx context.Context) *scheduler.Scheduler {
	sched, _ := ctx.Value(SchedulerKey).(*scheduler.Scheduler)
	return sched
}

// WithTraceContext 创建带有追踪上下文的logger.
func WithTraceContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		return logger.With().
			Str("trace_id", span.SpanContext().TraceID().String()).
			Str("span_id", span.SpanContext().SpanID().String()).
			Logger()
	}

	return logger
}
