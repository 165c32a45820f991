package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yeisme/flarecloud/pkg/configs"
	"github.com/yeisme/flarecloud/pkg/internal/filestore"
	"github.com/yeisme/flarecloud/pkg/metrics"
	"github.com/yeisme/flarecloud/pkg/queue"
	"github.com/yeisme/flarecloud/pkg/tracing"
)

// RetentionService 按修改时间清理过期文件.
type RetentionService struct {
	*FileService
	cfg configs.RetentionConfig
}

func NewRetentionService(c context.Context, cfg configs.RetentionConfig) *RetentionService {
	return &RetentionService{FileService: NewFileService(c), cfg: cfg}
}

// Sweep 执行一轮清理. 每删除一个文件发布一次 fc.file.deleted（reason=retention）.
func (r *RetentionService) Sweep(ctx context.Context) (filestore.SweepResult, error) {
	ctx, span := tracing.StartSpan(ctx, "retention.sweep")
	defer span.End()

	started := time.Now()

	res, err := r.store.Sweep(ctx, filestore.SweepOptions{
		MaxAge:      r.cfg.MaxAge,
		Concurrency: r.cfg.Concurrency,
		OnPurged: func(info filestore.FileInfo) {
			metrics.ObserveDelete(string(queue.DeleteReasonRetention))
			r.publish(ctx, queue.TopicFileDeleted, queue.FileDeletedPayload{
				File:   fileRef(info),
				Reason: queue.DeleteReasonRetention,
			})
		},
	})

	metrics.ObserveSweep(res.Errors, time.Since(started), err)

	span.SetAttributes(
		attribute.Int("sweep.scanned", res.Scanned),
		attribute.Int("sweep.deleted", res.Deleted),
		attribute.Int("sweep.errors", res.Errors),
	)

	if err != nil {
		tracing.RecordError(span, err)
		r.logger.Error().Err(err).Msg("retention sweep aborted")

		return res, err
	}

	r.logger.Info().
		Int("scanned", res.Scanned).
		Int("deleted", res.Deleted).
		Int("errors", res.Errors).
		Dur("duration", res.Duration).
		Dur("max_age", r.cfg.MaxAge).
		Msg("retention sweep finished")

	return res, nil
}
