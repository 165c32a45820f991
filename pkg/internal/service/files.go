package service

import (
	"context"
	"errors"
	"io"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/flarecloud/pkg/internal/filestore"
	"github.com/yeisme/flarecloud/pkg/metrics"
	"github.com/yeisme/flarecloud/pkg/queue"
	"github.com/yeisme/flarecloud/pkg/tracing"
)

// UploadMeta 客户端提交的文件描述，只用于响应和事件，不影响存储名称.
type UploadMeta struct {
	FieldName    string
	OriginalName string
	MimeType     string
}

// Upload 保存 r 的全部内容并发布 fc.file.stored.
func (fs *FileService) Upload(ctx context.Context, r io.Reader, meta UploadMeta) (filestore.FileInfo, error) {
	ctx, span := tracing.StartSpan(ctx, "filestore.save", trace.WithAttributes(
		attribute.String("file.original_name", meta.OriginalName),
		attribute.String("file.mime_type", meta.MimeType),
	))
	defer span.End()

	info, err := fs.store.Save(r)
	if err != nil {
		tracing.RecordError(span, err)
		return filestore.FileInfo{}, err
	}

	span.SetAttributes(attribute.String("file.name", info.Name), attribute.Int64("file.size", info.Size))
	metrics.ObserveUpload(info.Size)

	fs.logger.Info().
		Str("file", info.Name).
		Str("original_name", meta.OriginalName).
		Int64("size", info.Size).
		Msg("file uploaded")

	fs.publish(ctx, queue.TopicFileStored, queue.FileStoredPayload{
		File:         fileRef(info),
		OriginalName: meta.OriginalName,
		MimeType:     meta.MimeType,
	})

	return info, nil
}

// List 返回存储目录下的所有名称.
func (fs *FileService) List(ctx context.Context) ([]string, error) {
	_, span := tracing.StartSpan(ctx, "filestore.list")
	defer span.End()

	names, err := fs.store.List()
	if err != nil {
		tracing.RecordError(span, err)
		fs.logger.Error().Err(err).Msg("list files failed")

		return nil, err
	}

	span.SetAttributes(attribute.Int("file.count", len(names)))

	return names, nil
}

// Open 打开文件用于下载，调用方负责关闭.
func (fs *FileService) Open(ctx context.Context, name string) (*os.File, filestore.FileInfo, error) {
	_, span := tracing.StartSpan(ctx, "filestore.open", trace.WithAttributes(attribute.String("file.name", name)))
	defer span.End()

	f, info, err := fs.store.Open(name)
	if err != nil {
		recordUnexpected(span, err)
		return nil, filestore.FileInfo{}, err
	}

	return f, info, nil
}

// Details 返回文件元数据.
func (fs *FileService) Details(ctx context.Context, name string) (filestore.FileInfo, error) {
	_, span := tracing.StartSpan(ctx, "filestore.stat", trace.WithAttributes(attribute.String("file.name", name)))
	defer span.End()

	info, err := fs.store.Stat(name)
	if err != nil {
		recordUnexpected(span, err)
		return filestore.FileInfo{}, err
	}

	return info, nil
}

// Delete 删除文件并发布 fc.file.deleted（reason=request）.
func (fs *FileService) Delete(ctx context.Context, name string) error {
	ctx, span := tracing.StartSpan(ctx, "filestore.delete", trace.WithAttributes(attribute.String("file.name", name)))
	defer span.End()

	// 事件需要删除前的大小与修改时间；stat 失败不影响删除本身
	info, statErr := fs.store.Stat(name)
	if statErr != nil {
		info = filestore.FileInfo{Name: name}
	}

	if err := fs.store.Delete(name); err != nil {
		recordUnexpected(span, err)
		return err
	}

	metrics.ObserveDelete(string(queue.DeleteReasonRequest))
	fs.logger.Info().Str("file", name).Msg("file deleted")

	fs.publish(ctx, queue.TopicFileDeleted, queue.FileDeletedPayload{
		File:   fileRef(info),
		Reason: queue.DeleteReasonRequest,
	})

	return nil
}

// recordUnexpected 客户端错误（不存在、非法名称）不标记 span 为失败.
func recordUnexpected(span trace.Span, err error) {
	if errors.Is(err, filestore.ErrNotFound) || errors.Is(err, filestore.ErrInvalidName) {
		span.SetAttributes(attribute.String("file.error", err.Error()))
		return
	}

	tracing.RecordError(span, err)
}
