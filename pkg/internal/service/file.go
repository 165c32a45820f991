// Package service 实现文件存储的业务逻辑：上传、列举、下载、查询、删除与过期清理.
// 每个操作都会记录 span 与指标，并在成功后发布文件事件；事件发布失败只记录日志.
package service

import (
	"context"

	"github.com/rs/zerolog"

	ctxPkg "github.com/yeisme/flarecloud/pkg/context"
	"github.com/yeisme/flarecloud/pkg/internal/filestore"
	"github.com/yeisme/flarecloud/pkg/internal/storage/mq"
	"github.com/yeisme/flarecloud/pkg/log"
	"github.com/yeisme/flarecloud/pkg/queue"
	"github.com/yeisme/flarecloud/pkg/tracing"
)

type FileService struct {
	store    *filestore.Store
	mqClient *mq.Client
	producer string
	logger   zerolog.Logger
}

// NewFileService 从 context 中的存储资源构造 FileService.
func NewFileService(c context.Context) *FileService {
	var producer string
	if mgr := ctxPkg.GetManager(c); mgr != nil {
		producer = mgr.Producer
	}

	return &FileService{
		store:    ctxPkg.GetStore(c),
		mqClient: ctxPkg.GetMQClient(c),
		producer: producer,
		logger:   ctxPkg.WithTraceContext(c, log.Component("service")),
	}
}

// publish 发布事件，mqClient 为 nil 时跳过.
func (fs *FileService) publish(ctx context.Context, topic string, payload any) {
	if fs.mqClient == nil {
		return
	}

	msg, err := queue.NewWatermillMessage(topic, payload,
		queue.WithProducer(fs.producer),
		queue.WithTraceID(tracing.TraceID(ctx)),
	)
	if err != nil {
		fs.logger.Error().Err(err).Str("topic", topic).Msg("encode event failed")
		return
	}

	if err := fs.mqClient.Publish(ctx, topic, msg); err != nil {
		fs.logger.Error().Err(err).Str("topic", topic).Msg("publish event failed")
	}
}

func fileRef(info filestore.FileInfo) queue.FileRef {
	return queue.FileRef{
		Name:       info.Name,
		Size:       info.Size,
		ModifiedAt: info.ModifiedAt,
	}
}
