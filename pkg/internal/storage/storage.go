// Package storage 聚合服务使用的存储资源：文件存储目录与事件总线.
//
// Example:
//
//	mgr, err := storage.New(ctx, configs.GetConfig(), nlog.Component("storage"))
//	if err != nil {
//	    // 处理错误
//	}
//	defer mgr.Close()
//
//	store := mgr.GetStore()
//	events := mgr.GetMQClient() // events.enabled=false 时为 nil
package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/yeisme/flarecloud/pkg/configs"
	"github.com/yeisme/flarecloud/pkg/internal/filestore"
	mqc "github.com/yeisme/flarecloud/pkg/internal/storage/mq"
)

// Manager 聚合所有存储资源.
type Manager struct {
	Store *filestore.Store
	MQ    *mqc.Client
	// Producer 写入事件头的生产者标识.
	Producer string
}

// New 按配置初始化存储目录和事件总线.
func New(ctx context.Context, cfg *configs.AppConfig, logger zerolog.Logger) (*Manager, error) {
	store, err := filestore.New(cfg.Storage.Root, logger)
	if err != nil {
		return nil, err
	}

	m := &Manager{Store: store, Producer: cfg.Events.Producer}

	if cfg.Events.Enabled {
		client, err := mqc.New(ctx, cfg.Events, logger.With().Str("component", "events").Logger())
		if err != nil {
			return nil, fmt.Errorf("init events: %w", err)
		}

		m.MQ = client
	}

	logger.Info().
		Str("root", store.Root()).
		Bool("events", m.MQ != nil).
		Msg("storage manager initialized")

	return m, nil
}

// GetStore 获取文件存储.
func (m *Manager) GetStore() *filestore.Store {
	return m.Store
}

// GetMQClient 获取事件总线客户端，未启用时为 nil.
func (m *Manager) GetMQClient() *mqc.Client {
	return m.MQ
}

// Close 释放事件总线连接.
func (m *Manager) Close() error {
	if m == nil || m.MQ == nil {
		return nil
	}

	return m.MQ.Close()
}
