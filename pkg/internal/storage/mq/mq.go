// Package mq 提供基于 Watermill 的事件总线客户端.
// 通过工厂模式抽象不同的实现，配置 events.type 选择其中之一：
//
//   - gochannel：进程内总线（默认），不需要外部依赖
//   - nats：NATS，可选 JetStream 持久化
//   - redis：Redis Pub/Sub
//
// 使用示例：
//
//	client, err := mq.New(ctx, configs.GetConfig().Events, nlog.Component("events"))
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	msg, _ := queue.NewWatermillMessage(queue.TopicFileStored, payload)
//	err = client.Publish(ctx, queue.TopicFileStored, msg)
//
//	ch, err := client.Subscribe(ctx, queue.TopicFileStored)
package mq

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/yeisme/flarecloud/pkg/configs"
)

// Factory 定义创建 Publisher + Subscriber 的工厂函数.
type Factory func(ctx context.Context, cfg *configs.EventsConfig, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error)

var (
	factoriesMu sync.RWMutex
	factories   = map[configs.EventsType]Factory{}
)

// RegisterFactory 注册指定类型的工厂.
func RegisterFactory(t configs.EventsType, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()

	factories[t] = f
}

// GetRegisteredTypes 返回所有已注册的事件总线类型.
func GetRegisteredTypes() []configs.EventsType {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	types := make([]configs.EventsType, 0, len(factories))
	for t := range factories {
		types = append(types, t)
	}

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	return types
}

// ErrNotInitialized 客户端为 nil 或已关闭.
var ErrNotInitialized = errors.New("events client not initialized")

// Client 封装 watermill Publisher 与 Subscriber.
type Client struct {
	kind       configs.EventsType
	publisher  message.Publisher
	subscriber message.Subscriber

	closeOnce sync.Once
	closeErr  error
}

// New 按配置创建事件总线客户端.
func New(ctx context.Context, cfg configs.EventsConfig, logger zerolog.Logger) (*Client, error) {
	factoriesMu.RLock()
	factory, ok := factories[cfg.Type]
	factoriesMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unsupported events type: %s", cfg.Type)
	}

	pub, sub, err := factory(ctx, &cfg, NewLoggerAdapter(logger))
	if err != nil {
		return nil, fmt.Errorf("init events (%s): %w", cfg.Type, err)
	}

	logger.Info().Str("type", string(cfg.Type)).Msg("event bus initialized")

	return &Client{kind: cfg.Type, publisher: pub, subscriber: sub}, nil
}

// Type 返回底层实现类型.
func (c *Client) Type() configs.EventsType {
	return c.kind
}

// Publish 发布消息到 topic.
func (c *Client) Publish(ctx context.Context, topic string, msgs ...*message.Message) error {
	if c == nil || c.publisher == nil {
		return ErrNotInitialized
	}

	for _, m := range msgs {
		m.SetContext(ctx)

		if err := c.publisher.Publish(topic, m); err != nil {
			return fmt.Errorf("publish %s: %w", topic, err)
		}
	}

	return nil
}

// Subscribe 订阅 topic，ctx 结束时返回的通道关闭.
func (c *Client) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	if c == nil || c.subscriber == nil {
		return nil, ErrNotInitialized
	}

	ch, err := c.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}

	return ch, nil
}

// Close 关闭 Publisher 与 Subscriber，可重复调用.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}

	c.closeOnce.Do(func() {
		var errs []error

		if c.publisher != nil {
			errs = append(errs, c.publisher.Close())
		}

		// gochannel 的 Publisher 与 Subscriber 是同一个对象，Close 本身幂等
		if c.subscriber != nil {
			errs = append(errs, c.subscriber.Close())
		}

		c.closeErr = errors.Join(errs...)
	})

	return c.closeErr
}
