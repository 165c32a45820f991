package mq

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/yeisme/flarecloud/pkg/configs"
)

func init() {
	RegisterFactory(configs.EventsTypeGoChannel, goChannelFactory)
}

// goChannelFactory 创建进程内总线，同一个实例同时作为 Publisher 和 Subscriber.
// 没有订阅者的主题上发布的消息直接丢弃.
func goChannelFactory(
	_ context.Context,
	cfg *configs.EventsConfig,
	logger watermill.LoggerAdapter) (
	message.Publisher, message.Subscriber, error) {
	bus := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: cfg.Buffer,
	}, logger)

	return bus, bus, nil
}
