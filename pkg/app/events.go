package app

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/yeisme/flarecloud/pkg/internal/storage"
	"github.com/yeisme/flarecloud/pkg/queue"
)

// logEvents 订阅全部文件事件并写入日志，事件总线未启用时什么都不做.
func logEvents(ctx context.Context, manager *storage.Manager, logger zerolog.Logger) error {
	client := manager.GetMQClient()
	if client == nil {
		return nil
	}

	l := logger.With().Str("component", "events").Logger()

	for _, topic := range queue.Topics() {
		ch, err := client.Subscribe(ctx, topic)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}

		go consume(ch, topic, l)
	}

	return nil
}

func consume(ch <-chan *message.Message, topic string, l zerolog.Logger) {
	for msg := range ch {
		evt := l.Info().Str("topic", topic).Str("id", msg.UUID)

		switch topic {
		case queue.TopicFileStored:
			if m, err := queue.ParseFileStored(msg); err == nil {
				evt = evt.Str("file", m.Payload.File.Name).Int64("size", m.Payload.File.Size).Str("original_name", m.Payload.OriginalName)
			}
		case queue.TopicFileDeleted:
			if m, err := queue.ParseFileDeleted(msg); err == nil {
				evt = evt.Str("file", m.Payload.File.Name).Str("reason", string(m.Payload.Reason))
			}
		}

		evt.Msg("file event")
		msg.Ack()
	}
}
