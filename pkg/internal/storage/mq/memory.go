package mq

import (
	"context"

	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/yeisme/casefile/pkg/configs"
)

func init() {
	RegisterFactory(MQTypeMemory, memoryFactory)
}

// memoryFactory 进程内 gochannel，发布者与订阅者共享同一实例.
func memoryFactory(_ context.Context, cfg *configs.MQConfig, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error) {
	buf := int64(cfg.BufferSize)
	if buf <= 0 {
		buf = 64
	}

	ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: buf}, logger)

	return ch, ch, nil
}
