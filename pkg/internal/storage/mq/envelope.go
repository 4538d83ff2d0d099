package mq

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bytedance/sonic"
)

// redisEnvelope Redis Pub/Sub 不支持消息头，元数据随负载一起编码.
type redisEnvelope struct {
	UUID     string            `json:"uuid"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Payload  []byte            `json:"payload"`
}

func encodeEnvelope(msg *message.Message) ([]byte, error) {
	return sonic.Marshal(redisEnvelope{
		UUID:     msg.UUID,
		Metadata: msg.Metadata,
		Payload:  msg.Payload,
	})
}

func decodeEnvelope(b []byte) (*message.Message, error) {
	var env redisEnvelope
	if err := sonic.Unmarshal(b, &env); err != nil {
		return nil, err
	}

	msg := message.NewMessage(env.UUID, env.Payload)
	for k, v := range env.Metadata {
		msg.Metadata.Set(k, v)
	}

	return msg, nil
}
