// Package queue 定义审计事件在消息队列中的主题、信封与发布器.
//
// 每条已写入的审计事件以 Message[DocumentEventPayload] 发布到 <prefix>.<action>，
// 默认前缀 cf.document，例如 cf.document.version_create.
//
// 信封 JSON 结构
//
//	{
//	  "header": {
//	    "topic": "cf.document.create",
//	    "trace_id": "optional-trace-id",
//	    "producer": "casefile",
//	    "occurred_at": "2025-01-02T03:04:05.123456Z",
//	    "version": "v1"
//	  },
//	  "payload": { "event_id": "...", "document_id": "...", "action": "document.create", ... }
//	}
//
// 订阅示例
//
//	ch, _ := client.Subscribe(ctx, queue.TopicFor("cf.document", model.ActionCreate))
//	for m := range ch {
//		env, err := queue.ParseDocumentEvent(m)
//		// 使用 env.Header / env.Payload ...
//		m.Ack()
//	}
//
// occurred_at 为 UTC RFC3339；消费者应忽略未知字段.
package queue

import (
	"context"
	"time"

	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bytedance/sonic"
	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/casefile/pkg/configs"
)

// PayloadVersionV1 当前信封版本.
const PayloadVersionV1 = "v1"

// headerFor 以业务发生时间构造事件头，ctx 中有 span 时附带 trace_id.
func headerFor(ctx context.Context, topic string, occurredAt time.Time) EventHeader {
	hdr := EventHeader{
		Topic:      topic,
		Producer:   configs.AppName,
		OccurredAt: occurredAt.UTC(),
		Version:    PayloadVersionV1,
	}

	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		hdr.TraceID = sc.TraceID().String()
	}

	return hdr
}

// newMessage 把信封编码为 watermill 消息，头部字段同时写入 metadata.
// id 为空时生成随机 UUID.
func newMessage[T any](id string, env Message[T]) (*message.Message, error) {
	data, err := sonic.Marshal(env)
	if err != nil {
		return nil, err
	}

	if id == "" {
		id = watermill.NewUUID()
	}

	msg := message.NewMessage(id, data)

	meta := map[string]string{
		"topic":       env.Header.Topic,
		"trace_id":    env.Header.TraceID,
		"producer":    env.Header.Producer,
		"occurred_at": env.Header.OccurredAt.Format(time.RFC3339Nano),
		"version":     env.Header.Version,
	}
	for k, v := range meta {
		if v != "" {
			msg.Metadata.Set(k, v)
		}
	}

	return msg, nil
}

// decode 解出泛型信封.
func decode[T any](msg *message.Message) (Message[T], error) {
	var env Message[T]

	err := sonic.Unmarshal(msg.Payload, &env)

	return env, err
}
