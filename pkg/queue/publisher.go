package queue

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/yeisme/casefile/pkg/configs"
	"github.com/yeisme/casefile/pkg/internal/model"
)

// Sink 发布消息的目标，mq.Client 满足该接口.
type Sink interface {
	Publish(ctx context.Context, topic string, msgs ...*message.Message) error
}

// DocumentPublisher 按动作开关把审计事件发布到消息队列.
type DocumentPublisher struct {
	sink   Sink
	prefix string
	allow  map[model.EventAction]bool
}

// NewDocumentPublisher 根据事件配置创建发布器.
func NewDocumentPublisher(sink Sink, cfg configs.EventsConfig) *DocumentPublisher {
	a := cfg.Actions

	return &DocumentPublisher{
		sink:   sink,
		prefix: cfg.Topic,
		allow: map[model.EventAction]bool{
			model.ActionCreate:        a.Create,
			model.ActionVersionCreate: a.Version,
			model.ActionUpdate:        a.Update,
			model.ActionVerify:        a.Verify,
			model.ActionUnverify:      a.Verify,
			model.ActionArchive:       a.Status,
			model.ActionRestore:       a.Status,
			model.ActionStatusChange:  a.Status,
			model.ActionView:          a.Accessed,
			model.ActionDownload:      a.Accessed,
		},
	}
}

// PublishDocumentEvent 发布一条审计事件，未开启的动作直接忽略.
// 消息 ID 即事件 ID，消费者可据此去重.
func (p *DocumentPublisher) PublishDocumentEvent(ctx context.Context, e *model.DocumentEvent) error {
	if !p.allow[e.Action] {
		return nil
	}

	topic := TopicFor(p.prefix, e.Action)

	msg, err := newMessage(e.ID, Message[DocumentEventPayload]{
		Header: headerFor(ctx, topic, e.OccurredAt),
		Payload: DocumentEventPayload{
			EventID:     e.ID,
			DocumentID:  e.DocumentID,
			TenantID:    e.TenantID,
			ActorUserID: e.ActorUserID,
			Action:      string(e.Action),
			Details:     e.Details,
			OccurredAt:  e.OccurredAt,
		},
	})
	if err != nil {
		return err
	}

	return p.sink.Publish(ctx, topic, msg)
}

// ParseDocumentEvent 解析文档事件消息.
func ParseDocumentEvent(msg *message.Message) (Message[DocumentEventPayload], error) {
	return decode[DocumentEventPayload](msg)
}
