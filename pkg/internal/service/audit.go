package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/yeisme/casefile/pkg/internal/model"
	nlog "github.com/yeisme/casefile/pkg/log"
	"github.com/yeisme/casefile/pkg/metrics"
)

// Emitter 写入审计事件.
// 审计失败从不影响业务结果：无法确定租户或追加失败时落一条 AuditSkip 并告警.
type Emitter struct {
	log       AuditLog
	skips     SkipRecorder
	publisher EventPublisher
	ids       IDGenerator
	clock     Clock
	logger    zerolog.Logger
}

// NewEmitter 创建审计发射器，skips 与 publisher 可为 nil.
func NewEmitter(log AuditLog, skips SkipRecorder, publisher EventPublisher, ids IDGenerator, clock Clock) *Emitter {
	return &Emitter{
		log:       log,
		skips:     skips,
		publisher: publisher,
		ids:       ids,
		clock:     clock,
		logger:    nlog.Component("audit"),
	}
}

// Emit 为 doc 追加一条事件，返回是否写入成功.
// actor 为 nil 表示系统动作.
func (e *Emitter) Emit(ctx context.Context, actor ActorContext, doc *model.Document, action model.EventAction, details model.JSONMap) bool {
	var actorID *string
	if actor != nil && actor.UserID() != "" {
		id := actor.UserID()
		actorID = &id
	}

	tenant := doc.TenantID
	if tenant == "" && actor != nil {
		// 历史数据可能缺少租户，回查患者
		if t, err := actor.TenantOf(ctx, doc.PatientID); err == nil {
			tenant = t
		}
	}

	if tenant == "" {
		e.skip(ctx, doc.ID, actorID, action, details, model.SkipMissingTenant, nil)
		return false
	}

	if details == nil {
		details = model.JSONMap{}
	}

	event := &model.DocumentEvent{
		ID:          e.ids.New(),
		DocumentID:  doc.ID,
		TenantID:    tenant,
		ActorUserID: actorID,
		Action:      action,
		Details:     details,
		OccurredAt:  e.clock.Now(),
	}

	if err := e.log.Append(ctx, event); err != nil {
		e.skip(ctx, doc.ID, actorID, action, details, model.SkipAppendFailed, err)
		return false
	}

	metrics.AuditEvents.WithLabelValues(string(action)).Inc()

	if e.publisher != nil {
		if err := e.publisher.PublishDocumentEvent(ctx, event); err != nil {
			e.logger.Warn().Err(err).
				Str("document_id", doc.ID).
				Str("action", string(action)).
				Msg("failed to publish audit event")
		}
	}

	return true
}

func (e *Emitter) skip(ctx context.Context, docID string, actorID *string, action model.EventAction,
	details model.JSONMap, reason string, cause error,
) {
	metrics.AuditSkips.WithLabelValues(reason).Inc()

	ev := e.logger.Warn().
		Str("document_id", docID).
		Str("action", string(action)).
		Str("reason", reason)
	if cause != nil {
		ev = ev.Err(cause)
	}

	ev.Msg("audit event skipped")

	if e.skips == nil {
		return
	}

	s := &model.AuditSkip{
		ID:          e.ids.New(),
		DocumentID:  docID,
		ActorUserID: actorID,
		Action:      action,
		Reason:      reason,
		Details:     details,
		OccurredAt:  e.clock.Now(),
	}
	if cause != nil {
		s.Error = cause.Error()
	}

	if err := e.skips.RecordSkip(ctx, s); err != nil {
		e.logger.Error().Err(errors.Join(cause, err)).
			Str("document_id", docID).
			Msg("failed to record audit skip")
	}
}
