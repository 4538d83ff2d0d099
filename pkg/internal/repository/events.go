package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/yeisme/casefile/pkg/internal/model"
)

// Events 只追加的审计事件仓储，不提供更新与删除.
type Events struct {
	db *gorm.DB
}

// NewEvents 创建审计事件仓储.
func NewEvents(db *gorm.DB) *Events {
	return &Events{db: db}
}

// Append 追加一条事件.
func (r *Events) Append(ctx context.Context, e *model.DocumentEvent) error {
	return translate(r.db.WithContext(ctx).Create(e).Error)
}

// ListByDocument 按发生时间倒序返回文档的全部事件.
func (r *Events) ListByDocument(ctx context.Context, documentID string) ([]model.DocumentEvent, error) {
	events := make([]model.DocumentEvent, 0)

	err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("occurred_at DESC").
		Order("id DESC").
		Find(&events).Error

	return events, translate(err)
}

// Skips 记录未写入审计的事件.
type Skips struct {
	db *gorm.DB
}

// NewSkips 创建跳过记录仓储.
func NewSkips(db *gorm.DB) *Skips {
	return &Skips{db: db}
}

// RecordSkip 写入一条跳过记录.
func (r *Skips) RecordSkip(ctx context.Context, s *model.AuditSkip) error {
	return translate(r.db.WithContext(ctx).Create(s).Error)
}

// ListSkips 返回最近的跳过记录，limit<=0 时默认 50.
func (r *Skips) ListSkips(ctx context.Context, limit int) ([]model.AuditSkip, error) {
	if limit <= 0 {
		limit = 50
	}

	skips := make([]model.AuditSkip, 0, limit)

	err := r.db.WithContext(ctx).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&skips).Error

	return skips, translate(err)
}
