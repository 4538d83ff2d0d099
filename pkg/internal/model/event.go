package model

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// EventAction 审计动作.
type EventAction string

const (
	ActionCreate        EventAction = "document.create"
	ActionVersionCreate EventAction = "document.version_create"
	ActionUpdate        EventAction = "document.update"
	ActionVerify        EventAction = "document.verify"
	ActionUnverify      EventAction = "document.unverify"
	ActionArchive       EventAction = "document.archive"
	ActionRestore       EventAction = "document.restore"
	ActionStatusChange  EventAction = "document.status_change"
	ActionView          EventAction = "document.view"
	ActionDownload      EventAction = "document.download"
)

// ErrEventImmutable 审计事件写入后禁止修改或删除.
var ErrEventImmutable = errors.New("document events are append-only")

// DocumentEvent 一条不可变的审计记录，ActorUserID 为空表示系统动作.
type DocumentEvent struct {
	ID          string      `gorm:"primaryKey;size:26"                                 json:"id"`
	DocumentID  string      `gorm:"size:36;not null;index:idx_events_document,priority:1" json:"document_id"`
	TenantID    string      `gorm:"size:64;not null;index"                             json:"tenant_id"`
	ActorUserID *string     `gorm:"size:64"                                            json:"actor_user_id"`
	Action      EventAction `gorm:"size:48;not null;index"                             json:"action"`
	Details     JSONMap     `gorm:"type:text"                                          json:"details"`
	OccurredAt  time.Time   `gorm:"not null;index:idx_events_document,priority:2"      json:"occurred_at"`
}

// TableName 指定表名.
func (DocumentEvent) TableName() string { return "document_events" }

// BeforeUpdate 拒绝更新.
func (*DocumentEvent) BeforeUpdate(*gorm.DB) error { return ErrEventImmutable }

// BeforeDelete 拒绝删除.
func (*DocumentEvent) BeforeDelete(*gorm.DB) error { return ErrEventImmutable }

// AuditSkip 未能写入的审计事件，供运维排查.
// Reason 取 missing_tenant / append_failed.
type AuditSkip struct {
	ID          string      `gorm:"primaryKey;size:26" json:"id"`
	DocumentID  string      `gorm:"size:36;index"      json:"document_id"`
	ActorUserID *string     `gorm:"size:64"            json:"actor_user_id"`
	Action      EventAction `gorm:"size:48"            json:"action"`
	Reason      string      `gorm:"size:32;index"      json:"reason"`
	Error       string      `gorm:"type:text"          json:"error"`
	Details     JSONMap     `gorm:"type:text"          json:"details"`
	OccurredAt  time.Time   `gorm:"index"              json:"occurred_at"`
}

// TableName 指定表名.
func (AuditSkip) TableName() string { return "document_audit_skips" }

const (
	SkipMissingTenant = "missing_tenant"
	SkipAppendFailed  = "append_failed"
)
