package service

import (
	"context"
	"io"
	"time"

	"github.com/yeisme/casefile/pkg/internal/model"
	"github.com/yeisme/casefile/pkg/internal/repository"
)

// DocumentRepository 文档持久化.
type DocumentRepository interface {
	Insert(ctx context.Context, doc *model.Document) error
	Get(ctx context.Context, id string) (*model.Document, error)
	FindByStoragePath(ctx context.Context, path string) (*model.Document, error)
	// Update 在状态仍为 readStatus 时覆盖写入，否则返回 repository.ErrStale.
	Update(ctx context.Context, doc *model.Document, readStatus model.Status) error
	CreateVersion(ctx context.Context, predecessorID string, expectedVersion int, next *model.Document) error
	List(ctx context.Context, patientID string, q repository.ListQuery) ([]model.Document, int64, error)
	ListLineage(ctx context.Context, lineageID, patientID string) ([]model.Document, error)
	HasSuccessor(ctx context.Context, id string) (bool, error)
}

// AuditLog 只追加的审计事件存储.
type AuditLog interface {
	Append(ctx context.Context, e *model.DocumentEvent) error
	ListByDocument(ctx context.Context, documentID string) ([]model.DocumentEvent, error)
}

// SkipRecorder 记录未写入的审计事件.
type SkipRecorder interface {
	RecordSkip(ctx context.Context, s *model.AuditSkip) error
}

// BlobStore 按不透明路径存取文件字节.
// downloadName 非空时签发的链接以附件方式下载.
type BlobStore interface {
	Put(ctx context.Context, path string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, path string) error
	SignedURL(ctx context.Context, path string, ttl time.Duration, downloadName string) (string, error)
}

// UserDirectory 解析用户显示名，未知 ID 不出现在结果中.
type UserDirectory interface {
	DisplayNames(ctx context.Context, ids []string) (map[string]string, error)
}

// ActorContext 调用方身份与患者租户解析.
// UserID 为空表示系统动作.
type ActorContext interface {
	UserID() string
	TenantOf(ctx context.Context, patientID string) (string, error)
}

// EventPublisher 审计事件外发.
type EventPublisher interface {
	PublishDocumentEvent(ctx context.Context, e *model.DocumentEvent) error
}

// Clock 时间来源.
type Clock interface {
	Now() time.Time
}

// IDGenerator 生成唯一 ID.
type IDGenerator interface {
	New() string
}
