// Package service 文档生命周期与审计.
package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/yeisme/casefile/pkg/configs"
	nlog "github.com/yeisme/casefile/pkg/log"
	"github.com/yeisme/casefile/pkg/metrics"
	"github.com/yeisme/casefile/pkg/tracing"
)

// Config 文档服务参数.
type Config struct {
	DefaultPageSize     int
	MaxPageSize         int
	PreviewTTL          time.Duration
	DefaultOriginModule string
	StoragePrefix       string
	MaxUploadBytes      int64
}

// ConfigFrom 从应用配置生成服务参数.
func ConfigFrom(c *configs.DocumentsConfig) (Config, error) {
	maxUpload, err := c.MaxUploadBytes()
	if err != nil {
		return Config{}, err
	}

	return Config{
		DefaultPageSize:     c.DefaultPageSize,
		MaxPageSize:         c.MaxPageSize,
		PreviewTTL:          c.PreviewTTL,
		DefaultOriginModule: c.DefaultOriginModule,
		StoragePrefix:       c.StoragePrefix,
		MaxUploadBytes:      maxUpload,
	}, nil
}

func (c Config) withDefaults() Config {
	if c.DefaultPageSize <= 0 {
		c.DefaultPageSize = configs.DefaultPageSize
	}

	if c.MaxPageSize <= 0 {
		c.MaxPageSize = configs.DefaultMaxPageSize
	}

	if c.DefaultPageSize > c.MaxPageSize {
		c.DefaultPageSize = c.MaxPageSize
	}

	if c.PreviewTTL <= 0 {
		c.PreviewTTL = configs.DefaultPreviewTTL
	}

	if c.DefaultOriginModule == "" {
		c.DefaultOriginModule = configs.DefaultOriginModule
	}

	if c.StoragePrefix == "" {
		c.StoragePrefix = configs.DefaultStoragePrefix
	}

	return c
}

// Deps 服务依赖，Skips / Publisher 可为 nil.
type Deps struct {
	Documents DocumentRepository
	Events    AuditLog
	Skips     SkipRecorder
	Publisher EventPublisher
	Blobs     BlobStore
	Directory UserDirectory
	Clock     Clock
	DocIDs    IDGenerator // 文档 ID
	KeyIDs    IDGenerator // 事件 ID 与存储键
}

// Services 组装好的文档服务与链接签发器.
type Services struct {
	Documents *DocumentService
	Links     *PreviewLinkIssuer
	Audit     *Emitter
}

// New 组装服务，未提供的时钟与 ID 生成器使用默认实现.
func New(d Deps, cfg Config) *Services {
	if d.Clock == nil {
		d.Clock = SystemClock{}
	}

	if d.DocIDs == nil {
		d.DocIDs = UUIDGenerator{}
	}

	if d.KeyIDs == nil {
		d.KeyIDs = NewULIDGenerator(d.Clock)
	}

	cfg = cfg.withDefaults()
	emitter := NewEmitter(d.Events, d.Skips, d.Publisher, d.KeyIDs, d.Clock)

	return &Services{
		Documents: &DocumentService{
			docs:      d.Documents,
			events:    d.Events,
			blobs:     d.Blobs,
			directory: d.Directory,
			audit:     emitter,
			clock:     d.Clock,
			docIDs:    d.DocIDs,
			keyIDs:    d.KeyIDs,
			cfg:       cfg,
			logger:    nlog.Component("documents"),
		},
		Links: NewPreviewLinkIssuer(d.Documents, d.Blobs, emitter, cfg.PreviewTTL),
		Audit: emitter,
	}
}

// DocumentService 文档创建、版本、元数据、归档与查询.
type DocumentService struct {
	docs      DocumentRepository
	events    AuditLog
	blobs     BlobStore
	directory UserDirectory
	audit     *Emitter
	clock     Clock
	docIDs    IDGenerator
	keyIDs    IDGenerator
	cfg       Config
	logger    zerolog.Logger
}

// observe 为一次操作开启 span，结束时记录结果指标.
func observe(ctx context.Context, op string) (context.Context, func(*error)) {
	ctx, span := tracing.StartSpan(ctx, "documents."+op)

	return ctx, func(errp *error) {
		outcome := "ok"
		if *errp != nil {
			outcome = string(KindOf(*errp))
			if outcome == "" {
				outcome = "error"
			}
		}

		metrics.DocumentOps.WithLabelValues(op, outcome).Inc()
		tracing.EndSpan(span, *errp)
	}
}

func actorID(actor ActorContext) string {
	if actor == nil {
		return ""
	}

	return actor.UserID()
}

func actorRef(actor ActorContext) *string {
	id := actorID(actor)
	if id == "" {
		return nil
	}

	return &id
}
