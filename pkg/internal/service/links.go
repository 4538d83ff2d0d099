package service

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yeisme/casefile/pkg/internal/model"
	"github.com/yeisme/casefile/pkg/internal/repository"
	nlog "github.com/yeisme/casefile/pkg/log"
)

// LinkAction 链接用途.
type LinkAction string

const (
	LinkPreview  LinkAction = "preview"
	LinkDownload LinkAction = "download"
)

// PreviewLinkIssuer 签发短时有效的文件访问链接.
type PreviewLinkIssuer struct {
	docs   DocumentRepository
	blobs  BlobStore
	audit  *Emitter
	ttl    time.Duration
	logger zerolog.Logger
}

// NewPreviewLinkIssuer 创建链接签发器.
func NewPreviewLinkIssuer(docs DocumentRepository, blobs BlobStore, audit *Emitter, ttl time.Duration) *PreviewLinkIssuer {
	return &PreviewLinkIssuer{docs: docs, blobs: blobs, audit: audit, ttl: ttl, logger: nlog.Component("links")}
}

// TTL 返回链接有效期.
func (p *PreviewLinkIssuer) TTL() time.Duration { return p.ttl }

// Issue 为文档 ID 或存储路径签发链接.
// 先按 ID 再按存储路径解析所属文档，仅用于审计归属；解析不到时照常签发但不记录事件.
// 对象存储失败时返回 StorageError 且不写审计.
func (p *PreviewLinkIssuer) Issue(ctx context.Context, actor ActorContext, ref string, action LinkAction) (link string, err error) {
	const op = "issue_link"

	ctx, done := observe(ctx, op)
	defer done(&err)

	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", validationf(op, "reference is required")
	}

	if action != LinkPreview && action != LinkDownload {
		return "", validationf(op, "unsupported action %q", action)
	}

	doc := p.resolve(ctx, ref)

	storagePath := ref
	if doc != nil {
		storagePath = doc.StoragePath
	}

	downloadName := ""
	if action == LinkDownload {
		downloadName = path.Base(storagePath)
		if doc != nil && doc.OriginalFileName != "" {
			downloadName = doc.OriginalFileName
		}
	}

	link, err = p.blobs.SignedURL(ctx, storagePath, p.ttl, downloadName)
	if err != nil {
		return "", storageErr(op, err)
	}

	if doc != nil {
		event := model.ActionView
		if action == LinkDownload {
			event = model.ActionDownload
		}

		p.audit.Emit(ctx, actor, doc, event, model.JSONMap{
			"storage_path": storagePath,
			"ttl_seconds":  int(p.ttl.Seconds()),
		})
	}

	return link, nil
}

func (p *PreviewLinkIssuer) resolve(ctx context.Context, ref string) *model.Document {
	doc, err := p.docs.Get(ctx, ref)
	if err == nil {
		return doc
	}

	if !errors.Is(err, repository.ErrNotFound) {
		p.logger.Warn().Err(err).Str("ref", ref).Msg("document lookup by id failed")
	}

	doc, err = p.docs.FindByStoragePath(ctx, ref)
	if err == nil {
		return doc
	}

	if !errors.Is(err, repository.ErrNotFound) {
		p.logger.Warn().Err(err).Str("ref", ref).Msg("document lookup by storage path failed")
	}

	return nil
}
