package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	units "github.com/docker/go-units"

	"github.com/yeisme/casefile/pkg/internal/model"
	"github.com/yeisme/casefile/pkg/internal/repository"
	"github.com/yeisme/casefile/pkg/metrics"
)

// BlobRef 已存储文件的引用.
type BlobRef struct {
	Path             string
	ContentHash      string
	SizeBytes        int64
	MimeType         string
	Extension        string
	OriginalFileName string
}

// Links 业务关联 ID，均可为空.
type Links struct {
	ContractID          *string `json:"contract_id"`
	FinanceEntryID      *string `json:"finance_entry_id"`
	ClinicalVisitID     *string `json:"clinical_visit_id"`
	ClinicalEvolutionID *string `json:"clinical_evolution_id"`
	PrescriptionID      *string `json:"prescription_id"`
	RelatedObjectID     *string `json:"related_object_id"`
}

// Signature 签名元数据.
type Signature struct {
	Type       model.SignatureType
	Date       *time.Time
	Summary    *string
	ExternalID *string
}

// CreateInput 新建文档（第 1 版）的输入.
// Confidential / ClinicalVisible / AdminFinVisible 为 nil 时分别默认 false / true / true.
type CreateInput struct {
	PatientID     string
	Title         string
	Description   string
	Category      model.Category
	Domain        model.Domain
	Subcategory   string
	OriginModule  string
	Tags          []string
	PublicNotes   string
	InternalNotes string
	ExternalRef   string

	Blob      BlobRef
	Links     Links
	ExpiresAt *time.Time

	IsVerified bool
	Signature  Signature

	Confidential    *bool
	ClinicalVisible *bool
	AdminFinVisible *bool
	MinAccessRole   model.AccessRole
}

// FileUpload 待上传的文件内容.
type FileUpload struct {
	Reader      io.Reader
	Size        int64 // 未知时为 -1
	FileName    string
	ContentType string
}

func validateCreate(in *CreateInput, requireBlob bool) error {
	const op = "create"

	switch {
	case strings.TrimSpace(in.PatientID) == "":
		return validationf(op, "patient id is required")
	case in.Category == "":
		return validationf(op, "category is required")
	case !in.Category.Valid():
		return validationf(op, "unknown category %q", in.Category)
	case in.Domain == "":
		return validationf(op, "domain is required")
	case !in.Domain.Valid():
		return validationf(op, "unknown domain %q", in.Domain)
	case in.Signature.Type != "" && !in.Signature.Type.Valid():
		return validationf(op, "unknown signature type %q", in.Signature.Type)
	case !in.MinAccessRole.Valid():
		return validationf(op, "unknown access role %q", in.MinAccessRole)
	case requireBlob && in.Blob.Path == "":
		return validationf(op, "blob reference is required")
	}

	return nil
}

// Create 以已存储的文件创建第 1 版文档.
func (s *DocumentService) Create(ctx context.Context, actor ActorContext, in CreateInput) (doc *model.Document, err error) {
	ctx, done := observe(ctx, "create")
	defer done(&err)

	if err := validateCreate(&in, true); err != nil {
		return nil, err
	}

	tenant, err := s.tenantOf(ctx, actor, in.PatientID)
	if err != nil {
		return nil, err
	}

	return s.insertFirst(ctx, actor, tenant, &in)
}

// Upload 存储文件内容后创建第 1 版文档.
// 元数据写入失败时尝试删除已上传的对象.
func (s *DocumentService) Upload(ctx context.Context, actor ActorContext, in CreateInput, file FileUpload) (doc *model.Document, err error) {
	ctx, done := observe(ctx, "upload")
	defer done(&err)

	if err := validateCreate(&in, false); err != nil {
		return nil, err
	}

	tenant, err := s.tenantOf(ctx, actor, in.PatientID)
	if err != nil {
		return nil, err
	}

	ref, err := s.storeBlob(ctx, in.PatientID, file)
	if err != nil {
		return nil, err
	}

	in.Blob = ref

	doc, err = s.insertFirst(ctx, actor, tenant, &in)
	if err != nil {
		s.discardBlob(ctx, ref.Path, err)
		return nil, err
	}

	return doc, nil
}

func (s *DocumentService) tenantOf(ctx context.Context, actor ActorContext, patientID string) (string, error) {
	if actor == nil {
		return "", validationf("create", "actor context is required")
	}

	tenant, err := actor.TenantOf(ctx, patientID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return "", notFound("create", "patient", patientID)
	case err != nil:
		return "", &Error{Kind: KindPersistence, Op: "create", Msg: "resolve patient tenant", Err: err}
	case tenant == "":
		return "", notFound("create", "patient tenant", patientID)
	}

	return tenant, nil
}

func (s *DocumentService) insertFirst(ctx context.Context, actor ActorContext, tenant string, in *CreateInput) (*model.Document, error) {
	now := s.clock.Now()
	id := s.docIDs.New()

	doc := &model.Document{
		ID:               id,
		PatientID:        in.PatientID,
		TenantID:         tenant,
		Title:            firstNonEmpty(strings.TrimSpace(in.Title), in.Blob.OriginalFileName),
		Description:      in.Description,
		Category:         in.Category,
		Domain:           in.Domain,
		Subcategory:      in.Subcategory,
		OriginModule:     firstNonEmpty(strings.TrimSpace(in.OriginModule), s.cfg.DefaultOriginModule),
		Tags:             model.StringList(NormalizeTags(in.Tags...)),
		PublicNotes:      in.PublicNotes,
		InternalNotes:    in.InternalNotes,
		ExternalRef:      in.ExternalRef,
		LineageID:        id,
		Version:          1,
		Status:           model.StatusActive,
		ExpiresAt:        in.ExpiresAt,
		StoragePath:      in.Blob.Path,
		OriginalFileName: in.Blob.OriginalFileName,
		SizeBytes:        in.Blob.SizeBytes,
		MimeType:         in.Blob.MimeType,
		Extension:        in.Blob.Extension,
		ContentHash:      in.Blob.ContentHash,

		SignatureType:       in.Signature.Type,
		SignatureDate:       in.Signature.Date,
		SignatureSummary:    in.Signature.Summary,
		ExternalSignatureID: in.Signature.ExternalID,

		Confidential:    boolOr(in.Confidential, false),
		ClinicalVisible: boolOr(in.ClinicalVisible, true),
		AdminFinVisible: boolOr(in.AdminFinVisible, true),
		MinAccessRole:   in.MinAccessRole,

		ContractID:          in.Links.ContractID,
		FinanceEntryID:      in.Links.FinanceEntryID,
		ClinicalVisitID:     in.Links.ClinicalVisitID,
		ClinicalEvolutionID: in.Links.ClinicalEvolutionID,
		PrescriptionID:      in.Links.PrescriptionID,
		RelatedObjectID:     in.Links.RelatedObjectID,

		UploadedAt: now,
		UploadedBy: actorID(actor),
	}

	if doc.SignatureType == "" {
		doc.SignatureType = model.SignatureNone
	}

	if in.IsVerified {
		setVerified(doc, true, now, actor)
	}

	if err := s.docs.Insert(ctx, doc); err != nil {
		return nil, persistErr("create", err)
	}

	s.audit.Emit(ctx, actor, doc, model.ActionCreate, model.JSONMap{"classification": doc.Snapshot()})

	s.logger.Info().
		Str("document_id", doc.ID).
		Str("patient_id", doc.PatientID).
		Str("size", units.HumanSize(float64(doc.SizeBytes))).
		Msg("document created")

	return doc, nil
}

// storeBlob 写入对象存储，同时计算 sha256 与实际大小.
func (s *DocumentService) storeBlob(ctx context.Context, patientID string, file FileUpload) (BlobRef, error) {
	const op = "upload"

	if file.Reader == nil {
		return BlobRef{}, validationf(op, "file content is required")
	}

	limit := s.cfg.MaxUploadBytes
	if limit > 0 && file.Size > limit {
		return BlobRef{}, validationf(op, "file exceeds %s", units.HumanSize(float64(limit)))
	}

	ext := strings.ToLower(path.Ext(file.FileName))
	key := path.Join(s.cfg.StoragePrefix, patientID, s.keyIDs.New()+ext)

	contentType := file.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(ext)
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	hasher := sha256.New()
	counter := &countingWriter{}

	var r io.Reader = file.Reader
	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}

	r = io.TeeReader(r, io.MultiWriter(hasher, counter))

	if err := s.blobs.Put(ctx, key, r, file.Size, contentType); err != nil {
		return BlobRef{}, storageErr(op, err)
	}

	if limit > 0 && counter.n > limit {
		s.discardBlob(ctx, key, fmt.Errorf("upload exceeded %d bytes", limit))
		return BlobRef{}, validationf(op, "file exceeds %s", units.HumanSize(float64(limit)))
	}

	metrics.UploadBytes.Observe(float64(counter.n))

	return BlobRef{
		Path:             key,
		ContentHash:      hex.EncodeToString(hasher.Sum(nil)),
		SizeBytes:        counter.n,
		MimeType:         contentType,
		Extension:        strings.TrimPrefix(ext, "."),
		OriginalFileName: baseName(file.FileName),
	}, nil
}

// discardBlob 补偿删除孤立对象，失败只记录日志.
func (s *DocumentService) discardBlob(ctx context.Context, key string, cause error) {
	if err := s.blobs.Delete(context.WithoutCancel(ctx), key); err != nil {
		s.logger.Error().Err(err).AnErr("cause", cause).Str("storage_path", key).Msg("orphaned blob could not be removed")
		return
	}

	s.logger.Warn().AnErr("cause", cause).Str("storage_path", key).Msg("removed orphaned blob")
}

func baseName(name string) string {
	b := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if b == "." || b == "/" {
		return ""
	}

	return b
}

type countingWriter struct{ n int64 }

func (w *countingWriter) Write(p []byte) (int, error) {
	w.n += int64(len(p))
	return len(p), nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}

	return ""
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}

	return *p
}

// setVerified 根据 verified 设置或清空核验戳.
func setVerified(doc *model.Document, verified bool, now time.Time, actor ActorContext) {
	doc.IsVerified = verified
	if !verified {
		doc.VerifiedAt = nil
		doc.VerifiedBy = nil

		return
	}

	at := now
	doc.VerifiedAt = &at
	doc.VerifiedBy = actorRef(actor)
}
