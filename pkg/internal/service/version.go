package service

import (
	"context"
	"time"

	"github.com/yeisme/casefile/pkg/internal/model"
)

// VersionInput 新版本的覆盖项，文件引用必填，其余为 nil 时沿用前序版本.
// PatientID 非空时必须与前序版本一致.
type VersionInput struct {
	PatientID   string
	Blob        BlobRef
	Title       *string
	Description *string
	ExpiresAt   *time.Time
	IsVerified  *bool

	SignatureType       *model.SignatureType
	SignatureDate       *time.Time
	SignatureSummary    *string
	ExternalSignatureID *string
}

// CreateVersion 基于前序版本创建新版本.
// 新版本写入与前序版本置为 Substituido 在同一事务内完成，前序版本已被替换时返回 ConflictError.
func (s *DocumentService) CreateVersion(ctx context.Context, actor ActorContext, documentID string, in VersionInput) (doc *model.Document, err error) {
	ctx, done := observe(ctx, "create_version")
	defer done(&err)

	if in.Blob.Path == "" {
		return nil, validationf("create_version", "blob reference is required")
	}

	pred, err := s.loadPredecessor(ctx, documentID, &in)
	if err != nil {
		return nil, err
	}

	return s.insertVersion(ctx, actor, pred, &in)
}

// UploadVersion 存储新文件后创建新版本，失败时补偿删除对象.
func (s *DocumentService) UploadVersion(ctx context.Context, actor ActorContext, documentID string, in VersionInput, file FileUpload) (doc *model.Document, err error) {
	ctx, done := observe(ctx, "upload_version")
	defer done(&err)

	pred, err := s.loadPredecessor(ctx, documentID, &in)
	if err != nil {
		return nil, err
	}

	ref, err := s.storeBlob(ctx, pred.PatientID, file)
	if err != nil {
		return nil, err
	}

	in.Blob = ref

	doc, err = s.insertVersion(ctx, actor, pred, &in)
	if err != nil {
		s.discardBlob(ctx, ref.Path, err)
		return nil, err
	}

	return doc, nil
}

func (s *DocumentService) loadPredecessor(ctx context.Context, documentID string, in *VersionInput) (*model.Document, error) {
	const op = "create_version"

	if in.SignatureType != nil && !in.SignatureType.Valid() {
		return nil, validationf(op, "unknown signature type %q", *in.SignatureType)
	}

	pred, err := s.docs.Get(ctx, documentID)
	if err != nil {
		return nil, persistErr(op, err)
	}

	if in.PatientID != "" && in.PatientID != pred.PatientID {
		return nil, &Error{Kind: KindOwnership, Op: op, Msg: "document does not belong to patient " + in.PatientID}
	}

	if pred.Status == model.StatusSuperseded {
		return nil, &Error{Kind: KindConflict, Op: op, Msg: "document " + pred.ID + " is already superseded"}
	}

	return pred, nil
}

func (s *DocumentService) insertVersion(ctx context.Context, actor ActorContext, pred *model.Document, in *VersionInput) (*model.Document, error) {
	now := s.clock.Now()

	next := pred.Clone()
	next.ID = s.docIDs.New()
	next.Version = pred.Version + 1
	next.PreviousDocumentID = &pred.ID
	next.Status = model.StatusActive
	next.DeletedAt = nil
	next.DeletedBy = nil
	next.UpdatedAt = nil
	next.UpdatedBy = nil
	next.UploadedAt = now
	next.UploadedBy = actorID(actor)

	if next.LineageID == "" {
		next.LineageID = pred.ID
	}

	next.StoragePath = in.Blob.Path
	next.ContentHash = in.Blob.ContentHash
	next.SizeBytes = in.Blob.SizeBytes
	next.MimeType = in.Blob.MimeType
	next.Extension = in.Blob.Extension
	next.OriginalFileName = firstNonEmpty(in.Blob.OriginalFileName, pred.OriginalFileName)

	if in.Title != nil {
		next.Title = *in.Title
	}

	if in.Description != nil {
		next.Description = *in.Description
	}

	if in.ExpiresAt != nil {
		next.ExpiresAt = in.ExpiresAt
	}

	if in.IsVerified != nil {
		setVerified(next, *in.IsVerified, now, actor)
	}

	if in.SignatureType != nil {
		next.SignatureType = *in.SignatureType
	}

	if in.SignatureDate != nil {
		next.SignatureDate = in.SignatureDate
	}

	if in.SignatureSummary != nil {
		next.SignatureSummary = in.SignatureSummary
	}

	if in.ExternalSignatureID != nil {
		next.ExternalSignatureID = in.ExternalSignatureID
	}

	if err := s.docs.CreateVersion(ctx, pred.ID, pred.Version, next); err != nil {
		return nil, persistErr("create_version", err)
	}

	s.audit.Emit(ctx, actor, next, model.ActionVersionCreate, model.JSONMap{
		"previous_document_id": pred.ID,
		"previous_version":     pred.Version,
		"version":              next.Version,
		"storage_path":         next.StoragePath,
	})

	if action, ok := lookupTransition(pred.Status, model.StatusSuperseded, viaVersion); ok {
		s.audit.Emit(ctx, actor, pred, action, model.JSONMap{
			"from":         string(pred.Status),
			"to":           string(model.StatusSuperseded),
			"reason":       "new_version",
			"successor_id": next.ID,
		})
	}

	s.logger.Info().
		Str("document_id", next.ID).
		Str("previous_document_id", pred.ID).
		Int("version", next.Version).
		Msg("document version created")

	return next, nil
}
