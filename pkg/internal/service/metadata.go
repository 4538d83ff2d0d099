package service

import (
	"context"
	"time"

	"github.com/bytedance/sonic"

	"github.com/yeisme/casefile/pkg/internal/model"
)

// Optional 区分字段缺省与显式 null.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// Some 构造已设置的值.
func Some[T any](v T) Optional[T] { return Optional[T]{Set: true, Value: &v} }

// Null 构造显式置空.
func Null[T any]() Optional[T] { return Optional[T]{Set: true} }

// UnmarshalJSON 仅在字段出现时被调用.
func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}

	var v T
	if err := sonic.Unmarshal(b, &v); err != nil {
		return err
	}

	o.Value = &v

	return nil
}

// MetadataPatch 元数据白名单补丁，JSON 中未列出的字段被忽略.
type MetadataPatch struct {
	Title         *string         `json:"title"`
	Description   *string         `json:"description"`
	Category      *model.Category `json:"category"`
	Domain        *model.Domain   `json:"domain"`
	Subcategory   *string         `json:"subcategory"`
	OriginModule  *string         `json:"origin_module"`
	Tags          *Tags           `json:"tags"`
	PublicNotes   *string         `json:"public_notes"`
	InternalNotes *string         `json:"internal_notes"`
	ExternalRef   *string         `json:"external_ref"`

	Confidential    *bool             `json:"confidential"`
	ClinicalVisible *bool             `json:"clinical_visible"`
	AdminFinVisible *bool             `json:"admin_fin_visible"`
	MinAccessRole   *model.AccessRole `json:"min_access_role"`

	ContractID          Optional[string] `json:"contract_id"`
	FinanceEntryID      Optional[string] `json:"finance_entry_id"`
	ClinicalVisitID     Optional[string] `json:"clinical_visit_id"`
	ClinicalEvolutionID Optional[string] `json:"clinical_evolution_id"`
	PrescriptionID      Optional[string] `json:"prescription_id"`
	RelatedObjectID     Optional[string] `json:"related_object_id"`

	SignatureType       *model.SignatureType `json:"signature_type"`
	SignatureDate       Optional[time.Time]  `json:"signature_date"`
	SignatureSummary    Optional[string]     `json:"signature_summary"`
	ExternalSignatureID Optional[string]     `json:"external_signature_id"`

	ExpiresAt  Optional[time.Time] `json:"expires_at"`
	IsVerified *bool               `json:"is_verified"`
	Status     *model.Status       `json:"status"`
}

func (p *MetadataPatch) validate() error {
	const op = "update_metadata"

	switch {
	case p.Category != nil && !p.Category.Valid():
		return validationf(op, "unknown category %q", *p.Category)
	case p.Domain != nil && !p.Domain.Valid():
		return validationf(op, "unknown domain %q", *p.Domain)
	case p.MinAccessRole != nil && !p.MinAccessRole.Valid():
		return validationf(op, "unknown access role %q", *p.MinAccessRole)
	case p.SignatureType != nil && !p.SignatureType.Valid():
		return validationf(op, "unknown signature type %q", *p.SignatureType)
	case p.Status != nil && !p.Status.Valid():
		return validationf(op, "unknown status %q", *p.Status)
	}

	return nil
}

// changeSet 记录被补丁触及且值发生变化的字段.
type changeSet []string

func setField[T comparable](c *changeSet, name string, dst *T, src *T) {
	if src == nil || *dst == *src {
		return
	}

	*dst = *src
	*c = append(*c, name)
}

func setOptional[T comparable](c *changeSet, name string, dst **T, src Optional[T]) {
	if !src.Set {
		return
	}

	cur := *dst
	if (cur == nil && src.Value == nil) || (cur != nil && src.Value != nil && *cur == *src.Value) {
		return
	}

	if src.Value == nil {
		*dst = nil
	} else {
		v := *src.Value
		*dst = &v
	}

	*c = append(*c, name)
}

func setTime(c *changeSet, name string, dst **time.Time, src Optional[time.Time]) {
	if !src.Set {
		return
	}

	cur := *dst
	if (cur == nil && src.Value == nil) || (cur != nil && src.Value != nil && cur.Equal(*src.Value)) {
		return
	}

	if src.Value == nil {
		*dst = nil
	} else {
		v := src.Value.UTC()
		*dst = &v
	}

	*c = append(*c, name)
}

func (p *MetadataPatch) apply(doc *model.Document) changeSet {
	var c changeSet

	setField(&c, "title", &doc.Title, p.Title)
	setField(&c, "description", &doc.Description, p.Description)
	setField(&c, "category", &doc.Category, p.Category)
	setField(&c, "domain", &doc.Domain, p.Domain)
	setField(&c, "subcategory", &doc.Subcategory, p.Subcategory)
	setField(&c, "origin_module", &doc.OriginModule, p.OriginModule)
	setField(&c, "public_notes", &doc.PublicNotes, p.PublicNotes)
	setField(&c, "internal_notes", &doc.InternalNotes, p.InternalNotes)
	setField(&c, "external_ref", &doc.ExternalRef, p.ExternalRef)
	setField(&c, "confidential", &doc.Confidential, p.Confidential)
	setField(&c, "clinical_visible", &doc.ClinicalVisible, p.ClinicalVisible)
	setField(&c, "admin_fin_visible", &doc.AdminFinVisible, p.AdminFinVisible)
	setField(&c, "min_access_role", &doc.MinAccessRole, p.MinAccessRole)
	setField(&c, "signature_type", &doc.SignatureType, p.SignatureType)

	if p.Tags != nil {
		tags := NormalizeTags(*p.Tags...)
		if !sameTags(doc.Tags, tags) {
			doc.Tags = model.StringList(tags)
			c = append(c, "tags")
		}
	}

	setOptional(&c, "contract_id", &doc.ContractID, p.ContractID)
	setOptional(&c, "finance_entry_id", &doc.FinanceEntryID, p.FinanceEntryID)
	setOptional(&c, "clinical_visit_id", &doc.ClinicalVisitID, p.ClinicalVisitID)
	setOptional(&c, "clinical_evolution_id", &doc.ClinicalEvolutionID, p.ClinicalEvolutionID)
	setOptional(&c, "prescription_id", &doc.PrescriptionID, p.PrescriptionID)
	setOptional(&c, "related_object_id", &doc.RelatedObjectID, p.RelatedObjectID)
	setOptional(&c, "signature_summary", &doc.SignatureSummary, p.SignatureSummary)
	setOptional(&c, "external_signature_id", &doc.ExternalSignatureID, p.ExternalSignatureID)
	setTime(&c, "signature_date", &doc.SignatureDate, p.SignatureDate)
	setTime(&c, "expires_at", &doc.ExpiresAt, p.ExpiresAt)

	return c
}

func sameTags(a []string, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

// UpdateMetadata 按白名单更新元数据.
// 核验开关同步设置或清空核验戳；状态变化由迁移表决定是否允许及对应事件.
func (s *DocumentService) UpdateMetadata(ctx context.Context, actor ActorContext, documentID string, patch MetadataPatch) (doc *model.Document, err error) {
	const op = "update_metadata"

	ctx, done := observe(ctx, op)
	defer done(&err)

	if err := patch.validate(); err != nil {
		return nil, err
	}

	doc, err = s.docs.Get(ctx, documentID)
	if err != nil {
		return nil, persistErr(op, err)
	}

	before := doc.Status
	now := s.clock.Now()

	var statusAction model.EventAction

	if patch.Status != nil && *patch.Status != before {
		action, ok := lookupTransition(before, *patch.Status, viaPatch)
		if !ok {
			return nil, validationf(op, "status change %s -> %s is not allowed", before, *patch.Status)
		}

		if action == model.ActionRestore {
			has, err := s.docs.HasSuccessor(ctx, doc.ID)
			if err != nil {
				return nil, persistErr(op, err)
			}

			if has {
				return nil, validationf(op, "document %s has a newer version and cannot be restored", doc.ID)
			}
		}

		statusAction = action
	}

	changed := patch.apply(doc)

	var verifyAction model.EventAction

	if patch.IsVerified != nil && *patch.IsVerified != doc.IsVerified {
		setVerified(doc, *patch.IsVerified, now, actor)

		verifyAction = model.ActionUnverify
		if *patch.IsVerified {
			verifyAction = model.ActionVerify
		}

		changed = append(changed, "is_verified")
	}

	switch statusAction {
	case model.ActionArchive:
		stampArchived(doc, now, actor)
	case model.ActionRestore:
		doc.Status = model.StatusActive
		doc.DeletedAt = nil
		doc.DeletedBy = nil
	}

	if statusAction != "" {
		changed = append(changed, "status")
	}

	doc.UpdatedAt = &now
	doc.UpdatedBy = actorRef(actor)

	if err := s.docs.Update(ctx, doc, before); err != nil {
		return nil, persistErr(op, err)
	}

	s.audit.Emit(ctx, actor, doc, model.ActionUpdate, model.JSONMap{"changed_fields": append([]string{}, changed...)})

	if verifyAction != "" {
		s.audit.Emit(ctx, actor, doc, verifyAction, nil)
	}

	if statusAction != "" {
		s.audit.Emit(ctx, actor, doc, statusAction, model.JSONMap{"from": string(before), "to": string(doc.Status)})
	}

	return doc, nil
}

// Archive 归档文档并记录删除戳，重复归档会刷新删除戳.
func (s *DocumentService) Archive(ctx context.Context, actor ActorContext, documentID string) (doc *model.Document, err error) {
	const op = "archive"

	ctx, done := observe(ctx, op)
	defer done(&err)

	doc, err = s.docs.Get(ctx, documentID)
	if err != nil {
		return nil, persistErr(op, err)
	}

	before := doc.Status

	action, ok := lookupTransition(before, model.StatusArchived, viaArchive)
	if !ok {
		return nil, validationf(op, "document in status %s cannot be archived", before)
	}

	now := s.clock.Now()
	stampArchived(doc, now, actor)

	doc.UpdatedAt = &now
	doc.UpdatedBy = actorRef(actor)

	if err := s.docs.Update(ctx, doc, before); err != nil {
		return nil, persistErr(op, err)
	}

	s.audit.Emit(ctx, actor, doc, action, model.JSONMap{"from": string(before)})

	return doc, nil
}

func stampArchived(doc *model.Document, now time.Time, actor ActorContext) {
	at := now
	doc.Status = model.StatusArchived
	doc.DeletedAt = &at
	doc.DeletedBy = actorRef(actor)
}
