package model

import (
	"time"
)

// Document 病历档案中的一份文档版本.
// 同一逻辑文档的所有版本共享 LineageID（即第 1 版的 ID），(lineage_id, version) 唯一.
type Document struct {
	ID        string `gorm:"primaryKey;size:36"                                      json:"id"`
	PatientID string `gorm:"size:64;not null;index:idx_documents_patient_uploaded,priority:1" json:"patient_id"`
	TenantID  string `gorm:"size:64;not null;index"                                  json:"tenant_id"`

	Title         string     `gorm:"size:255;not null"            json:"title"`
	Description   string     `gorm:"type:text"                    json:"description"`
	Category      Category   `gorm:"size:32;not null;index"       json:"category"`
	Domain        Domain     `gorm:"size:32;not null;index"       json:"domain"`
	Subcategory   string     `gorm:"size:128"                     json:"subcategory"`
	OriginModule  string     `gorm:"size:64;not null;index"       json:"origin_module"`
	Tags          StringList `gorm:"type:text"                    json:"tags"`
	PublicNotes   string     `gorm:"type:text"                    json:"public_notes"`
	InternalNotes string     `gorm:"type:text"                    json:"internal_notes"`
	ExternalRef   string     `gorm:"size:128"                     json:"external_ref"`

	LineageID          string  `gorm:"size:36;not null;uniqueIndex:idx_documents_lineage_version,priority:1" json:"lineage_id"`
	Version            int     `gorm:"not null;uniqueIndex:idx_documents_lineage_version,priority:2"         json:"version"`
	PreviousDocumentID *string `gorm:"size:36;index"                                                         json:"previous_document_id"`

	Status    Status     `gorm:"size:16;not null;index" json:"status"`
	ExpiresAt *time.Time `gorm:"index"                  json:"expires_at"`
	DeletedAt *time.Time `json:"deleted_at"`
	DeletedBy *string    `gorm:"size:64"                json:"deleted_by"`

	StoragePath      string `gorm:"size:1024;not null;index" json:"storage_path"`
	OriginalFileName string `gorm:"size:512"                 json:"original_file_name"`
	SizeBytes        int64  `json:"size_bytes"`
	MimeType         string `gorm:"size:255"                 json:"mime_type"`
	Extension        string `gorm:"size:32"                  json:"extension"`
	ContentHash      string `gorm:"size:128"                 json:"content_hash"`

	IsVerified          bool          `gorm:"not null"               json:"is_verified"`
	VerifiedAt          *time.Time    `json:"verified_at"`
	VerifiedBy          *string       `gorm:"size:64"                json:"verified_by"`
	SignatureType       SignatureType `gorm:"size:16;not null"       json:"signature_type"`
	SignatureDate       *time.Time    `json:"signature_date"`
	SignatureSummary    *string       `gorm:"type:text"              json:"signature_summary"`
	ExternalSignatureID *string       `gorm:"size:128"               json:"external_signature_id"`

	Confidential    bool       `gorm:"not null"               json:"confidential"`
	ClinicalVisible bool       `gorm:"not null"               json:"clinical_visible"`
	AdminFinVisible bool       `gorm:"not null"               json:"admin_fin_visible"`
	MinAccessRole   AccessRole `gorm:"size:16"                json:"min_access_role"`

	ContractID          *string `gorm:"size:64;index" json:"contract_id"`
	FinanceEntryID      *string `gorm:"size:64;index" json:"finance_entry_id"`
	ClinicalVisitID     *string `gorm:"size:64;index" json:"clinical_visit_id"`
	ClinicalEvolutionID *string `gorm:"size:64;index" json:"clinical_evolution_id"`
	PrescriptionID      *string `gorm:"size:64;index" json:"prescription_id"`
	RelatedObjectID     *string `gorm:"size:64;index" json:"related_object_id"`

	UploadedAt time.Time  `gorm:"not null;index:idx_documents_patient_uploaded,priority:2" json:"uploaded_at"`
	UploadedBy string     `gorm:"size:64"                                                  json:"uploaded_by"`
	UpdatedAt  *time.Time `gorm:"autoUpdateTime:false"                                     json:"updated_at"`
	UpdatedBy  *string    `gorm:"size:64"                                                  json:"updated_by"`

	// 小写折叠后的检索列，由仓储在写入时维护.
	TitleFold       string `gorm:"type:text" json:"-"`
	SubcategoryFold string `gorm:"type:text" json:"-"`
}

// TableName 指定表名.
func (Document) TableName() string { return "documents" }

// Clone 深拷贝，切片与指针字段不与原对象共享.
func (d *Document) Clone() *Document {
	c := *d
	c.Tags = append(StringList(nil), d.Tags...)
	c.PreviousDocumentID = cloneStr(d.PreviousDocumentID)
	c.ExpiresAt = cloneTime(d.ExpiresAt)
	c.DeletedAt = cloneTime(d.DeletedAt)
	c.DeletedBy = cloneStr(d.DeletedBy)
	c.VerifiedAt = cloneTime(d.VerifiedAt)
	c.VerifiedBy = cloneStr(d.VerifiedBy)
	c.SignatureDate = cloneTime(d.SignatureDate)
	c.SignatureSummary = cloneStr(d.SignatureSummary)
	c.ExternalSignatureID = cloneStr(d.ExternalSignatureID)
	c.ContractID = cloneStr(d.ContractID)
	c.FinanceEntryID = cloneStr(d.FinanceEntryID)
	c.ClinicalVisitID = cloneStr(d.ClinicalVisitID)
	c.ClinicalEvolutionID = cloneStr(d.ClinicalEvolutionID)
	c.PrescriptionID = cloneStr(d.PrescriptionID)
	c.RelatedObjectID = cloneStr(d.RelatedObjectID)
	c.UpdatedAt = cloneTime(d.UpdatedAt)
	c.UpdatedBy = cloneStr(d.UpdatedBy)

	return &c
}

// Snapshot 分类信息快照，写入审计事件详情.
func (d *Document) Snapshot() map[string]any {
	return map[string]any{
		"title":             d.Title,
		"category":          string(d.Category),
		"domain":            string(d.Domain),
		"subcategory":       d.Subcategory,
		"origin_module":     d.OriginModule,
		"tags":              []string(d.Tags),
		"version":           d.Version,
		"status":            string(d.Status),
		"confidential":      d.Confidential,
		"clinical_visible":  d.ClinicalVisible,
		"admin_fin_visible": d.AdminFinVisible,
		"min_access_role":   string(d.MinAccessRole),
		"storage_path":      d.StoragePath,
		"content_hash":      d.ContentHash,
	}
}

func cloneStr(p *string) *string {
	if p == nil {
		return nil
	}

	v := *p

	return &v
}

func cloneTime(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}

	v := *p

	return &v
}
