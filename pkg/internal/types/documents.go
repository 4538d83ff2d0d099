// Package types 定义 HTTP 接口的请求与响应结构.
package types

import (
	"strings"
	"time"

	"github.com/yeisme/casefile/pkg/internal/model"
	"github.com/yeisme/casefile/pkg/internal/service"
)

// UploadDocumentForm 上传新文档的 multipart 表单，文件字段名为 file.
type UploadDocumentForm struct {
	Title         string `form:"title"          rule:"max=255"`
	Description   string `form:"description"`
	Category      string `form:"category"       rule:"required,doc_category"`
	Domain        string `form:"domain"         rule:"required,doc_domain"`
	Subcategory   string `form:"subcategory"    rule:"max=120"`
	OriginModule  string `form:"origin_module"  rule:"max=120"`
	Tags          string `form:"tags"` // 逗号分隔
	PublicNotes   string `form:"public_notes"`
	InternalNotes string `form:"internal_notes"`
	ExternalRef   string `form:"external_ref"   rule:"max=255"`

	ContractID          string `form:"contract_id"`
	FinanceEntryID      string `form:"finance_entry_id"`
	ClinicalVisitID     string `form:"clinical_visit_id"`
	ClinicalEvolutionID string `form:"clinical_evolution_id"`
	PrescriptionID      string `form:"prescription_id"`
	RelatedObjectID     string `form:"related_object_id"`

	ExpiresAt           *time.Time `form:"expires_at"     time_format:"2006-01-02T15:04:05Z07:00"`
	IsVerified          bool       `form:"is_verified"`
	SignatureType       string     `form:"signature_type" rule:"omitempty,signature_type"`
	SignatureDate       *time.Time `form:"signature_date" time_format:"2006-01-02T15:04:05Z07:00"`
	SignatureSummary    string     `form:"signature_summary"`
	ExternalSignatureID string     `form:"external_signature_id"`

	Confidential    *bool  `form:"confidential"`
	ClinicalVisible *bool  `form:"clinical_visible"`
	AdminFinVisible *bool  `form:"admin_fin_visible"`
	MinAccessRole   string `form:"min_access_role" rule:"omitempty,access_role"`
}

// CreateInput 转换为服务层输入，文件引用由服务在存储后填充.
func (f *UploadDocumentForm) CreateInput(patientID string) service.CreateInput {
	return service.CreateInput{
		PatientID:     patientID,
		Title:         f.Title,
		Description:   f.Description,
		Category:      model.Category(f.Category),
		Domain:        model.Domain(f.Domain),
		Subcategory:   f.Subcategory,
		OriginModule:  f.OriginModule,
		Tags:          service.NormalizeTags(f.Tags),
		PublicNotes:   f.PublicNotes,
		InternalNotes: f.InternalNotes,
		ExternalRef:   f.ExternalRef,
		Links: service.Links{
			ContractID:          optional(f.ContractID),
			FinanceEntryID:      optional(f.FinanceEntryID),
			ClinicalVisitID:     optional(f.ClinicalVisitID),
			ClinicalEvolutionID: optional(f.ClinicalEvolutionID),
			PrescriptionID:      optional(f.PrescriptionID),
			RelatedObjectID:     optional(f.RelatedObjectID),
		},
		ExpiresAt:  f.ExpiresAt,
		IsVerified: f.IsVerified,
		Signature: service.Signature{
			Type:       model.SignatureType(f.SignatureType),
			Date:       f.SignatureDate,
			Summary:    optional(f.SignatureSummary),
			ExternalID: optional(f.ExternalSignatureID),
		},
		Confidential:    f.Confidential,
		ClinicalVisible: f.ClinicalVisible,
		AdminFinVisible: f.AdminFinVisible,
		MinAccessRole:   model.AccessRole(f.MinAccessRole),
	}
}

// UploadVersionForm 上传新版本的 multipart 表单，未提交的字段沿用前序版本.
type UploadVersionForm struct {
	PatientID           string     `form:"patient_id"`
	Title               *string    `form:"title"          rule:"omitempty,max=255"`
	Description         *string    `form:"description"`
	ExpiresAt           *time.Time `form:"expires_at"     time_format:"2006-01-02T15:04:05Z07:00"`
	IsVerified          *bool      `form:"is_verified"`
	SignatureType       *string    `form:"signature_type" rule:"omitempty,signature_type"`
	SignatureDate       *time.Time `form:"signature_date" time_format:"2006-01-02T15:04:05Z07:00"`
	SignatureSummary    *string    `form:"signature_summary"`
	ExternalSignatureID *string    `form:"external_signature_id"`
}

// VersionInput 转换为服务层输入.
func (f *UploadVersionForm) VersionInput() service.VersionInput {
	in := service.VersionInput{
		PatientID:           f.PatientID,
		Title:               f.Title,
		Description:         f.Description,
		ExpiresAt:           f.ExpiresAt,
		IsVerified:          f.IsVerified,
		SignatureDate:       f.SignatureDate,
		SignatureSummary:    f.SignatureSummary,
		ExternalSignatureID: f.ExternalSignatureID,
	}

	if f.SignatureType != nil {
		st := model.SignatureType(*f.SignatureType)
		in.SignatureType = &st
	}

	return in
}

// ListDocumentsQuery 文档列表查询参数.
// category / domain / status 取空、all 或 Todos 时不限制.
type ListDocumentsQuery struct {
	Category      string     `form:"category"        rule:"omitempty,doc_filter"`
	Domain        string     `form:"domain"          rule:"omitempty,doc_filter"`
	Status        string     `form:"status"          rule:"omitempty,doc_filter"`
	OriginModule  string     `form:"origin_module"`
	MinAccessRole string     `form:"min_access_role"`
	Q             string     `form:"q"               rule:"max=200"`
	Subcategory   string     `form:"subcategory"`
	Tags          string     `form:"tags"` // 逗号分隔，须全部命中
	UploadedFrom  *time.Time `form:"uploaded_from"   time_format:"2006-01-02T15:04:05Z07:00"`
	UploadedTo    *time.Time `form:"uploaded_to"     time_format:"2006-01-02T15:04:05Z07:00"`
	OrderBy       string     `form:"order_by"        rule:"omitempty,oneof=uploadedAt title"`
	OrderDir      string     `form:"order_dir"       rule:"omitempty,oneof=asc desc"`
	Page          int        `form:"page"            rule:"omitempty,min=1"`
	PageSize      int        `form:"page_size"       rule:"omitempty,min=1"`
}

// Filter 转换为服务层过滤条件与分页.
func (q *ListDocumentsQuery) Filter() (service.ListFilter, service.Page) {
	var tags []string
	if q.Tags != "" {
		tags = service.NormalizeTags(q.Tags)
	}

	return service.ListFilter{
			Category:      q.Category,
			Domain:        q.Domain,
			OriginModule:  q.OriginModule,
			Status:        q.Status,
			MinAccessRole: q.MinAccessRole,
			Text:          q.Q,
			Subcategory:   q.Subcategory,
			Tags:          tags,
			UploadedFrom:  q.UploadedFrom,
			UploadedTo:    q.UploadedTo,
			OrderBy:       q.OrderBy,
			OrderDir:      q.OrderDir,
		}, service.Page{
			Page:     q.Page,
			PageSize: q.PageSize,
		}
}

// IssueLinkRequest 签发预览/下载链接，ref 为文档 ID 或存储路径.
type IssueLinkRequest struct {
	Ref    string `json:"ref"    rule:"required"`
	Action string `json:"action" rule:"required,oneof=preview download"`
}

// DocumentResult 写操作的结果.
type DocumentResult struct {
	Success    bool   `json:"success"`
	DocumentID string `json:"documentId,omitempty"`
}

// DocumentResponse 单个文档的响应.
type DocumentResponse struct {
	Success  bool                  `json:"success"`
	Document *service.DocumentView `json:"document"`
}

// UpdatedResponse 元数据更新后的文档记录.
type UpdatedResponse struct {
	Success  bool            `json:"success"`
	Document *model.Document `json:"document"`
}

// VersionsResponse 版本链响应，按版本号降序.
type VersionsResponse struct {
	Success  bool             `json:"success"`
	Versions []model.Document `json:"versions"`
}

// EventsResponse 审计事件响应，按时间倒序.
type EventsResponse struct {
	Success bool                `json:"success"`
	Events  []service.EventView `json:"events"`
}

// ListDocumentsResponse 列表响应.
type ListDocumentsResponse struct {
	Success bool `json:"success"`
	*service.ListResult
}

// LinkResponse 链接签发结果.
type LinkResponse struct {
	Success   bool   `json:"success"`
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"` // 秒
}

// ErrorResponse 失败响应，Details 为字段级校验信息.
type ErrorResponse struct {
	Success bool              `json:"success"`
	Kind    string            `json:"kind,omitempty"`
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	return &s
}
