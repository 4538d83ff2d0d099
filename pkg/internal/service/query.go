package service

import (
	"context"
	"strings"
	"time"

	"github.com/yeisme/casefile/pkg/internal/model"
	"github.com/yeisme/casefile/pkg/internal/repository"
)

// ListFilter 列表过滤条件，各条件取交集.
// 精确匹配字段取空、all 或 Todos 时不限制.
type ListFilter struct {
	Category      string
	Domain        string
	OriginModule  string
	Status        string
	MinAccessRole string
	Text          string
	Subcategory   string
	Tags          []string
	UploadedFrom  *time.Time
	UploadedTo    *time.Time
	OrderBy       string // uploadedAt | title
	OrderDir      string // asc | desc
}

// Page 分页参数，Page 从 1 开始.
type Page struct {
	Page     int
	PageSize int
}

// DocumentView 附带人员显示名的文档.
type DocumentView struct {
	model.Document
	UploadedByName string `json:"uploaded_by_name"`
	UpdatedByName  string `json:"updated_by_name,omitempty"`
	DeletedByName  string `json:"deleted_by_name,omitempty"`
	VerifiedByName string `json:"verified_by_name,omitempty"`
}

// ListResult 分页结果，Total 为过滤后的总数.
type ListResult struct {
	Items    []DocumentView `json:"items"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// EventView 附带操作人显示名的审计事件.
type EventView struct {
	model.DocumentEvent
	ActorName string `json:"actor_name"`
}

func isNoConstraint(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, "all") || strings.EqualFold(v, "todos")
}

func exactFilter(v string) string {
	if isNoConstraint(v) {
		return ""
	}

	return strings.TrimSpace(v)
}

func (s *DocumentService) buildQuery(f ListFilter, p Page) (repository.ListQuery, Page, error) {
	const op = "list"

	q := repository.ListQuery{
		Category:      exactFilter(f.Category),
		Domain:        exactFilter(f.Domain),
		OriginModule:  exactFilter(f.OriginModule),
		Status:        exactFilter(f.Status),
		MinAccessRole: exactFilter(f.MinAccessRole),
		Text:          strings.TrimSpace(f.Text),
		Subcategory:   strings.TrimSpace(f.Subcategory),
		Tags:          NormalizeTags(f.Tags...),
		UploadedFrom:  f.UploadedFrom,
		UploadedTo:    f.UploadedTo,
	}

	switch {
	case q.Category != "" && !model.Category(q.Category).Valid():
		return q, p, validationf(op, "unknown category %q", q.Category)
	case q.Domain != "" && !model.Domain(q.Domain).Valid():
		return q, p, validationf(op, "unknown domain %q", q.Domain)
	case q.Status != "" && !model.Status(q.Status).Valid():
		return q, p, validationf(op, "unknown status %q", q.Status)
	case q.MinAccessRole != "" && !model.AccessRole(q.MinAccessRole).Valid():
		return q, p, validationf(op, "unknown access role %q", q.MinAccessRole)
	case f.UploadedFrom != nil && f.UploadedTo != nil && f.UploadedFrom.After(*f.UploadedTo):
		return q, p, validationf(op, "uploaded_from is after uploaded_to")
	}

	switch strings.ToLower(f.OrderBy) {
	case "", "uploadedat", "uploaded_at":
		q.OrderBy = repository.OrderUploadedAt
	case "title":
		q.OrderBy = repository.OrderTitle
	default:
		return q, p, validationf(op, "unsupported order_by %q", f.OrderBy)
	}

	switch strings.ToLower(f.OrderDir) {
	case "", "desc":
		q.Desc = true
	case "asc":
	default:
		return q, p, validationf(op, "unsupported order_dir %q", f.OrderDir)
	}

	if p.Page < 0 || p.PageSize < 0 {
		return q, p, validationf(op, "page and page_size must be positive")
	}

	if p.Page == 0 {
		p.Page = 1
	}

	if p.PageSize == 0 {
		p.PageSize = s.cfg.DefaultPageSize
	}

	if p.PageSize > s.cfg.MaxPageSize {
		p.PageSize = s.cfg.MaxPageSize
	}

	q.Offset = (p.Page - 1) * p.PageSize
	q.Limit = p.PageSize

	return q, p, nil
}

// List 分页列出患者文档并解析上传人显示名.
func (s *DocumentService) List(ctx context.Context, patientID string, f ListFilter, p Page) (res *ListResult, err error) {
	ctx, done := observe(ctx, "list")
	defer done(&err)

	if strings.TrimSpace(patientID) == "" {
		return nil, validationf("list", "patient id is required")
	}

	q, p, err := s.buildQuery(f, p)
	if err != nil {
		return nil, err
	}

	docs, total, err := s.docs.List(ctx, patientID, q)
	if err != nil {
		return nil, &Error{Kind: KindPersistence, Op: "list", Msg: "query documents", Err: err}
	}

	return &ListResult{
		Items:    s.enrich(ctx, docs),
		Total:    total,
		Page:     p.Page,
		PageSize: p.PageSize,
	}, nil
}

// GetVersionHistory 返回同一谱系的全部版本，版本号降序.
func (s *DocumentService) GetVersionHistory(ctx context.Context, documentID string) (docs []model.Document, err error) {
	ctx, done := observe(ctx, "version_history")
	defer done(&err)

	doc, err := s.docs.Get(ctx, documentID)
	if err != nil {
		return nil, persistErr("version_history", err)
	}

	lineage := doc.LineageID
	if lineage == "" {
		lineage = doc.ID
	}

	docs, err = s.docs.ListLineage(ctx, lineage, doc.PatientID)
	if err != nil {
		return nil, persistErr("version_history", err)
	}

	return docs, nil
}

// GetAuditTrail 返回文档的审计事件，时间倒序.
func (s *DocumentService) GetAuditTrail(ctx context.Context, documentID string) (trail []EventView, err error) {
	ctx, done := observe(ctx, "audit_trail")
	defer done(&err)

	if _, err := s.docs.Get(ctx, documentID); err != nil {
		return nil, persistErr("audit_trail", err)
	}

	events, err := s.events.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, persistErr("audit_trail", err)
	}

	ids := make([]string, 0, len(events))
	for _, e := range events {
		if e.ActorUserID != nil {
			ids = append(ids, *e.ActorUserID)
		}
	}

	names := s.displayNames(ctx, ids)

	trail = make([]EventView, len(events))
	for i, e := range events {
		trail[i] = EventView{DocumentEvent: e}
		if e.ActorUserID != nil {
			trail[i].ActorName = names[*e.ActorUserID]
		}
	}

	return trail, nil
}

// GetDetails 返回文档详情并记录一次查看.
func (s *DocumentService) GetDetails(ctx context.Context, actor ActorContext, documentID string) (view *DocumentView, err error) {
	ctx, done := observe(ctx, "details")
	defer done(&err)

	doc, err := s.docs.Get(ctx, documentID)
	if err != nil {
		return nil, persistErr("details", err)
	}

	views := s.enrich(ctx, []model.Document{*doc})

	s.audit.Emit(ctx, actor, doc, model.ActionView, model.JSONMap{"source": "details"})

	return &views[0], nil
}

func (s *DocumentService) enrich(ctx context.Context, docs []model.Document) []DocumentView {
	ids := make([]string, 0, len(docs)*2)
	for _, d := range docs {
		ids = append(ids, d.UploadedBy, deref(d.UpdatedBy), deref(d.DeletedBy), deref(d.VerifiedBy))
	}

	names := s.displayNames(ctx, ids)

	views := make([]DocumentView, len(docs))
	for i, d := range docs {
		views[i] = DocumentView{
			Document:       d,
			UploadedByName: names[d.UploadedBy],
			UpdatedByName:  names[deref(d.UpdatedBy)],
			DeletedByName:  names[deref(d.DeletedBy)],
			VerifiedByName: names[deref(d.VerifiedBy)],
		}
	}

	return views
}

// displayNames 解析失败时返回空映射，调用方得到空名字.
func (s *DocumentService) displayNames(ctx context.Context, ids []string) map[string]string {
	ids = uniqueNonEmpty(ids)
	if len(ids) == 0 || s.directory == nil {
		return map[string]string{}
	}

	names, err := s.directory.DisplayNames(ctx, ids)
	if err != nil {
		s.logger.Debug().Err(err).Int("ids", len(ids)).Msg("display name lookup failed")
	}

	if names == nil {
		names = map[string]string{}
	}

	return names
}

func deref(p *string) string {
	if p == nil {
		return ""
	}

	return *p
}
