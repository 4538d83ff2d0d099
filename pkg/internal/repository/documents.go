package repository

import (
	"context"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeisme/casefile/pkg/internal/model"
)

// OrderField 列表排序字段.
type OrderField string

const (
	OrderUploadedAt OrderField = "uploaded_at"
	OrderTitle      OrderField = "title"
)

// ListQuery 已规范化的列表查询条件，空字符串与 nil 表示不限制.
type ListQuery struct {
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
	OrderBy       OrderField
	Desc          bool
	Offset        int
	Limit         int
}

// Documents 文档仓储.
type Documents struct {
	db *gorm.DB
}

// NewDocuments 创建文档仓储.
func NewDocuments(db *gorm.DB) *Documents {
	return &Documents{db: db}
}

// Insert 插入新文档.
func (r *Documents) Insert(ctx context.Context, doc *model.Document) error {
	foldSearch(doc)

	return translate(r.db.WithContext(ctx).Create(doc).Error)
}

// Get 按 ID 查询.
func (r *Documents) Get(ctx context.Context, id string) (*model.Document, error) {
	var doc model.Document
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&doc).Error; err != nil {
		return nil, translate(err)
	}

	return &doc, nil
}

// FindByStoragePath 按存储路径查询，多条时取最新上传的一条.
func (r *Documents) FindByStoragePath(ctx context.Context, path string) (*model.Document, error) {
	var doc model.Document

	err := r.db.WithContext(ctx).
		Where("storage_path = ?", path).
		Order("uploaded_at DESC").
		Take(&doc).Error
	if err != nil {
		return nil, translate(err)
	}

	return &doc, nil
}

// Update 覆盖写入除 ID 外的全部列.
// 仅当库中状态仍为 readStatus 且版本号未变时写入，否则返回 ErrStale，
// 避免读取后并发提交的 Substituido 被旧值覆盖.
func (r *Documents) Update(ctx context.Context, doc *model.Document, readStatus model.Status) error {
	foldSearch(doc)

	res := r.db.WithContext(ctx).
		Model(&model.Document{}).
		Where("id = ? AND status = ? AND version = ?", doc.ID, readStatus, doc.Version).
		Select("*").
		Omit("id").
		Updates(doc)
	if res.Error != nil {
		return translate(res.Error)
	}

	if res.RowsAffected == 0 {
		return ErrStale
	}

	return nil
}

// CreateVersion 在同一事务中将前序版本置为 Substituido 并插入新版本.
// 前序版本的 version 与 expectedVersion 不一致或已被替换时返回 ErrStale.
func (r *Documents) CreateVersion(ctx context.Context, predecessorID string, expectedVersion int, next *model.Document) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Document{}).
			Where("id = ? AND version = ? AND status <> ?", predecessorID, expectedVersion, model.StatusSuperseded).
			Updates(map[string]any{
				"status":     model.StatusSuperseded,
				"updated_at": next.UploadedAt,
				"updated_by": nullable(next.UploadedBy),
			})
		if res.Error != nil {
			return translate(res.Error)
		}

		if res.RowsAffected == 0 {
			return ErrStale
		}

		foldSearch(next)

		return translate(tx.Create(next).Error)
	})
}

// List 按条件分页查询，返回当前页与总数.
func (r *Documents) List(ctx context.Context, patientID string, q ListQuery) ([]model.Document, int64, error) {
	build := func() *gorm.DB {
		return applyFilters(r.db.WithContext(ctx).Model(&model.Document{}).Where("patient_id = ?", patientID), q)
	}

	var total int64
	if err := build().Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	docs := make([]model.Document, 0)
	if total == 0 {
		return docs, 0, nil
	}

	order := q.OrderBy
	if order == "" {
		order = OrderUploadedAt
	}

	err := build().
		Order(clause.OrderByColumn{Column: clause.Column{Name: string(order)}, Desc: q.Desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: q.Desc}).
		Offset(q.Offset).
		Limit(q.Limit).
		Find(&docs).Error
	if err != nil {
		return nil, 0, translate(err)
	}

	return docs, total, nil
}

func applyFilters(tx *gorm.DB, q ListQuery) *gorm.DB {
	exact := []struct {
		column string
		value  string
	}{
		{"category", q.Category},
		{"domain", q.Domain},
		{"origin_module", q.OriginModule},
		{"status", q.Status},
		{"min_access_role", q.MinAccessRole},
	}

	for _, f := range exact {
		if f.value != "" {
			tx = tx.Where(clause.Eq{Column: clause.Column{Name: f.column}, Value: f.value})
		}
	}

	// 折叠列与查询词都经 strings.ToLower，不依赖数据库 LOWER 对非 ASCII 的支持
	if q.Text != "" {
		tx = tx.Where("title_fold LIKE ? ESCAPE '"+likeEscape+"'", containsPattern(q.Text))
	}

	if q.Subcategory != "" {
		tx = tx.Where("subcategory_fold LIKE ? ESCAPE '"+likeEscape+"'", containsPattern(q.Subcategory))
	}

	for _, tag := range q.Tags {
		tx = hasTag(tx, tag)
	}

	if q.UploadedFrom != nil {
		tx = tx.Where("uploaded_at >= ?", q.UploadedFrom.UTC())
	}

	if q.UploadedTo != nil {
		tx = tx.Where("uploaded_at <= ?", q.UploadedTo.UTC())
	}

	return tx
}

func containsPattern(s string) string {
	return "%" + escapeLike(foldText(s)) + "%"
}

// hasTag 要求 tags 数组中存在与 tag 完全相等（区分大小写）的元素.
func hasTag(tx *gorm.DB, tag string) *gorm.DB {
	switch tx.Dialector.Name() {
	case "sqlite":
		return tx.Where("EXISTS (SELECT 1 FROM json_each(documents.tags) WHERE json_each.value = ?)", tag)
	case "postgres":
		token, _ := sonic.Marshal([]string{tag})
		return tx.Where("tags::jsonb @> ?::jsonb", string(token))
	case "mysql":
		token, _ := sonic.Marshal(tag)
		return tx.Where("JSON_CONTAINS(tags, ?)", string(token))
	default:
		token, _ := sonic.Marshal(tag)
		return tx.Where("tags LIKE ? ESCAPE '"+likeEscape+"'", "%"+escapeLike(string(token))+"%")
	}
}

func foldText(s string) string {
	return strings.ToLower(s)
}

func foldSearch(doc *model.Document) {
	doc.TitleFold = foldText(doc.Title)
	doc.SubcategoryFold = foldText(doc.Subcategory)
}

// backfillSearchColumns 为折叠列引入前写入的记录补齐检索列.
func backfillSearchColumns(ctx context.Context, db *gorm.DB) error {
	var batch []model.Document

	return db.WithContext(ctx).
		Select("id", "title", "subcategory").
		Where("title_fold IS NULL OR (title_fold = '' AND title <> '')").
		FindInBatches(&batch, 200, func(_ *gorm.DB, _ int) error {
			for i := range batch {
				d := &batch[i]

				err := db.WithContext(ctx).Model(&model.Document{}).
					Where("id = ?", d.ID).
					Updates(map[string]any{
						"title_fold":       foldText(d.Title),
						"subcategory_fold": foldText(d.Subcategory),
					}).Error
				if err != nil {
					return err
				}
			}

			return nil
		}).Error
}

// ListLineage 返回同一谱系且属于同一患者的全部版本，版本号降序.
func (r *Documents) ListLineage(ctx context.Context, lineageID, patientID string) ([]model.Document, error) {
	docs := make([]model.Document, 0)

	err := r.db.WithContext(ctx).
		Where("lineage_id = ? AND patient_id = ?", lineageID, patientID).
		Order("version DESC").
		Find(&docs).Error

	return docs, translate(err)
}

// HasSuccessor 判断是否存在以 id 为前序版本的文档.
func (r *Documents) HasSuccessor(ctx context.Context, id string) (bool, error) {
	var n int64

	err := r.db.WithContext(ctx).
		Model(&model.Document{}).
		Where("previous_document_id = ?", id).
		Count(&n).Error

	return n > 0, translate(err)
}

// ListUnsupersededPredecessors 查找已有后继版本却仍未标记为 Substituido 的文档.
// 归档状态不计入，归档是显式操作.
func (r *Documents) ListUnsupersededPredecessors(ctx context.Context, limit int) ([]model.Document, error) {
	docs := make([]model.Document, 0)

	sub := r.db.Model(&model.Document{}).
		Select("previous_document_id").
		Where("previous_document_id IS NOT NULL")

	err := r.db.WithContext(ctx).
		Where("status = ? AND id IN (?)", model.StatusActive, sub).
		Order("uploaded_at").
		Limit(limit).
		Find(&docs).Error

	return docs, translate(err)
}

// MarkSuperseded 将仍为 Ativo 的文档置为 Substituido，返回是否发生变更.
func (r *Documents) MarkSuperseded(ctx context.Context, id string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Document{}).
		Where("id = ? AND status = ?", id, model.StatusActive).
		Updates(map[string]any{"status": model.StatusSuperseded, "updated_at": at})

	return res.RowsAffected > 0, translate(res.Error)
}

// CountExpiredActive 统计已过期但仍为 Ativo 的文档数.
func (r *Documents) CountExpiredActive(ctx context.Context, now time.Time) (int64, error) {
	var n int64

	err := r.db.WithContext(ctx).
		Model(&model.Document{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", model.StatusActive, now.UTC()).
		Count(&n).Error

	return n, translate(err)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}
