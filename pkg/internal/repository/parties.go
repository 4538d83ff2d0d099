package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/yeisme/casefile/pkg/internal/model"
)

// Parties 患者与用户目录的只读查询.
type Parties struct {
	db *gorm.DB
}

// NewParties 创建参与方查询.
func NewParties(db *gorm.DB) *Parties {
	return &Parties{db: db}
}

// TenantOf 返回患者所属租户，患者不存在时返回 ErrNotFound.
func (r *Parties) TenantOf(ctx context.Context, patientID string) (string, error) {
	var p model.Patient
	if err := r.db.WithContext(ctx).Select("id", "tenant_id").Where("id = ?", patientID).Take(&p).Error; err != nil {
		return "", translate(err)
	}

	return p.TenantID, nil
}

// DisplayNames 批量解析用户显示名，未知 ID 不出现在结果中.
func (r *Parties) DisplayNames(ctx context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var users []model.User
	if err := r.db.WithContext(ctx).Select("id", "display_name").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, translate(err)
	}

	for _, u := range users {
		out[u.ID] = u.DisplayName
	}

	return out, nil
}

// SavePatient 新增或覆盖患者，供种子数据与测试使用.
func (r *Parties) SavePatient(ctx context.Context, p *model.Patient) error {
	return translate(r.db.WithContext(ctx).Save(p).Error)
}

// SaveUser 新增或覆盖用户.
func (r *Parties) SaveUser(ctx context.Context, u *model.User) error {
	return translate(r.db.WithContext(ctx).Save(u).Error)
}
