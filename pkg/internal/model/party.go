package model

// Patient 病历归属的患者，TenantID 是文档租户的唯一来源.
type Patient struct {
	ID       string `gorm:"primaryKey;size:64" json:"id"`
	TenantID string `gorm:"size:64;not null;index" json:"tenant_id"`
	Name     string `gorm:"size:255" json:"name"`
}

// TableName 指定表名.
func (Patient) TableName() string { return "patients" }

// User 机构员工，用于解析显示名.
type User struct {
	ID          string `gorm:"primaryKey;size:64" json:"id"`
	TenantID    string `gorm:"size:64;index" json:"tenant_id"`
	DisplayName string `gorm:"size:255" json:"display_name"`
	Email       string `gorm:"size:255;index" json:"email"`
}

// TableName 指定表名.
func (User) TableName() string { return "users" }

// All 返回需要迁移的全部模型.
func All() []any {
	return []any{&Patient{}, &User{}, &Document{}, &DocumentEvent{}, &AuditSkip{}}
}
