package testutil

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeisme/casefile/pkg/internal/model"
)

// NewTestDB 创建已迁移的内存 SQLite 数据库，测试结束时关闭.
// 单连接保证同一个 :memory: 库在各查询间可见.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Discard,
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}

	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(model.All()...); err != nil {
		_ = sqlDB.Close()
		t.Fatalf("failed to migrate: %v", err)
	}

	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

// SeedPatient 写入一个患者.
func SeedPatient(t *testing.T, db *gorm.DB, id, tenantID string) {
	t.Helper()

	if err := db.Create(&model.Patient{ID: id, TenantID: tenantID, Name: id}).Error; err != nil {
		t.Fatalf("seed patient: %v", err)
	}
}

// SeedUser 写入一个用户.
func SeedUser(t *testing.T, db *gorm.DB, id, displayName string) {
	t.Helper()

	if err := db.Create(&model.User{ID: id, DisplayName: displayName}).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
}
