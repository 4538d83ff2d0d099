// Package repository 基于 gorm 实现文档、审计事件与参与方的持久化.
package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/yeisme/casefile/pkg/internal/model"
)

var (
	// ErrNotFound 记录不存在.
	ErrNotFound = errors.New("record not found")
	// ErrStale 前序版本已被其他请求替换或版本号不匹配.
	ErrStale = errors.New("stale predecessor")
	// ErrDuplicate 唯一约束冲突.
	ErrDuplicate = errors.New("duplicate key")
)

// AutoMigrate 创建或更新全部表结构.
func AutoMigrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(model.All()...); err != nil {
		return err
	}

	return backfillSearchColumns(ctx, db)
}

// translate 将 gorm 错误映射为包内错误.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	case isUniqueViolation(err):
		return ErrDuplicate
	default:
		return err
	}
}

// isUniqueViolation 兜底识别未被 dialector 翻译的唯一约束错误.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())

	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}

const likeEscape = "!"

// escapeLike 转义 LIKE 通配符，配合 ESCAPE '!' 使用.
func escapeLike(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return r.Replace(s)
}
