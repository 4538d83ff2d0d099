package configs

import (
	"fmt"
	"time"

	units "github.com/docker/go-units"
	"github.com/spf13/viper"
)

const (
	DefaultPageSize            = 20
	DefaultMaxPageSize         = 100
	DefaultPreviewTTL          = 15 * time.Minute
	DefaultMaxUploadSize       = "50MB"
	DefaultOriginModule        = "Documentos"
	DefaultStoragePrefix       = "patients"
	DefaultDisplayNameCacheTTL = 10 * time.Minute
)

// DocumentsConfig 文档生命周期相关参数.
type DocumentsConfig struct {
	DefaultPageSize     int           `mapstructure:"default_page_size"      rule:"min=1"`
	MaxPageSize         int           `mapstructure:"max_page_size"          rule:"min=1,max=1000"`
	PreviewTTL          time.Duration `mapstructure:"preview_ttl"`
	MaxUploadSize       string        `mapstructure:"max_upload_size"`
	DefaultOriginModule string        `mapstructure:"default_origin_module"  rule:"required"`
	StoragePrefix       string        `mapstructure:"storage_prefix"`
	DisplayNameCacheTTL time.Duration `mapstructure:"display_name_cache_ttl"`
}

// MaxUploadBytes 解析 max_upload_size（如 "50MB"、"1.5GB"）.
func (c *DocumentsConfig) MaxUploadBytes() (int64, error) {
	if c.MaxUploadSize == "" {
		return units.FromHumanSize(DefaultMaxUploadSize)
	}

	n, err := units.FromHumanSize(c.MaxUploadSize)
	if err != nil {
		return 0, fmt.Errorf("invalid documents.max_upload_size %q: %w", c.MaxUploadSize, err)
	}

	return n, nil
}

func (c *DocumentsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("documents.default_page_size", DefaultPageSize)
	v.SetDefault("documents.max_page_size", DefaultMaxPageSize)
	v.SetDefault("documents.preview_ttl", DefaultPreviewTTL)
	v.SetDefault("documents.max_upload_size", DefaultMaxUploadSize)
	v.SetDefault("documents.default_origin_module", DefaultOriginModule)
	v.SetDefault("documents.storage_prefix", DefaultStoragePrefix)
	v.SetDefault("documents.display_name_cache_ttl", DefaultDisplayNameCacheTTL)
}
