package configs

import (
	"github.com/spf13/viper"
)

// LogConfig 日志配置，文件输出由 lumberjack 轮转.
type LogConfig struct {
	Level  string `mapstructure:"level"  rule:"omitempty,oneof=trace debug info warn error fatal panic"`
	Format string `mapstructure:"format" rule:"omitempty,oneof=console json"` // stderr 输出格式

	EnableFile bool   `mapstructure:"enable_file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

func (l *LogConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.enable_file", false)
	v.SetDefault("log.file_path", "logs/casefile.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.compress", true)
}
