package configs

import (
	"time"

	"github.com/spf13/viper"
)

// ServerConfig HTTP 服务配置.
type ServerConfig struct {
	Host            string        `mapstructure:"host"             rule:"ip"`
	Port            int           `mapstructure:"port"             rule:"min=1,max=65535"`
	Timeout         int           `mapstructure:"timeout"          rule:"min=1,max=300"` // 读请求头超时，秒
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	ReloadConfig    bool          `mapstructure:"reload_config"`
	Debug           bool          `mapstructure:"debug"`
	Gzip            bool          `mapstructure:"gzip"`
	Swagger         bool          `mapstructure:"swagger"`
}

// GetTimeoutDuration 返回读请求头超时.
func (s *ServerConfig) GetTimeoutDuration() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}

func (s *ServerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.timeout", 30)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.reload_config", true)
	v.SetDefault("server.debug", false)
	v.SetDefault("server.gzip", true)
	v.SetDefault("server.swagger", true)
}
