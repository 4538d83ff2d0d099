package configs

import "github.com/spf13/viper"

// AuthConfig 身份识别配置，优先读取 oauth2-proxy 注入的请求头.
type AuthConfig struct {
	Enabled       bool     `mapstructure:"enabled"`
	UserHeader    string   `mapstructure:"user_header"`
	RoleHeader    string   `mapstructure:"role_header"`
	SkipPaths     []string `mapstructure:"skip_paths"`
	DevAllowQuery bool     `mapstructure:"dev_allow_query"` // 开发模式允许 ?user= 便于本地调试
}

func (c *AuthConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("auth.enabled", true)
	v.SetDefault("auth.user_header", "X-User")
	v.SetDefault("auth.role_header", "X-User-Role")
	v.SetDefault("auth.dev_allow_query", false)
	v.SetDefault("auth.skip_paths", []string{
		"/metrics",
		"/debug/pprof",
		"/api/v1/health",
		"/swagger",
	})
}
