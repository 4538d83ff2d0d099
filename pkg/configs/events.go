package configs

import "github.com/spf13/viper"

// EventsConfig 控制审计事件对外广播.
// 审计记录本身总会写入数据库，这里只决定是否同时发布到消息队列.
type EventsConfig struct {
	Enabled bool                 `mapstructure:"enabled"` // 总开关
	Topic   string               `mapstructure:"topic"`   // 主题前缀
	Actions DocumentEventsConfig `mapstructure:"actions"`
}

// DocumentEventsConfig 按动作类型的广播开关.
type DocumentEventsConfig struct {
	Create   bool `mapstructure:"create"`
	Version  bool `mapstructure:"version"`
	Update   bool `mapstructure:"update"`
	Verify   bool `mapstructure:"verify"`
	Status   bool `mapstructure:"status"` // archive / restore / status_change
	Accessed bool `mapstructure:"accessed"`
}

func (c *EventsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("events.enabled", false)
	v.SetDefault("events.topic", "cf.document")

	v.SetDefault("events.actions.create", true)
	v.SetDefault("events.actions.version", true)
	v.SetDefault("events.actions.update", true)
	v.SetDefault("events.actions.verify", true)
	v.SetDefault("events.actions.status", true)
	// 访问事件量大，默认关闭
	v.SetDefault("events.actions.accessed", false)
}
