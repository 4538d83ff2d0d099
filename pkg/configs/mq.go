package configs

import (
	"github.com/spf13/viper"
)

// MQType 消息队列类型.
type MQType string

const (
	MQTypeNATS  MQType = "nats"
	MQTypeRedis MQType = "redis"

	DefaultMQURL         = "nats://localhost:4222"
	DefaultMaxReconnects = 5 // 默认最大重连次数.
	DefaultReconnectWait = 5 // 默认重连等待时间（秒）.
	DefaultPingInterval  = 20
	DefaultBufferSize    = 32768
	DefaultMQClientID    = "casefile-app"
)

// MQConfig 消息队列配置，审计事件通过它对外广播.
type MQConfig struct {
	Type             MQType        `mapstructure:"type"              rule:"oneof=nats redis"`
	URL              string        `mapstructure:"url"`
	ClusterURLs      []string      `mapstructure:"cluster_urls"`
	ClientID         string        `mapstructure:"client_id"`
	User             string        `mapstructure:"user"`
	Password         string        `mapstructure:"password"`
	JWT              string        `mapstructure:"jwt"`
	NKey             string        `mapstructure:"nkey"`
	MaxReconnects    int           `mapstructure:"max_reconnects"    rule:"min=0,max=100"`
	ReconnectWait    int           `mapstructure:"reconnect_wait"    rule:"min=1,max=300"`
	PingInterval     int           `mapstructure:"ping_interval"     rule:"min=1,max=300"`
	BufferSize       int           `mapstructure:"buffer_size"       rule:"min=1024"`
	JetStreamEnabled bool          `mapstructure:"jetstream_enabled"`
	AutoProvision    bool          `mapstructure:"auto_provision"`
	TrackMsgID       bool          `mapstructure:"track_msg_id"`
	DurablePrefix    string        `mapstructure:"durable_prefix"`
	EnableMetrics    bool          `mapstructure:"enable_metrics"`
	Redis            MQRedisConfig `mapstructure:"redis"`
}

// MQRedisConfig Redis Pub/Sub 配置.
type MQRedisConfig struct {
	Addr     string `mapstructure:"addr"     rule:"hostname_port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"       rule:"min=0,max=15"`
}

// setDefaults 设置MQ配置的默认值.
func (c *MQConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("mq.type", MQTypeNATS)
	v.SetDefault("mq.url", DefaultMQURL)
	v.SetDefault("mq.cluster_urls", []string{})
	v.SetDefault("mq.client_id", DefaultMQClientID)
	v.SetDefault("mq.max_reconnects", DefaultMaxReconnects)
	v.SetDefault("mq.reconnect_wait", DefaultReconnectWait)
	v.SetDefault("mq.ping_interval", DefaultPingInterval)
	v.SetDefault("mq.buffer_size", DefaultBufferSize)
	v.SetDefault("mq.jetstream_enabled", true)
	v.SetDefault("mq.auto_provision", true)
	v.SetDefault("mq.track_msg_id", true)
	v.SetDefault("mq.durable_prefix", "casefile")
	v.SetDefault("mq.enable_metrics", false)

	v.SetDefault("mq.redis.addr", "localhost:6379")
	v.SetDefault("mq.redis.db", 0)
}
