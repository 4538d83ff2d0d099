package configs

import (
	"time"

	"github.com/sony/gobreaker"
	"github.com/spf13/viper"
)

const (
	DefaultRateLimitRPS   = 50.0
	DefaultRateLimitBurst = 100
	DefaultRateLimitKey   = "ip"

	DefaultCBFailureRate       = 0.5
	DefaultCBMinRequests       = 20
	DefaultCBIntervalSeconds   = 60
	DefaultCBTimeoutSeconds    = 30
	DefaultCBMaxRequestsInHalf = 5
)

// RateLimitConfig 速率限制配置.
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`   // 每秒允许的请求数
	Burst   int     `mapstructure:"burst"` // 突发容量
	// Key 限流维度：global、ip、user、header:Header-Name
	Key string `mapstructure:"key"`
}

// CircuitBreakerConfig 熔断器配置.
// HTTP 中间件与对象存储客户端各自持有一个熔断器，共用这组阈值.
type CircuitBreakerConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	BlobEnabled       bool    `mapstructure:"blob_enabled"`
	FailureRate       float64 `mapstructure:"failure_rate"`
	MinRequests       uint32  `mapstructure:"min_requests"`
	IntervalSeconds   int     `mapstructure:"interval_seconds"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds"`
	MaxRequestsInHalf uint32  `mapstructure:"max_requests_in_half"`
}

func (c *RateLimitConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.rps", DefaultRateLimitRPS)
	v.SetDefault("rate_limit.burst", DefaultRateLimitBurst)
	v.SetDefault("rate_limit.key", DefaultRateLimitKey)
}

func (c *CircuitBreakerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("circuit_breaker.enabled", false)
	v.SetDefault("circuit_breaker.blob_enabled", true)
	v.SetDefault("circuit_breaker.failure_rate", DefaultCBFailureRate)
	v.SetDefault("circuit_breaker.min_requests", DefaultCBMinRequests)
	v.SetDefault("circuit_breaker.interval_seconds", DefaultCBIntervalSeconds)
	v.SetDefault("circuit_breaker.timeout_seconds", DefaultCBTimeoutSeconds)
	v.SetDefault("circuit_breaker.max_requests_in_half", DefaultCBMaxRequestsInHalf)
}

// Settings 生成 gobreaker 配置，请求数达到 MinRequests 后按失败比例熔断.
func (c CircuitBreakerConfig) Settings(name string) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: c.MaxRequestsInHalf,
		Interval:    time.Duration(c.IntervalSeconds) * time.Second,
		Timeout:     time.Duration(c.TimeoutSeconds) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < c.MinRequests {
				return false
			}

			return float64(counts.TotalFailures)/float64(counts.Requests) >= c.FailureRate
		},
	}
}
