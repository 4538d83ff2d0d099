// Package metrics 提供 Prometheus 指标.
//
// Example:
//
//	if err := metrics.InitMetrics(cfg.Metrics); err != nil {
//		log.Fatal(err)
//	}
//
//	metrics.DocumentOps.WithLabelValues("create", "ok").Inc()
package metrics

import (
	"net/http"
	_ "net/http/pprof" // 注册 pprof 端点
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yeisme/casefile/pkg/configs"
)

var (
	// RequestCounter HTTP 请求计数.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration HTTP 请求耗时.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// ActiveConnections 进行中的请求数.
	ActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_connections",
			Help: "Number of in-flight HTTP requests",
		},
	)

	// DocumentOps 文档操作结果，outcome 为 ok 或错误种类.
	DocumentOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casefile_document_operations_total",
			Help: "Document service operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	// AuditEvents 已写入的审计事件.
	AuditEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casefile_audit_events_total",
			Help: "Audit events appended",
		},
		[]string{"action"},
	)

	// AuditSkips 未写入的审计事件.
	AuditSkips = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casefile_audit_skips_total",
			Help: "Audit events that could not be appended",
		},
		[]string{"reason"},
	)

	// UploadBytes 上传文件大小分布.
	UploadBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "casefile_upload_bytes",
			Help:    "Size of uploaded document blobs",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
		},
	)

	registry = prometheus.NewRegistry()
	initOnce sync.Once
)

// InitMetrics 注册全部指标，重复调用无副作用.
func InitMetrics(config configs.MetricsConfig) error {
	if !config.Enabled {
		return nil
	}

	var err error

	initOnce.Do(func() {
		reg := prometheus.WrapRegistererWith(prometheus.Labels(config.Labels), registry)

		if config.RuntimeMetrics {
			registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
		}

		for _, c := range []prometheus.Collector{
			RequestCounter, RequestDuration, ActiveConnections,
			DocumentOps, AuditEvents, AuditSkips, UploadBytes,
		} {
			if err = reg.Register(c); err != nil {
				return
			}
		}
	})

	return err
}

// StartMetricsServer 在调试引擎上挂载指标与 pprof 端点.
func StartMetricsServer(config configs.MetricsConfig, debugEngine *gin.Engine) error {
	if !config.Enabled {
		return nil
	}

	path := config.Path
	if path == "" {
		path = "/metrics"
	}

	debugEngine.GET(path, gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	if config.Pprof {
		debugEngine.GET("/debug/pprof/*any", gin.WrapH(http.DefaultServeMux))
	}

	return nil
}

// GetRegistry 返回指标注册表.
func GetRegistry() *prometheus.Registry {
	return registry
}
