// Package metrics 提供监控指标功能.
// 支持Prometheus标准，收集 HTTP、文件存储与过期清理指标.
//
// Example:
//
//	import "github.com/yeisme/flarecloud/pkg/metrics"
//
//	metrics.InitMetrics(config.Metrics)
//	metrics.RegisterRoutes(engine, config.Metrics)
//
//	// 记录指标
//	metrics.RequestCounter.WithLabelValues("GET", "/files", "200").Inc()
//	metrics.ObserveSweep(result.Deleted, result.Errors, result.Duration, err)
package metrics

import (
	"net/http"
	_ "net/http/pprof" // 自动注册pprof端点
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yeisme/flarecloud/pkg/configs"
)

const namespace = "flarecloud"

// HTTP 指标.
var (
	// RequestCounter HTTP请求计数器.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration HTTP请求持续时间.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// ActiveConnections 正在处理的请求数.
	ActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_connections",
			Help:      "Number of in-flight HTTP requests",
		},
	)
)

// 文件存储指标.
var (
	UploadsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "files",
		Name:      "uploads_total",
		Help:      "Number of files stored",
	})

	UploadBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "files",
		Name:      "upload_bytes_total",
		Help:      "Bytes written by uploads",
	})

	// DeletesTotal 按原因（request/retention）统计删除的文件.
	DeletesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "files",
		Name:      "deletes_total",
		Help:      "Number of files deleted",
	}, []string{"reason"})

	// SweepRunsTotal 过期清理执行次数，result 为 ok 或 error.
	SweepRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "retention",
		Name:      "sweeps_total",
		Help:      "Number of retention sweeps",
	}, []string{"result"})

	SweepErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "retention",
		Name:      "entry_errors_total",
		Help:      "Per-file stat or delete failures during retention sweeps",
	})

	SweepDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "retention",
		Name:      "sweep_duration_seconds",
		Help:      "Retention sweep duration in seconds",
		Buckets:   []float64{.001, .01, .1, .5, 1, 5, 30, 120},
	})

	SweepLastSuccess = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "retention",
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix time of the last sweep that completed without aborting",
	})
)

var (
	// registry Prometheus注册表.
	registry = prometheus.NewRegistry()
	initOnce sync.Once
)

// InitMetrics 注册所有指标，未启用时什么都不做. 只有第一次调用生效.
func InitMetrics(config configs.MetricsConfig) {
	if !config.Enabled {
		return
	}

	initOnce.Do(func() {
		// 注册标准收集器
		if config.RuntimeMetrics {
			registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
		}

		registry.MustRegister(
			RequestCounter, RequestDuration, ActiveConnections,
			UploadsTotal, UploadBytes, DeletesTotal,
			SweepRunsTotal, SweepErrorsTotal, SweepDuration, SweepLastSuccess,
		)
	})
}

// RegisterRoutes 在 engine 上挂载指标端点.
func RegisterRoutes(engine *gin.Engine, config configs.MetricsConfig) {
	if !config.Enabled {
		return
	}

	engine.GET(config.Path, gin.WrapH(Handler()))

	// 如果启用pprof，注册pprof端点
	if config.Pprof {
		engine.GET("/debug/pprof/*any", gin.WrapH(http.DefaultServeMux))
	}
}

// Handler 返回 Prometheus exposition handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}

// GetRegistry 获取Prometheus注册表.
func GetRegistry() *prometheus.Registry {
	return registry
}

// ObserveRequest 记录一次 HTTP 请求.
func ObserveRequest(method, endpoint string, status int, d time.Duration) {
	RequestCounter.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(d.Seconds())
}

// ObserveUpload 记录一次成功上传.
func ObserveUpload(size int64) {
	UploadsTotal.Inc()
	UploadBytes.Add(float64(size))
}

// ObserveDelete 记录一次删除.
func ObserveDelete(reason string) {
	DeletesTotal.WithLabelValues(reason).Inc()
}

// ObserveSweep 记录一轮过期清理，err 非 nil 表示本轮中止.
func ObserveSweep(entryErrors int, d time.Duration, err error) {
	SweepDuration.Observe(d.Seconds())
	SweepErrorsTotal.Add(float64(entryErrors))

	if err != nil {
		SweepRunsTotal.WithLabelValues("error").Inc()
		return
	}

	SweepRunsTotal.WithLabelValues("ok").Inc()
	SweepLastSuccess.SetToCurrentTime()
}
