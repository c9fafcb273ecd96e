// Package metrics 提供基于Prometheus的指标收集
//
// 指标分三类：
// - Counter（计数器）：只增不减，如HTTP请求总数、限流拒绝总数
// - Gauge（仪表盘）：可增可减的瞬时值，如当前在库图书数
// - Histogram（直方图）：观测值分布，如HTTP请求耗时、快照写盘耗时
//
// 使用方式：
//
//	// 1. 启动时初始化一次
//	metrics.InitMetrics()
//
//	// 2. 通过gin暴露/metrics端点
//	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
//
//	// 3. 业务代码中记录指标
//	metrics.IncCounter(metrics.BooksAddedTotal)
//
// 命名规范：
// - Counter以_total结尾（books_added_total）
// - Histogram以单位结尾（snapshot_save_duration_seconds）
// - 避免高基数标签（不要用图书ID做标签，用method/status这类有限值）
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// initialized 标记是否已初始化（防止重复注册）
	initialized bool

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数（Counter）
	// 标签：method（GET/POST）、path（/api/books）、status（200/404）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时（Histogram）
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数（Gauge）
	HTTPRequestsInProgress prometheus.Gauge

	// 图书业务指标

	// BooksAddedTotal 新增图书总数（Counter）
	BooksAddedTotal prometheus.Counter

	// BooksSkippedTotal 因重复被跳过的图书总数（Counter）
	BooksSkippedTotal prometheus.Counter

	// BooksLive 当前在库图书数（Gauge）
	BooksLive prometheus.Gauge

	// 限流指标

	// RateLimitRejectedTotal 限流拒绝总数（Counter）
	// 标签：route（GET/PUT/DELETE）
	RateLimitRejectedTotal *prometheus.CounterVec

	// 持久化指标

	// SnapshotSaveDuration 集合快照写盘耗时（Histogram）
	SnapshotSaveDuration prometheus.Histogram

	// 消息队列指标

	// EventsPublishedTotal 图书事件发布总数（Counter）
	// 标签：routing_key（book.created/book.updated/book.deleted）
	EventsPublishedTotal *prometheus.CounterVec
)

// InitMetrics 初始化所有Prometheus指标
//
// 必须在程序启动时调用一次，用于注册所有指标到全局Registry
// 使用promauto.New*自动注册到默认Registry
func InitMetrics() {
	// 防止重复初始化
	if initialized {
		return
	}
	initialized = true

	// HTTP请求指标
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "HTTP请求耗时（秒）",
			// 请求只含内存操作和一次文件写入，桶偏向低延迟区间
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	// 图书业务指标
	BooksAddedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "books_added_total",
			Help: "新增图书总数",
		},
	)

	BooksSkippedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "books_skipped_total",
			Help: "因标题+作者重复被跳过的图书总数",
		},
	)

	BooksLive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "books_live",
			Help: "当前在库图书数",
		},
	)

	// 限流指标
	RateLimitRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_rejected_total",
			Help: "限流拒绝总数",
		},
		[]string{"route"},
	)

	// 持久化指标
	SnapshotSaveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "snapshot_save_duration_seconds",
			Help:    "集合快照写盘耗时（秒）",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
	)

	// 消息队列指标
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "图书事件发布总数",
		},
		[]string{"routing_key"},
	)
}

// IncCounter 递增Counter（便捷函数）
func IncCounter(counter prometheus.Counter) {
	counter.Inc()
}

// IncCounterVec 递增CounterVec（带标签）
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	counter.With(labels).Inc()
}

// IncGauge 递增Gauge
func IncGauge(gauge prometheus.Gauge) {
	gauge.Inc()
}

// DecGauge 递减Gauge
func DecGauge(gauge prometheus.Gauge) {
	gauge.Dec()
}

// SetGauge 设置Gauge值
func SetGauge(gauge prometheus.Gauge, value float64) {
	gauge.Set(value)
}

// ObserveHistogram 记录Histogram观测值
func ObserveHistogram(histogram prometheus.Histogram, value float64) {
	histogram.Observe(value)
}

// ObserveHistogramVec 记录HistogramVec观测值（带标签）
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	histogram.With(labels).Observe(value)
}
