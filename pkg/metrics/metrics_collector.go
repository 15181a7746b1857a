package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector 指标收集器
type MetricsCollector struct {
	// HTTP 指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// 数据库连接池
	dbConnectionsActive prometheus.Gauge
	dbConnectionsIdle   prometheus.Gauge

	// 业务指标
	commentOpsTotal  *prometheus.CounterVec
	reactionOpsTotal *prometheus.CounterVec
	mailTotal        *prometheus.CounterVec
}

// NewMetricsCollector 在给定的 registerer 上注册全部指标
func NewMetricsCollector(reg prometheus.Registerer) *MetricsCollector {
	f := promauto.With(reg)
	return &MetricsCollector{
		httpRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),

		httpRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		dbConnectionsActive: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "db_connections_active",
				Help: "Number of active database connections",
			},
		),

		dbConnectionsIdle: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "db_connections_idle",
				Help: "Number of idle database connections",
			},
		),

		commentOpsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "comment_operations_total",
				Help: "Comment writes by operation",
			},
			[]string{"operation"},
		),

		reactionOpsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reaction_operations_total",
				Help: "Reaction writes by operation and type",
			},
			[]string{"operation", "type"},
		),

		mailTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mail_deliveries_total",
				Help: "Outgoing mail by result",
			},
			[]string{"status"},
		),
	}
}

// RecordHTTPRequest 记录 HTTP 请求指标
func (m *MetricsCollector) RecordHTTPRequest(method, endpoint string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// UpdateDBConnections 更新数据库连接指标
func (m *MetricsCollector) UpdateDBConnections(active, idle int) {
	m.dbConnectionsActive.Set(float64(active))
	m.dbConnectionsIdle.Set(float64(idle))
}

// RecordComment operation: create / update / delete
func (m *MetricsCollector) RecordComment(operation string) {
	m.commentOpsTotal.WithLabelValues(operation).Inc()
}

// RecordReaction operation: set / toggle / remove
func (m *MetricsCollector) RecordReaction(operation, reactionType string) {
	m.reactionOpsTotal.WithLabelValues(operation, reactionType).Inc()
}

// RecordMail status: sent / retry / failed
func (m *MetricsCollector) RecordMail(status string) {
	m.mailTotal.WithLabelValues(status).Inc()
}

// 全局指标收集器实例
var GlobalCollector *MetricsCollector

// InitMetrics 初始化全局指标收集器，注册到默认 registry
func InitMetrics() {
	GlobalCollector = NewMetricsCollector(prometheus.DefaultRegisterer)
}

// GetGlobalCollector 获取全局指标收集器
func GetGlobalCollector() *MetricsCollector {
	if GlobalCollector == nil {
		InitMetrics()
	}
	return GlobalCollector
}
