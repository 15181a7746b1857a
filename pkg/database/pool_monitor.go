package database

import (
	"context"
	"database/sql"
	"time"

	"threaded_comments/pkg/metrics"

	"go.uber.org/zap"
)

// StatsSource 能提供连接池统计的对象，*sql.DB 即满足
type StatsSource interface {
	Stats() sql.DBStats
}

// PoolMonitor 定时把连接池状态写入 prometheus，等待数上涨时打告警日志
type PoolMonitor struct {
	db        StatsSource
	collector *metrics.MetricsCollector
	log       *zap.Logger
	interval  time.Duration

	lastWaitCount int64
}

// NewPoolMonitor 创建连接池监控器
func NewPoolMonitor(db StatsSource, collector *metrics.MetricsCollector, log *zap.Logger, interval time.Duration) *PoolMonitor {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &PoolMonitor{
		db:        db,
		collector: collector,
		log:       log,
		interval:  interval,
	}
}

// Run 阻塞直到 ctx 取消
func (pm *PoolMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(pm.interval)
	defer ticker.Stop()

	pm.collect()
	for {
		select {
		case <-ticker.C:
			pm.collect()
		case <-ctx.Done():
			return
		}
	}
}

// collect 采集一次
func (pm *PoolMonitor) collect() {
	stats := pm.db.Stats()
	pm.collector.UpdateDBConnections(stats.InUse, stats.Idle)

	if waited := stats.WaitCount - pm.lastWaitCount; waited > 0 && pm.lastWaitCount > 0 {
		pm.log.Warn("database pool exhausted, requests waited for a connection",
			zap.Int64("waited", waited),
			zap.Int("open", stats.OpenConnections),
			zap.Int("max_open", stats.MaxOpenConnections),
			zap.Duration("wait_total", stats.WaitDuration),
		)
	}
	pm.lastWaitCount = stats.WaitCount
}
