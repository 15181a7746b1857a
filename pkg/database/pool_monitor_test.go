package database

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"threaded_comments/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeStats struct {
	stats sql.DBStats
}

func (f *fakeStats) Stats() sql.DBStats { return f.stats }

func TestPoolMonitorCollect(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	src := &fakeStats{stats: sql.DBStats{InUse: 2, Idle: 5, WaitCount: 1}}
	pm := NewPoolMonitor(src, metrics.NewMetricsCollector(prometheus.NewRegistry()), zap.New(core), time.Second)

	pm.collect()
	assert.Equal(t, 0, logs.Len(), "first sample only sets the baseline")

	src.stats.WaitCount = 4
	pm.collect()
	assert.Equal(t, 1, logs.Len())
	assert.Equal(t, int64(3), logs.All()[0].ContextMap()["waited"])

	pm.collect()
	assert.Equal(t, 1, logs.Len(), "no new waits, no new warning")
}

func TestPoolMonitorRunStopsOnCancel(t *testing.T) {
	pm := NewPoolMonitor(&fakeStats{}, metrics.NewMetricsCollector(prometheus.NewRegistry()), zap.NewNop(), time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		pm.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop")
	}
}
