package core

import "sync/atomic"

// CacheMetrics 缓存事件回调
// 每个方法对应缓存生命周期中的一个事件，实现必须是并发安全且非阻塞的。
type CacheMetrics interface {
	// Hit 命中
	Hit()
	// Miss 未命中（含读到过期项）
	Miss()
	// Expire 过期项被惰性删除或被 Set 时清扫
	Expire()
	// Refresh 触发了一次后台刷新
	Refresh()
	// Invalidate 显式失效删除了 n 个条目
	Invalidate(n int)
}

// NoopMetrics 不做任何事的指标实现，作为默认值避免到处判空。
type NoopMetrics struct{}

func (NoopMetrics) Hit()           {}
func (NoopMetrics) Miss()          {}
func (NoopMetrics) Expire()        {}
func (NoopMetrics) Refresh()       {}
func (NoopMetrics) Invalidate(int) {}

// MetricsSnapshot 指标快照
type MetricsSnapshot struct {
	Hits        int64 `json:"hits"`
	Misses      int64 `json:"misses"`
	Expired     int64 `json:"expired"`
	Refreshes   int64 `json:"refreshes"`
	Invalidated int64 `json:"invalidated"`
}

// CounterMetrics 基于原子计数器的指标实现
type CounterMetrics struct {
	hits        atomic.Int64
	misses      atomic.Int64
	expired     atomic.Int64
	refreshes   atomic.Int64
	invalidated atomic.Int64
}

func (m *CounterMetrics) Hit()     { m.hits.Add(1) }
func (m *CounterMetrics) Miss()    { m.misses.Add(1) }
func (m *CounterMetrics) Expire()  { m.expired.Add(1) }
func (m *CounterMetrics) Refresh() { m.refreshes.Add(1) }

func (m *CounterMetrics) Invalidate(n int) {
	if n > 0 {
		m.invalidated.Add(int64(n))
	}
}

// Snapshot 返回当前计数
func (m *CounterMetrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Hits:        m.hits.Load(),
		Misses:      m.misses.Load(),
		Expired:     m.expired.Load(),
		Refreshes:   m.refreshes.Load(),
		Invalidated: m.invalidated.Load(),
	}
}

var (
	_ CacheMetrics = NoopMetrics{}
	_ CacheMetrics = (*CounterMetrics)(nil)
)
