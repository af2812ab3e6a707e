package core

import (
	"strings"
	"sync"
	"time"
)

// cacheItem 缓存项
type cacheItem struct {
	value     any
	expiresAt time.Time
	tags      []string
}

// isExpired 判断缓存项是否过期
func (item *cacheItem) isExpired(now time.Time) bool {
	return now.After(item.expiresAt)
}

// MemoryCacheOption 内存缓存选项
type MemoryCacheOption func(*MemoryCache)

// WithClock 指定时钟，主要用于测试
func WithClock(now func() time.Time) MemoryCacheOption {
	return func(c *MemoryCache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithDefaultTTL 指定 TTL 为 0 时使用的默认值
func WithDefaultTTL(ttl time.Duration) MemoryCacheOption {
	return func(c *MemoryCache) {
		if ttl > 0 {
			c.defaultTTL = ttl
		}
	}
}

// WithCacheMetrics 指定指标收集器
func WithCacheMetrics(m CacheMetrics) MemoryCacheOption {
	return func(c *MemoryCache) {
		if m != nil {
			c.metrics = m
		}
	}
}

// MemoryCache 内存缓存实现
// 维护 key → 缓存项 与 tag → key 集合两份索引，过期在读取时惰性检查，
// 每次 Set 顺带清扫全局过期项，没有后台清理协程。
type MemoryCache struct {
	mu         sync.Mutex
	items      map[string]*cacheItem
	tags       map[string]map[string]struct{}
	now        func() time.Time
	defaultTTL time.Duration
	metrics    CacheMetrics
}

// NewMemoryCache 创建内存缓存实例
func NewMemoryCache(opts ...MemoryCacheOption) *MemoryCache {
	c := &MemoryCache{
		items:      make(map[string]*cacheItem),
		tags:       make(map[string]map[string]struct{}),
		now:        time.Now,
		defaultTTL: DefaultCacheTTL,
		metrics:    NoopMetrics{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get 获取缓存值
func (c *MemoryCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, exists := c.items[key]
	if !exists {
		c.metrics.Miss()
		return nil, false
	}

	if item.isExpired(c.now()) {
		c.deleteLocked(key)
		c.metrics.Expire()
		c.metrics.Miss()
		return nil, false
	}

	c.metrics.Hit()
	return item.value, true
}

// Set 设置缓存值
func (c *MemoryCache) Set(key string, value any, opts SetOptions) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.sweepLocked(now)

	ttl := opts.TTL
	if ttl == 0 {
		ttl = c.defaultTTL
	}

	if _, exists := c.items[key]; exists {
		c.deleteLocked(key)
	}

	tags := uniqueTags(opts.Tags)
	c.items[key] = &cacheItem{
		value:     value,
		expiresAt: now.Add(ttl),
		tags:      tags,
	}
	for _, tag := range tags {
		keys, ok := c.tags[tag]
		if !ok {
			keys = make(map[string]struct{})
			c.tags[tag] = keys
		}
		keys[key] = struct{}{}
	}
}

// Delete 删除缓存
func (c *MemoryCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.deleteLocked(key) {
		c.metrics.Invalidate(1)
	}
}

// Clear 清空缓存
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.items)
	c.items = make(map[string]*cacheItem)
	c.tags = make(map[string]map[string]struct{})
	c.metrics.Invalidate(n)
}

// ClearByTag 按标签清除
func (c *MemoryCache) ClearByTag(tag string) {
	c.ClearByTags(tag)
}

// ClearByTags 按多个标签清除
func (c *MemoryCache) ClearByTags(tags ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, tag := range tags {
		keys, ok := c.tags[tag]
		if !ok {
			continue
		}
		// deleteLocked 会修改 c.tags[tag]，先拷贝一份 key
		snapshot := make([]string, 0, len(keys))
		for key := range keys {
			snapshot = append(snapshot, key)
		}
		for _, key := range snapshot {
			if c.deleteLocked(key) {
				n++
			}
		}
		delete(c.tags, tag)
	}
	c.metrics.Invalidate(n)
}

// ClearByURLPrefix 按 key 前缀清除
func (c *MemoryCache) ClearByURLPrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			c.deleteLocked(key)
			n++
		}
	}
	c.metrics.Invalidate(n)
}

// Stats 返回缓存统计
func (c *MemoryCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return CacheStats{
		Size:     len(c.items),
		TagCount: len(c.tags),
	}
}

// deleteLocked 删除 key 并清理标签索引，调用方需持有锁
func (c *MemoryCache) deleteLocked(key string) bool {
	item, exists := c.items[key]
	if !exists {
		return false
	}
	delete(c.items, key)

	for _, tag := range item.tags {
		keys, ok := c.tags[tag]
		if !ok {
			continue
		}
		delete(keys, key)
		if len(keys) == 0 {
			delete(c.tags, tag)
		}
	}
	return true
}

// sweepLocked 清理所有已过期的缓存项
func (c *MemoryCache) sweepLocked(now time.Time) {
	for key, item := range c.items {
		if item.isExpired(now) {
			c.deleteLocked(key)
			c.metrics.Expire()
		}
	}
}

func uniqueTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// 确保 MemoryCache 实现了 Cache 接口
var _ Cache = (*MemoryCache)(nil)
