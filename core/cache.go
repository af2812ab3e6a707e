package core

import "time"

// DefaultCacheTTL 缓存默认生存时间
const DefaultCacheTTL = 5 * time.Minute

// ExpireImmediately 写入后立即过期的 TTL。
// 需要"不缓存"语义的调用方应直接绕过缓存（NoCache），而不是依赖它。
const ExpireImmediately time.Duration = -1

// SetOptions 写入选项
type SetOptions struct {
	// TTL 生存时间，0 表示使用默认 TTL（零值即未指定，而非立即过期），
	// 需要立即过期时使用 ExpireImmediately 或任意负数
	TTL time.Duration
	// Tags 写入时附加的标签，仅用于批量失效
	Tags []string
}

// CacheStats 缓存统计
type CacheStats struct {
	Size     int `json:"size"`
	TagCount int `json:"tagCount"`
}

// Cache 带标签索引的 TTL 缓存接口
// 所有操作都不会失败：key 或 tag 不存在时静默成功。
type Cache interface {
	// Get 获取缓存值
	// 未命中或已过期时返回 nil 与 false；读取到过期项会立即删除并清理其标签索引。
	//
	// 参数:
	//   - key: 缓存键
	//
	// 返回:
	//   - any: 命中时的缓存值
	//   - bool: 是否命中缓存
	Get(key string) (any, bool)

	// Set 写入缓存值
	// 覆盖已有 key 时会先从旧标签中移除，再按新标签建立索引。
	//
	// 参数:
	//   - key: 缓存键
	//   - value: 缓存值，对缓存不透明
	//   - opts: TTL 与标签
	Set(key string, value any, opts SetOptions)

	// Delete 删除缓存值，并级联清理标签索引
	Delete(key string)

	// Clear 清空全部缓存与标签索引
	Clear()

	// ClearByTag 删除标签下的全部 key，并移除该标签
	ClearByTag(tag string)

	// ClearByTags 批量按标签删除
	ClearByTags(tags ...string)

	// ClearByURLPrefix 删除以 prefix 开头的全部 key（全量扫描）
	ClearByURLPrefix(prefix string)

	// Stats 返回当前条目数与标签数
	Stats() CacheStats
}
