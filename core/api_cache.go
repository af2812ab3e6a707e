package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const backgroundRefreshKeyPrefix = "refresh:"

// CacheOptions 缓存策略
type CacheOptions struct {
	// TTL 生存时间，0 表示使用默认 TTL，负数立即过期
	TTL time.Duration
	// Tags 写入时附加的标签
	Tags []string
	// ForceRefresh 跳过读缓存，总是调用底层函数并覆盖缓存
	ForceRefresh bool
	// BackgroundRefresh 命中时立即返回旧值，同时在后台刷新
	BackgroundRefresh bool
}

func (o CacheOptions) setOptions() SetOptions {
	return SetOptions{TTL: o.TTL, Tags: o.Tags}
}

// LoadFunc 可被缓存包装的加载函数
type LoadFunc[A, T any] func(ctx context.Context, arg A) (T, error)

// WrapOptions 包装选项
type WrapOptions[A any] struct {
	CacheOptions
	// KeyGenerator 自定义 key 生成，默认使用 FuncKey(name, arg)
	KeyGenerator func(arg A) (string, error)
	// TagGenerator 按参数追加标签，如 "job:42"
	TagGenerator func(arg A) []string
}

func (o WrapOptions[A]) setOptionsFor(arg A) SetOptions {
	set := o.setOptions()
	if o.TagGenerator == nil {
		return set
	}
	set.Tags = append(append([]string(nil), o.Tags...), o.TagGenerator(arg)...)
	return set
}

// APICache 把任意加载函数包装成带缓存的版本
type APICache struct {
	store   Cache
	logger  *slog.Logger
	metrics CacheMetrics

	group singleflight.Group
	wg    sync.WaitGroup
}

// APICacheConfig APICache 配置
type APICacheConfig struct {
	Cache   Cache
	Logger  *slog.Logger
	Metrics CacheMetrics
}

// NewAPICache 创建 APICache
func NewAPICache(cfg APICacheConfig) (*APICache, error) {
	if cfg.Cache == nil {
		return nil, fmt.Errorf("cache is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = NoopMetrics{}
	}

	return &APICache{
		store:   cfg.Cache,
		logger:  logger,
		metrics: metrics,
	}, nil
}

// Cache 返回底层缓存
func (c *APICache) Cache() Cache {
	return c.store
}

// Wait 等待所有后台刷新结束
func (c *APICache) Wait() {
	c.wg.Wait()
}

// Wrap 返回 fn 的缓存版本，调用签名不变
//
// 行为:
//   - ForceRefresh: 总是调用 fn，成功后覆盖缓存
//   - 命中: 直接返回缓存值，不调用 fn；BackgroundRefresh 时在后台重新调用 fn 并静默覆盖
//   - 未命中: 同一 key 的并发调用合并为一次 fn 调用，成功后写入缓存
//   - fn 返回的错误不会被缓存，并原样返回给调用方
//
// 示例:
//
//	getJob := core.Wrap(apiCache, "jobs.get", loadJob, core.WrapOptions[int64]{
//	    CacheOptions: core.CacheOptions{TTL: time.Minute, Tags: []string{"job"}},
//	})
//	job, err := getJob(ctx, 42)
func Wrap[A, T any](c *APICache, name string, fn LoadFunc[A, T], opts WrapOptions[A]) LoadFunc[A, T] {
	return func(ctx context.Context, arg A) (T, error) {
		key, err := wrapKey(name, arg, opts.KeyGenerator)
		if err != nil {
			c.logger.WarnContext(ctx, "cache key unavailable, calling through",
				slog.String("name", name),
				slog.Any("error", err),
			)
			return fn(ctx, arg)
		}
		setOpts := opts.setOptionsFor(arg)

		if opts.ForceRefresh {
			value, err := fn(ctx, arg)
			if err != nil {
				return value, err
			}
			c.store.Set(key, value, setOpts)
			return value, nil
		}

		if cached, ok := c.store.Get(key); ok {
			if value, ok := cached.(T); ok {
				if opts.BackgroundRefresh {
					c.revalidate(ctx, key, func(ctx context.Context) (any, error) {
						return fn(ctx, arg)
					}, setOpts)
				}
				return value, nil
			}
		}

		// 共享调用不随单个调用方取消，调用方各自按自己的 ctx 放弃等待
		ch := c.group.DoChan(key, func() (any, error) {
			value, err := fn(context.WithoutCancel(ctx), arg)
			if err != nil {
				return nil, err
			}
			c.store.Set(key, value, setOpts)
			return value, nil
		})

		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case res := <-ch:
			if res.Err != nil {
				var zero T
				return zero, res.Err
			}
			value, _ := res.Val.(T)
			return value, nil
		}
	}
}

// revalidate 后台刷新，同一 key 同时最多一个刷新在进行
func (c *APICache) revalidate(ctx context.Context, key string, load func(context.Context) (any, error), opts SetOptions) {
	c.metrics.Refresh()
	ctx = context.WithoutCancel(ctx)

	c.wg.Go(func() {
		_, err, _ := c.group.Do(backgroundRefreshKeyPrefix+key, func() (any, error) {
			value, err := load(ctx)
			if err != nil {
				return nil, err
			}
			c.store.Set(key, value, opts)
			return value, nil
		})
		if err != nil {
			c.logger.WarnContext(ctx, "background refresh failed",
				slog.String("key", key),
				slog.Any("error", err),
			)
		}
	})
}

func wrapKey[A any](name string, arg A, gen func(A) (string, error)) (string, error) {
	if gen != nil {
		return gen(arg)
	}
	return FuncKey(name, arg)
}
