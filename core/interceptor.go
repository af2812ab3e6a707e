package core

import (
	"context"
	"log/slog"
	"net/http"
)

// ResponseInterceptor 响应拦截器
// 按注册顺序在网络响应返回后依次执行。
type ResponseInterceptor interface {
	InterceptResponse(ctx context.Context, req *Request, resp *Response) (*Response, error)
}

// ResponseInterceptorFunc 函数形式的拦截器
type ResponseInterceptorFunc func(ctx context.Context, req *Request, resp *Response) (*Response, error)

// InterceptResponse 实现 ResponseInterceptor
func (f ResponseInterceptorFunc) InterceptResponse(ctx context.Context, req *Request, resp *Response) (*Response, error) {
	return f(ctx, req, resp)
}

// CacheInterceptor 把缓存透明地应用到 GET 请求
//
// 它位于响应管道中：网络请求已经完成，命中时用缓存的响应体替换新响应体
// （保留状态码与响应头），未命中或强制刷新时写入新响应体。
// 它缓存的是解析结果而不是请求本身，并发的重复请求由 Client 合并。
type CacheInterceptor struct {
	store    Cache
	policy   *CachePolicy
	defaults CacheOptions
	logger   *slog.Logger
}

// NewCacheInterceptor 创建缓存拦截器，policy 可为 nil
func NewCacheInterceptor(store Cache, policy *CachePolicy, logger *slog.Logger) *CacheInterceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return &CacheInterceptor{
		store:    store,
		policy:   policy,
		defaults: CacheOptions{TTL: DefaultCacheTTL},
		logger:   logger,
	}
}

// Cacheable 只有 GET 且未显式禁用缓存的请求可以缓存
func (i *CacheInterceptor) Cacheable(req *Request) bool {
	if req.Method != http.MethodGet || req.Cache.Disabled() {
		return false
	}
	if rule, ok := i.policy.Match(req.Path); ok && rule.Disabled && req.Cache.mode != cacheModeOn {
		return false
	}
	return true
}

// Options 合并默认值、路由规则与调用方覆盖，后者优先
func (i *CacheInterceptor) Options(req *Request) CacheOptions {
	opts := i.defaults
	if rule, ok := i.policy.Match(req.Path); ok {
		if rule.TTL > 0 {
			opts.TTL = rule.TTL
		}
		if len(rule.Tags) > 0 {
			opts.Tags = rule.Tags
		}
	}

	override := req.Cache.Options()
	if override.TTL != 0 {
		opts.TTL = override.TTL
	}
	if len(override.Tags) > 0 {
		opts.Tags = override.Tags
	}
	opts.ForceRefresh = override.ForceRefresh
	opts.BackgroundRefresh = override.BackgroundRefresh
	return opts
}

// InterceptResponse 实现 ResponseInterceptor
func (i *CacheInterceptor) InterceptResponse(ctx context.Context, req *Request, resp *Response) (*Response, error) {
	// HTTP 200 携带失败业务码同样是失败，既不读也不写缓存
	if !resp.IsSuccess() || failedEnvelope(resp.Body) || !i.Cacheable(req) {
		return resp, nil
	}

	key, err := req.CacheKey().String()
	if err != nil {
		i.logger.WarnContext(ctx, "skip response cache", slog.String("path", req.Path), slog.Any("error", err))
		return resp, nil
	}

	opts := i.Options(req)
	if !opts.ForceRefresh {
		if cached, ok := i.store.Get(key); ok {
			if body, ok := cached.([]byte); ok {
				out := *resp
				out.Body = body
				out.FromCache = true
				return &out, nil
			}
		}
	}

	i.store.Set(key, resp.Body, opts.setOptions())
	return resp, nil
}

var _ ResponseInterceptor = (*CacheInterceptor)(nil)
