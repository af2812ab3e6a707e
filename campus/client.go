package campus

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ShinyNito/campushire/core"
)

const (
	refreshTokenPath   = "/auth/refresh"
	tokenCacheKey      = "campus:session_token"
	tokenExpireBuffer  = 60
	defaultHTTPTimeout = 15 * time.Second
)

// 缓存标签
const (
	TagJob          = "job"
	TagApplication  = "application"
	TagNotification = "notification"
	TagResume       = "resume"
	TagUser         = "user"
	TagAdmin        = "admin"
)

type Config struct {
	// BaseURL 后端 API 地址（必填），如 https://campus.example.com/api
	BaseURL string
	// HTTPClient 自定义 HTTP 客户端（可选）
	HTTPClient *http.Client
	// Timeout HTTPClient 为空时使用的超时时间
	Timeout time.Duration
	// Logger 日志记录器（可选，默认使用 slog.Default()）
	Logger *slog.Logger
	// Cache 响应缓存（可选，默认使用内存缓存），token 也存放于此
	Cache core.Cache
	// CacheTTL 默认内存缓存的默认 TTL，Cache 非空时忽略
	CacheTTL time.Duration
	// CachePolicy 路由级缓存规则（可选）
	CachePolicy *core.CachePolicy
	// Metrics 缓存指标（可选）
	Metrics core.CacheMetrics
	// TokenProvider 外部 token 提供者（可选），设置后不使用内置的登录态管理
	TokenProvider core.TokenProvider
}

type Client struct {
	cfg          Config
	apiClient    *core.Client
	apiCache     *core.APICache
	tokenManager *core.TokenManager

	mu           sync.RWMutex
	session      *Session
	refreshToken string

	me                core.LoadFunc[struct{}, *User]
	getJob            core.LoadFunc[int64, *Job]
	myApplications    core.LoadFunc[PageQuery, *Page[Application]]
	listNotifications core.LoadFunc[NotificationQuery, *Page[Notification]]
}

type refreshTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
}

func New(cfg Config) (*Client, error) {
	cfg = normalizeConfig(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid campus config: %w", err)
	}

	c := &Client{cfg: cfg}

	tokenProvider := cfg.TokenProvider
	if tokenProvider == nil {
		tokenClient, err := core.NewClient(core.ClientConfig{
			BaseURL:      cfg.BaseURL,
			HTTPClient:   cfg.HTTPClient,
			Logger:       cfg.Logger,
			Cache:        cfg.Cache,
			DisableCache: true,
		})
		if err != nil {
			return nil, err
		}

		tokenManager, err := core.NewTokenManager(core.TokenManagerConfig{
			Cache:               cfg.Cache,
			CacheKey:            tokenCacheKey,
			ExpireBufferSeconds: tokenExpireBuffer,
			Logger:              cfg.Logger,
			Fetcher: func(ctx context.Context) (core.TokenFetchResult, error) {
				refreshToken := c.currentRefreshToken()
				if refreshToken == "" {
					return core.TokenFetchResult{}, ErrNotLoggedIn
				}
				resp, err := core.NewTypedRequest[refreshTokenResponse](tokenClient).
					Path(refreshTokenPath).
					Body(map[string]string{"refreshToken": refreshToken}).
					WithoutToken().
					Post(ctx)
				if err != nil {
					return core.TokenFetchResult{}, fmt.Errorf("refresh session token: %w", err)
				}
				return core.TokenFetchResult{Token: resp.Token, ExpiresIn: resp.ExpiresIn}, nil
			},
		})
		if err != nil {
			return nil, err
		}
		c.tokenManager = tokenManager
		tokenProvider = tokenManager
	}

	apiClient, err := core.NewClient(core.ClientConfig{
		BaseURL:       cfg.BaseURL,
		HTTPClient:    cfg.HTTPClient,
		TokenProvider: tokenProvider,
		Logger:        cfg.Logger,
		Cache:         cfg.Cache,
		CachePolicy:   cfg.CachePolicy,
	})
	if err != nil {
		return nil, err
	}
	c.apiClient = apiClient

	apiCache, err := core.NewAPICache(core.APICacheConfig{
		Cache:   cfg.Cache,
		Logger:  cfg.Logger,
		Metrics: cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	c.apiCache = apiCache

	c.initLoaders()
	return c, nil
}

// initLoaders 创建带缓存的加载函数
// 名称使用资源路径，使 ClearByURLPrefix 同时覆盖这些条目。
func (c *Client) initLoaders() {
	c.me = core.Wrap(c.apiCache, mePath, c.loadMe, core.WrapOptions[struct{}]{
		CacheOptions: core.CacheOptions{TTL: 10 * time.Minute, Tags: []string{TagUser}},
	})
	c.getJob = core.Wrap(c.apiCache, jobsPath, c.loadJob, core.WrapOptions[int64]{
		CacheOptions: core.CacheOptions{TTL: 2 * time.Minute, Tags: []string{TagJob}},
		TagGenerator: func(id int64) []string { return []string{JobTag(id)} },
	})
	c.myApplications = core.Wrap(c.apiCache, myApplicationsPath, c.loadMyApplications, core.WrapOptions[PageQuery]{
		CacheOptions: core.CacheOptions{TTL: time.Minute, Tags: []string{TagApplication}, BackgroundRefresh: true},
	})
	c.listNotifications = core.Wrap(c.apiCache, notificationsPath, c.loadNotifications, core.WrapOptions[NotificationQuery]{
		CacheOptions: core.CacheOptions{TTL: 30 * time.Second, Tags: []string{TagNotification}, BackgroundRefresh: true},
	})
}

func (c *Client) Config() Config {
	return c.cfg
}

// APIClient 返回底层 HTTP 客户端，用于调用 SDK 尚未封装的接口
func (c *Client) APIClient() *core.Client {
	return c.apiClient
}

func (c *Client) TokenProvider() core.TokenProvider {
	if c.tokenManager == nil {
		return c.cfg.TokenProvider
	}
	return c.tokenManager
}

// ClearAll 清空全部缓存（包括登录 token）
func (c *Client) ClearAll() {
	c.cfg.Cache.Clear()
}

// ClearByTag 按标签失效缓存
func (c *Client) ClearByTag(tag string) {
	c.cfg.Cache.ClearByTag(tag)
}

// ClearByTags 按多个标签失效缓存
func (c *Client) ClearByTags(tags ...string) {
	c.cfg.Cache.ClearByTags(tags...)
}

// ClearByURLPrefix 按路径前缀失效缓存，如 "/jobs"
func (c *Client) ClearByURLPrefix(prefix string) {
	c.cfg.Cache.ClearByURLPrefix(prefix)
}

// CacheStats 返回缓存统计
func (c *Client) CacheStats() core.CacheStats {
	return c.cfg.Cache.Stats()
}

// Close 等待进行中的后台刷新结束
func (c *Client) Close() {
	c.apiCache.Wait()
}

func (c *Client) currentRefreshToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refreshToken
}

func normalizeConfig(cfg Config) Config {
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = core.NoopMetrics{}
	}
	if cfg.Cache == nil {
		cfg.Cache = core.NewMemoryCache(
			core.WithDefaultTTL(cfg.CacheTTL),
			core.WithCacheMetrics(cfg.Metrics),
		)
	}
	if cfg.HTTPClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultHTTPTimeout
		}
		cfg.HTTPClient = &http.Client{Timeout: timeout}
	}
	return cfg
}
