package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	defaultExpireBufferSeconds = 60

	// TokenCacheTag token 缓存项的标签
	TokenCacheTag = "auth"
)

type TokenFetchResult struct {
	Token     string
	ExpiresIn int
}

type TokenFetcher func(ctx context.Context) (TokenFetchResult, error)

type TokenManagerConfig struct {
	Cache               Cache
	CacheKey            string
	Fetcher             TokenFetcher
	Logger              *slog.Logger
	ExpireBufferSeconds int
}

// TokenManager 缓存登录 token，过期前按 ExpireBufferSeconds 提前失效，
// 并发的刷新合并为一次 Fetcher 调用。
type TokenManager struct {
	cache               Cache
	cacheKey            string
	fetcher             TokenFetcher
	logger              *slog.Logger
	expireBufferSeconds int

	group singleflight.Group
}

func NewTokenManager(cfg TokenManagerConfig) (*TokenManager, error) {
	if cfg.Cache == nil {
		return nil, fmt.Errorf("cache is required")
	}
	if cfg.CacheKey == "" {
		return nil, fmt.Errorf("cache key is required")
	}
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	expireBufferSeconds := cfg.ExpireBufferSeconds
	if expireBufferSeconds <= 0 {
		expireBufferSeconds = defaultExpireBufferSeconds
	}

	return &TokenManager{
		cache:               cfg.Cache,
		cacheKey:            cfg.CacheKey,
		fetcher:             cfg.Fetcher,
		logger:              logger,
		expireBufferSeconds: expireBufferSeconds,
	}, nil
}

func (m *TokenManager) GetToken(ctx context.Context) (string, error) {
	if token, ok := m.cachedToken(); ok {
		return token, nil
	}
	return m.do(ctx, false)
}

func (m *TokenManager) RefreshToken(ctx context.Context) (string, error) {
	return m.do(ctx, true)
}

// Store 写入外部获得的 token（如登录接口返回的 token）
func (m *TokenManager) Store(result TokenFetchResult) error {
	if result.Token == "" {
		return fmt.Errorf("empty token")
	}
	m.cache.Set(m.cacheKey, result.Token, SetOptions{
		TTL:  m.ttl(result.ExpiresIn),
		Tags: []string{TokenCacheTag},
	})
	return nil
}

// Clear 删除缓存的 token
func (m *TokenManager) Clear() {
	m.cache.Delete(m.cacheKey)
}

func (m *TokenManager) do(ctx context.Context, force bool) (string, error) {
	ch := m.group.DoChan(m.cacheKey, func() (any, error) {
		return m.fetchAndStore(context.WithoutCancel(ctx), force)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (m *TokenManager) fetchAndStore(ctx context.Context, force bool) (string, error) {
	if !force {
		if token, ok := m.cachedToken(); ok {
			return token, nil
		}
	}

	result, err := m.fetcher(ctx)
	if err != nil {
		return "", err
	}
	if result.Token == "" {
		return "", fmt.Errorf("empty token from fetcher")
	}

	if err := m.Store(result); err != nil {
		m.logger.WarnContext(ctx, "cache token failed", slog.String("key", m.cacheKey), slog.Any("error", err))
	}

	return result.Token, nil
}

func (m *TokenManager) cachedToken() (string, bool) {
	value, ok := m.cache.Get(m.cacheKey)
	if !ok {
		return "", false
	}
	token, ok := value.(string)
	return token, ok && token != ""
}

func (m *TokenManager) ttl(expiresIn int) time.Duration {
	ttlSeconds := max(expiresIn-m.expireBufferSeconds, 1)
	return time.Duration(ttlSeconds) * time.Second
}

var _ TokenProvider = (*TokenManager)(nil)
