package core

import (
	"context"
	"fmt"
)

// TokenProvider 登录态 token 提供者
// campus 包使用 TokenManager 实现此接口，测试与 CLI 可使用 StaticToken。
type TokenProvider interface {
	// GetToken 获取 token
	// 实现应处理缓存和自动刷新逻辑
	//
	// 参数:
	//   - ctx: 上下文
	//
	// 返回:
	//   - string: 可用于 Authorization 头的 token
	//   - error: 可能的错误
	//
	// 错误:
	//   - 未登录
	//   - 刷新 token 失败
	GetToken(ctx context.Context) (string, error)

	// RefreshToken 强制刷新 token
	// 用于 token 失效时主动刷新
	RefreshToken(ctx context.Context) (string, error)
}

// StaticToken 固定 token，不支持刷新
type StaticToken string

// GetToken 实现 TokenProvider
func (t StaticToken) GetToken(context.Context) (string, error) {
	if t == "" {
		return "", fmt.Errorf("token is empty")
	}
	return string(t), nil
}

// RefreshToken 实现 TokenProvider
func (t StaticToken) RefreshToken(ctx context.Context) (string, error) {
	return t.GetToken(ctx)
}

var _ TokenProvider = StaticToken("")
