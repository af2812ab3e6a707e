package campus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ShinyNito/campushire/core"
)

const (
	LoginPath    = "/auth/login"
	LogoutPath   = "/auth/logout"
	RegisterPath = "/auth/register"
	mePath       = "/users/me"

	// 后端未返回 expiresIn 时的 token 有效期
	defaultTokenExpiresIn = 7200
)

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	// Role 登录入口，为空时由后端判断
	Role Role `json:"role,omitempty"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresIn    int    `json:"expiresIn,omitempty"`
	User         User   `json:"user"`
}

// RegisterRequest 注册请求，企业账号需要填写 CompanyName
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	Role        Role   `json:"role"`
	CompanyName string `json:"companyName,omitempty"`
}

// Session 当前登录会话
type Session struct {
	User       User
	LoggedInAt time.Time
}

// Login 登录并保存会话
//
// 登录前清空缓存，避免上一个账号的数据被复用；token 写入缓存并打上 auth 标签。
//
// 示例:
//
//	session, err := client.Login(ctx, &campus.LoginRequest{
//	    Username: "alice",
//	    Password: "secret",
//	})
func (c *Client) Login(ctx context.Context, req *LoginRequest) (*Session, error) {
	if req == nil || req.Username == "" || req.Password == "" {
		return nil, fmt.Errorf("username and password are required")
	}

	resp, err := Request[LoginResponse](c).
		Path(LoginPath).
		Body(req).
		WithoutToken().
		Post(ctx)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("login: empty token in response")
	}

	c.ClearAll()

	if c.tokenManager != nil {
		expiresIn := resp.ExpiresIn
		if expiresIn <= 0 {
			expiresIn = defaultTokenExpiresIn
		}
		if err := c.tokenManager.Store(core.TokenFetchResult{Token: resp.Token, ExpiresIn: expiresIn}); err != nil {
			return nil, fmt.Errorf("store token: %w", err)
		}
	}

	session := &Session{User: resp.User, LoggedInAt: time.Now()}

	c.mu.Lock()
	c.session = session
	c.refreshToken = resp.RefreshToken
	c.mu.Unlock()

	c.cfg.Logger.InfoContext(ctx, "logged in",
		slog.Int64("user_id", resp.User.ID),
		slog.String("role", string(resp.User.Role)),
	)
	return session, nil
}

// Logout 退出登录并清空全部缓存
// 通知后端失败时本地会话同样被清除，错误仍返回给调用方。
func (c *Client) Logout(ctx context.Context) error {
	var logoutErr error
	if c.Session() != nil {
		if _, err := Request[struct{}](c).Path(LogoutPath).Post(ctx); err != nil {
			c.cfg.Logger.WarnContext(ctx, "logout request failed", slog.Any("error", err))
			logoutErr = fmt.Errorf("logout: %w", err)
		}
	}

	c.mu.Lock()
	c.session = nil
	c.refreshToken = ""
	c.mu.Unlock()

	c.ClearAll()
	return logoutErr
}

// Register 注册账号，不会自动登录
func (c *Client) Register(ctx context.Context, req *RegisterRequest) (*User, error) {
	if req == nil || req.Username == "" || req.Password == "" {
		return nil, fmt.Errorf("username and password are required")
	}
	if !req.Role.Valid() {
		return nil, fmt.Errorf("invalid role %q", req.Role)
	}
	if req.Role == RoleCompany && req.CompanyName == "" {
		return nil, fmt.Errorf("company name is required for company accounts")
	}

	return Request[*User](c).
		Path(RegisterPath).
		Body(req).
		WithoutToken().
		Post(ctx)
}

// Session 返回当前会话，未登录时为 nil
func (c *Client) Session() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// Me 获取当前用户资料（缓存，标签 user）
func (c *Client) Me(ctx context.Context) (*User, error) {
	return c.me(ctx, struct{}{})
}

func (c *Client) loadMe(ctx context.Context, _ struct{}) (*User, error) {
	return Request[*User](c).Path(mePath).NoCache().Get(ctx)
}
