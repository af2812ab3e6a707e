package campus

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	// ErrNotLoggedIn 未登录或登录态已被清除
	ErrNotLoggedIn = errors.New("campus: not logged in")
	// ErrPermissionDenied 当前会话没有访问权限（仅客户端判断）
	ErrPermissionDenied = errors.New("campus: permission denied")
)

// Validate 校验客户端配置。
func (cfg *Config) Validate() error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return fmt.Errorf("base url is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base url scheme must be http or https, got %q", u.Scheme)
	}
	if cfg.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}

func requireID(name string, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%s is required", name)
	}
	return nil
}
