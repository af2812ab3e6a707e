package campus

import (
	"slices"
	"strings"
)

type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleCompany Role = "COMPANY"
	RoleAdmin   Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleCompany, RoleAdmin:
		return true
	default:
		return false
	}
}

// HasRole 会话角色是否属于 roles 之一
func (s *Session) HasRole(roles ...Role) bool {
	if s == nil {
		return false
	}
	return slices.Contains(roles, s.User.Role)
}

// HasPermission 管理员拥有全部权限
func (s *Session) HasPermission(permission string) bool {
	if s == nil {
		return false
	}
	if s.User.Role == RoleAdmin {
		return true
	}
	return slices.Contains(s.User.Permissions, permission)
}

// RouteRule 路由前缀允许访问的角色，Roles 为空表示任意已登录用户
type RouteRule struct {
	Prefix string
	Roles  []Role
	Public bool
}

// RouteGuard 客户端路由守卫
// 只用于界面跳转和提前失败，权限以后端校验为准。
type RouteGuard struct {
	rules []RouteRule
}

// DefaultRoutes 平台默认路由规则
var DefaultRoutes = []RouteRule{
	{Prefix: "/login", Public: true},
	{Prefix: "/register", Public: true},
	{Prefix: "/jobs", Public: true},
	{Prefix: "/student", Roles: []Role{RoleStudent}},
	{Prefix: "/applications", Roles: []Role{RoleStudent, RoleCompany}},
	{Prefix: "/resume", Roles: []Role{RoleStudent}},
	{Prefix: "/company", Roles: []Role{RoleCompany}},
	{Prefix: "/admin", Roles: []Role{RoleAdmin}},
}

func NewRouteGuard(rules ...RouteRule) *RouteGuard {
	if len(rules) == 0 {
		rules = DefaultRoutes
	}
	sorted := slices.Clone(rules)
	slices.SortStableFunc(sorted, func(a, b RouteRule) int {
		return len(b.Prefix) - len(a.Prefix)
	})
	return &RouteGuard{rules: sorted}
}

// CanAccess 判断会话能否访问 path；未匹配任何规则的路径要求登录
func (g *RouteGuard) CanAccess(session *Session, path string) bool {
	for _, rule := range g.rules {
		if !matchRoute(path, rule.Prefix) {
			continue
		}
		if rule.Public {
			return true
		}
		if session == nil {
			return false
		}
		return len(rule.Roles) == 0 || session.HasRole(rule.Roles...)
	}
	return session != nil
}

// Check 与 CanAccess 相同，返回 ErrNotLoggedIn 或 ErrPermissionDenied
func (g *RouteGuard) Check(session *Session, path string) error {
	if g.CanAccess(session, path) {
		return nil
	}
	if session == nil {
		return ErrNotLoggedIn
	}
	return ErrPermissionDenied
}

func matchRoute(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	rest := path[len(prefix):]
	return rest == "" || rest[0] == '/' || rest[0] == '?'
}
