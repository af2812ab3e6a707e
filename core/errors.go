package core

import (
	"errors"
	"fmt"
	"net/http"
)

// 业务码定义
const (
	CodeSuccess      = 0   // 成功
	CodeOK           = 200 // 成功（部分接口使用 HTTP 风格业务码）
	CodeBadRequest   = 400 // 参数错误
	CodeUnauthorized = 401 // 未登录或 token 失效
	CodeForbidden    = 403 // 无权限
	CodeNotFound     = 404 // 资源不存在
	CodeConflict     = 409 // 重复投递等冲突
	CodeServerError  = 500 // 服务端错误
)

// APIError 后端 API 错误
type APIError struct {
	// Status HTTP 状态码
	Status int `json:"-"`
	// Code 业务码
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error 实现 error 接口
func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d [%d] %s", e.Status, e.Code, e.Message)
}

// NewAPIError 创建 API 错误
func NewAPIError(status, code int, msg string) *APIError {
	return &APIError{
		Status:  status,
		Code:    code,
		Message: msg,
	}
}

// IsUnauthorized 判断是否为登录态失效（需要刷新 token 或重新登录）
func IsUnauthorized(err error) bool {
	if ae, ok := errors.AsType[*APIError](err); ok {
		return ae.Code == CodeUnauthorized || ae.Status == http.StatusUnauthorized
	}
	return false
}

// IsForbidden 判断是否为权限不足
func IsForbidden(err error) bool {
	if ae, ok := errors.AsType[*APIError](err); ok {
		return ae.Code == CodeForbidden || ae.Status == http.StatusForbidden
	}
	return false
}

// IsNotFound 判断资源是否不存在
func IsNotFound(err error) bool {
	if ae, ok := errors.AsType[*APIError](err); ok {
		return ae.Code == CodeNotFound || ae.Status == http.StatusNotFound
	}
	return false
}

// ResponseParseError 响应解析错误
// 当响应体不是有效的 JSON 时返回此错误
type ResponseParseError struct {
	Body []byte // 原始响应体
	Err  error  // 底层解析错误
}

// Error 实现 error 接口
func (e *ResponseParseError) Error() string {
	return fmt.Sprintf("failed to parse response: %v", e.Err)
}

// Unwrap 支持 errors.Is/As
func (e *ResponseParseError) Unwrap() error {
	return e.Err
}

// NewResponseParseError 创建响应解析错误
func NewResponseParseError(body []byte, err error) *ResponseParseError {
	return &ResponseParseError{
		Body: body,
		Err:  err,
	}
}
