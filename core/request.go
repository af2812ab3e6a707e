package core

import (
	"io"
	"net/http"
)

type cacheMode uint8

const (
	cacheModeDefault cacheMode = iota
	cacheModeOff
	cacheModeOn
)

// CacheSetting 单次请求的缓存设置
// 零值表示未指定，GET 请求按默认策略缓存。
type CacheSetting struct {
	mode    cacheMode
	options CacheOptions
}

// CacheOff 禁用本次请求的缓存
func CacheOff() CacheSetting {
	return CacheSetting{mode: cacheModeOff}
}

// CacheOn 使用默认策略缓存
func CacheOn() CacheSetting {
	return CacheSetting{mode: cacheModeOn}
}

// CacheWith 在默认策略上覆盖指定字段
func CacheWith(opts CacheOptions) CacheSetting {
	return CacheSetting{mode: cacheModeOn, options: opts}
}

// Disabled 是否显式禁用
func (s CacheSetting) Disabled() bool {
	return s.mode == cacheModeOff
}

// Options 返回调用方覆盖的选项
func (s CacheSetting) Options() CacheOptions {
	return s.options
}

// Request 一次 API 请求
type Request struct {
	Method    string
	Path      string
	Query     map[string]string
	Body      any
	WithToken bool
	Cache     CacheSetting

	upload *uploadPart
}

type uploadPart struct {
	fieldName string
	fileName  string
	reader    io.Reader
	fields    map[string]string
}

// CacheKey 返回请求的缓存身份
func (r *Request) CacheKey() RequestKey {
	return RequestKey{
		Method: r.Method,
		Path:   r.Path,
		Query:  r.Query,
		Body:   r.Body,
	}
}

// Response API 响应
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	// FromCache 响应体是否由缓存替换
	FromCache bool
}

// IsSuccess 状态码是否为 2xx
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
