package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// RequestKey 请求的缓存身份：方法 + 路径 + 查询参数 + 请求体
type RequestKey struct {
	Method string
	Path   string
	Query  map[string]string
	Body   any
}

// String 生成确定性的缓存 key
// 格式为 <path>[?<query>]|<METHOD>[|<body>]，路径在最前，便于按 URL 前缀批量失效。
// 查询参数按 key 排序编码，请求体使用规范化 JSON。
func (k RequestKey) String() (string, error) {
	var b strings.Builder
	b.WriteString(k.Path)

	if len(k.Query) > 0 {
		values := make(url.Values, len(k.Query))
		for key, value := range k.Query {
			values.Set(key, value)
		}
		b.WriteByte('?')
		b.WriteString(values.Encode())
	}

	b.WriteByte('|')
	b.WriteString(strings.ToUpper(k.Method))

	if k.Body != nil {
		body, err := canonicalJSON(k.Body)
		if err != nil {
			return "", fmt.Errorf("encode body for cache key: %w", err)
		}
		b.WriteByte('|')
		b.Write(body)
	}

	return b.String(), nil
}

// FuncKey 生成包装函数的缓存 key：name + ":" + 参数的规范化 JSON
// 参数无法序列化（函数、channel、循环引用等）时返回错误，调用方应绕过缓存或提供 KeyGenerator。
func FuncKey(name string, arg any) (string, error) {
	encoded, err := canonicalJSON(arg)
	if err != nil {
		return "", fmt.Errorf("encode %s argument for cache key: %w", name, err)
	}
	return name + ":" + string(encoded), nil
}

// canonicalJSON 结构体字段顺序固定，map 的 key 由 encoding/json 排序
func canonicalJSON(v any) ([]byte, error) {
	if raw, ok := v.([]byte); ok {
		return raw, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
