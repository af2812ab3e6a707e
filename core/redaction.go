package core

import (
	"encoding/json"
	"net/url"
	"strings"
)

const redactedValue = "***"

var sensitiveKeys = map[string]struct{}{
	"access_token":  {},
	"accesstoken":   {},
	"authorization": {},
	"captcha":       {},
	"idcard":        {},
	"id_card":       {},
	"newpassword":   {},
	"oldpassword":   {},
	"password":      {},
	"refresh_token": {},
	"refreshtoken":  {},
	"secret":        {},
	"token":         {},
}

// RedactQueryMap 脱敏查询参数，返回拷贝，原 map 不会被修改。
func RedactQueryMap(query map[string]string) map[string]string {
	if query == nil {
		return nil
	}

	out := make(map[string]string, len(query))
	for key, value := range query {
		if isSensitiveKey(key) {
			out[key] = redactedValue
			continue
		}
		out[key] = value
	}

	return out
}

// RedactURLQuery 脱敏 URL 查询参数中的敏感字段。
func RedactURLQuery(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.RawQuery == "" {
		return rawURL
	}

	query := parsed.Query()
	for key, values := range query {
		if !isSensitiveKey(key) {
			continue
		}
		for i := range values {
			values[i] = redactedValue
		}
		query[key] = values
	}

	parsed.RawQuery = query.Encode()
	return parsed.String()
}

// RedactJSONBody 脱敏 JSON 请求/响应体中的敏感字段（递归处理嵌套对象与数组）。
// 非 JSON 内容原样返回。
func RedactJSONBody(body []byte) []byte {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return body
	}
	if !redactValue(v) {
		return body
	}
	out, err := json.Marshal(v)
	if err != nil {
		return body
	}
	return out
}

func redactValue(v any) bool {
	changed := false
	switch val := v.(type) {
	case map[string]any:
		for key, inner := range val {
			if isSensitiveKey(key) {
				val[key] = redactedValue
				changed = true
				continue
			}
			if redactValue(inner) {
				changed = true
			}
		}
	case []any:
		for _, inner := range val {
			if redactValue(inner) {
				changed = true
			}
		}
	}
	return changed
}

func isSensitiveKey(key string) bool {
	_, exists := sensitiveKeys[strings.ToLower(key)]
	return exists
}
