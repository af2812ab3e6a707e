package core

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// apiEnvelope 后端统一响应结构 {"code":200,"message":"ok","data":{...}}
type apiEnvelope struct {
	Code    *int            `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// DecodeAPI 解析后端响应
// 带 code 字段的响应按统一结构解包 data；不带 code 的响应整体解析为 T。
func DecodeAPI[T any](statusCode int, body []byte) (T, error) {
	var zero T
	success := statusCode >= 200 && statusCode < 300

	if len(bytes.TrimSpace(body)) == 0 {
		if success {
			return zero, nil
		}
		return zero, NewAPIError(statusCode, statusCode, http.StatusText(statusCode))
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		if !success {
			return zero, NewAPIError(statusCode, statusCode, truncateBody(body, 256))
		}
		// 可能是数组等非对象响应，直接尝试解析
		var out T
		if err := json.Unmarshal(body, &out); err != nil {
			return zero, NewResponseParseError(body, err)
		}
		return out, nil
	}

	if envelope.Code != nil && !isSuccessCode(*envelope.Code) {
		return zero, NewAPIError(statusCode, *envelope.Code, envelope.Message)
	}

	if !success {
		return zero, NewAPIError(statusCode, statusCode, truncateBody(body, 256))
	}

	payload := body
	if envelope.Code != nil {
		payload = envelope.Data
	}
	if len(payload) == 0 || string(payload) == "null" {
		return zero, nil
	}

	var out T
	if err := json.Unmarshal(payload, &out); err != nil {
		return zero, NewResponseParseError(body, err)
	}
	return out, nil
}

// failedEnvelope 响应体是否为带失败业务码的统一结构
// 非 JSON 或不带 code 字段的响应体不算失败，由 DecodeAPI 解释。
func failedEnvelope(body []byte) bool {
	var envelope struct {
		Code *int `json:"code"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return false
	}
	return envelope.Code != nil && !isSuccessCode(*envelope.Code)
}

func isSuccessCode(code int) bool {
	return code == CodeSuccess || code == CodeOK
}

func truncateBody(body []byte, max int) string {
	if len(body) <= max {
		return string(body)
	}
	return string(body[:max]) + "..."
}
