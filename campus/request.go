package campus

import "github.com/ShinyNito/campushire/core"

type TypedRequest[T any] = core.TypedRequest[T]

// Request 创建类型化请求，用于调用 SDK 尚未封装的接口
func Request[T any](c *Client) *TypedRequest[T] {
	return core.NewTypedRequest[T](c.apiClient)
}
