package core

import (
	"context"
	"io"
	"net/http"
)

// RequestBuilder 请求构建器
type RequestBuilder struct {
	client *Client
	req    Request
}

// newRequestBuilder 创建请求构建器（包内使用）
func newRequestBuilder(client *Client) *RequestBuilder {
	return &RequestBuilder{
		client: client,
		req: Request{
			Query:     make(map[string]string),
			WithToken: true, // 默认携带 token
		},
	}
}

// Path 设置请求路径
func (b *RequestBuilder) Path(path string) *RequestBuilder {
	b.req.Path = path
	return b
}

// Query 添加单个查询参数
func (b *RequestBuilder) Query(key, value string) *RequestBuilder {
	b.req.Query[key] = value
	return b
}

// QueryMap 批量设置查询参数
func (b *RequestBuilder) QueryMap(query map[string]string) *RequestBuilder {
	for k, v := range query {
		b.req.Query[k] = v
	}
	return b
}

// Body 设置请求体
func (b *RequestBuilder) Body(body any) *RequestBuilder {
	b.req.Body = body
	return b
}

// WithoutToken 不添加 Authorization
func (b *RequestBuilder) WithoutToken() *RequestBuilder {
	b.req.WithToken = false
	return b
}

// WithToken 添加 Authorization（默认行为）
func (b *RequestBuilder) WithToken() *RequestBuilder {
	b.req.WithToken = true
	return b
}

// Cache 设置本次请求的缓存策略
func (b *RequestBuilder) Cache(setting CacheSetting) *RequestBuilder {
	b.req.Cache = setting
	return b
}

// NoCache 本次请求不走缓存
func (b *RequestBuilder) NoCache() *RequestBuilder {
	b.req.Cache = CacheOff()
	return b
}

// ForceRefresh 忽略已缓存的响应并用新响应覆盖
func (b *RequestBuilder) ForceRefresh() *RequestBuilder {
	opts := b.req.Cache.Options()
	opts.ForceRefresh = true
	b.req.Cache = CacheWith(opts)
	return b
}

// Tags 为缓存的响应附加标签
func (b *RequestBuilder) Tags(tags ...string) *RequestBuilder {
	opts := b.req.Cache.Options()
	opts.Tags = append(opts.Tags, tags...)
	b.req.Cache = CacheWith(opts)
	return b
}

// UploadFile 设置文件上传参数
// fieldName: 表单字段名
// fileName: 文件名
// fileReader: 文件内容
func (b *RequestBuilder) UploadFile(fieldName, fileName string, fileReader io.Reader) *RequestBuilder {
	if b.req.upload == nil {
		b.req.upload = &uploadPart{fields: make(map[string]string)}
	}
	b.req.upload.fieldName = fieldName
	b.req.upload.fileName = fileName
	b.req.upload.reader = fileReader
	return b
}

// UploadField 设置上传时的额外表单字段
func (b *RequestBuilder) UploadField(key, value string) *RequestBuilder {
	if b.req.upload == nil {
		b.req.upload = &uploadPart{fields: make(map[string]string)}
	}
	b.req.upload.fields[key] = value
	return b
}

// Get 执行 GET 请求
func (b *RequestBuilder) Get(ctx context.Context) (*Response, error) {
	return b.do(ctx, http.MethodGet)
}

// Post 执行 POST 请求，设置了上传文件时使用 multipart
func (b *RequestBuilder) Post(ctx context.Context) (*Response, error) {
	return b.do(ctx, http.MethodPost)
}

// Put 执行 PUT 请求
func (b *RequestBuilder) Put(ctx context.Context) (*Response, error) {
	return b.do(ctx, http.MethodPut)
}

// Patch 执行 PATCH 请求
func (b *RequestBuilder) Patch(ctx context.Context) (*Response, error) {
	return b.do(ctx, http.MethodPatch)
}

// Delete 执行 DELETE 请求
func (b *RequestBuilder) Delete(ctx context.Context) (*Response, error) {
	return b.do(ctx, http.MethodDelete)
}

func (b *RequestBuilder) do(ctx context.Context, method string) (*Response, error) {
	req := b.req
	req.Method = method
	if req.upload != nil && method != http.MethodPost {
		req.upload = nil
	}
	return b.client.Do(ctx, &req)
}
