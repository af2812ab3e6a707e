package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultTimeout = 30 * time.Second

	HeaderRequestID = "X-Request-ID"
)

type ClientConfig struct {
	BaseURL       string
	HTTPClient    *http.Client
	TokenProvider TokenProvider
	Logger        *slog.Logger
	// Cache 响应缓存，为 nil 时创建内存缓存
	Cache Cache
	// CachePolicy 路由级缓存规则（可选）
	CachePolicy *CachePolicy
	// DisableCache 不注册缓存拦截器
	DisableCache bool
	// Interceptors 额外的响应拦截器，在缓存拦截器之后执行
	Interceptors []ResponseInterceptor
}

type Client struct {
	httpClient    *http.Client
	baseURL       *url.URL
	tokenProvider TokenProvider
	logger        *slog.Logger
	cache         Cache
	interceptors  []ResponseInterceptor

	inflight singleflight.Group
}

func NewClient(cfg ClientConfig) (*Client, error) {
	baseURL := strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	parsedBaseURL, err := url.Parse(baseURL + "/")
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cache := cfg.Cache
	if cache == nil {
		cache = NewMemoryCache()
	}

	var interceptors []ResponseInterceptor
	if !cfg.DisableCache {
		interceptors = append(interceptors, NewCacheInterceptor(cache, cfg.CachePolicy, logger))
	}
	interceptors = append(interceptors, cfg.Interceptors...)

	return &Client{
		httpClient:    httpClient,
		baseURL:       parsedBaseURL,
		tokenProvider: cfg.TokenProvider,
		logger:        logger,
		cache:         cache,
		interceptors:  interceptors,
	}, nil
}

func (c *Client) Logger() *slog.Logger {
	return c.logger
}

// Cache 返回客户端共享的响应缓存
func (c *Client) Cache() Cache {
	return c.cache
}

func (c *Client) Request() *RequestBuilder {
	return newRequestBuilder(c)
}

// Do 发送请求并依次执行响应拦截器
// 非 2xx 响应不视为错误，由调用方（如 DecodeAPI）解释。
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}

	for _, interceptor := range c.interceptors {
		resp, err = interceptor.InterceptResponse(ctx, req, resp)
		if err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// send 对可缓存的 GET 请求合并并发的相同调用
func (c *Client) send(ctx context.Context, req *Request) (*Response, error) {
	if req.Method != http.MethodGet || req.Cache.Disabled() || req.upload != nil {
		return c.roundTrip(ctx, req)
	}

	key, err := req.CacheKey().String()
	if err != nil {
		return c.roundTrip(ctx, req)
	}
	if req.WithToken {
		key = "auth:" + key
	}

	ch := c.inflight.DoChan(key, func() (any, error) {
		return c.roundTrip(context.WithoutCancel(ctx), req)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		// 共享的响应不可被调用方修改
		resp := *res.Val.(*Response)
		return &resp, nil
	}
}

func (c *Client) roundTrip(ctx context.Context, req *Request) (*Response, error) {
	reqURL, err := c.buildURL(req.Path, req.Query)
	if err != nil {
		return nil, fmt.Errorf("build url: %w", err)
	}

	body, contentType, err := encodeRequestBody(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(HeaderRequestID, uuid.NewString())

	if req.WithToken {
		if c.tokenProvider == nil {
			return nil, fmt.Errorf("get access token: no token provider configured")
		}
		token, err := c.tokenProvider.GetToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("get access token: %w", err)
		}
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	c.logRequest(ctx, req.Method, reqURL, httpReq.Header.Get(HeaderRequestID), body, req.upload == nil)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	c.logResponse(ctx, httpResp.StatusCode, respBody)

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       respBody,
	}, nil
}

func encodeRequestBody(req *Request) ([]byte, string, error) {
	if req.upload != nil {
		return encodeMultipart(req.upload)
	}
	if req.Body == nil {
		return nil, "", nil
	}
	if raw, ok := req.Body.([]byte); ok {
		return raw, "application/json", nil
	}
	data, err := json.Marshal(req.Body)
	if err != nil {
		return nil, "", fmt.Errorf("marshal request body: %w", err)
	}
	return data, "application/json", nil
}

func encodeMultipart(part *uploadPart) ([]byte, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if part.reader != nil {
		file, err := writer.CreateFormFile(part.fieldName, part.fileName)
		if err != nil {
			return nil, "", fmt.Errorf("create form file: %w", err)
		}
		if _, err := io.Copy(file, part.reader); err != nil {
			return nil, "", fmt.Errorf("copy file: %w", err)
		}
	}

	for key, value := range part.fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", key, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close writer: %w", err)
	}
	return body.Bytes(), writer.FormDataContentType(), nil
}

func (c *Client) buildURL(path string, query map[string]string) (string, error) {
	ref, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return "", fmt.Errorf("parse path: %w", err)
	}

	u := c.baseURL.ResolveReference(ref)
	if len(query) > 0 {
		values := u.Query()
		for key, value := range query {
			values.Set(key, value)
		}
		u.RawQuery = values.Encode()
	}

	return u.String(), nil
}

func (c *Client) logRequest(ctx context.Context, method, rawURL, requestID string, body []byte, logBody bool) {
	if !c.logger.Enabled(ctx, slog.LevelDebug) {
		return
	}

	attrs := []slog.Attr{
		slog.String("method", method),
		slog.String("url", RedactURLQuery(rawURL)),
		slog.String("request_id", requestID),
	}
	if logBody && len(body) > 0 {
		attrs = append(attrs, slog.String("body", string(RedactJSONBody(body))))
	}
	c.logger.LogAttrs(ctx, slog.LevelDebug, "http request", attrs...)
}

func (c *Client) logResponse(ctx context.Context, statusCode int, body []byte) {
	if !c.logger.Enabled(ctx, slog.LevelDebug) {
		return
	}

	attrs := []slog.Attr{slog.Int("status", statusCode)}
	if len(body) > 0 {
		attrs = append(attrs, slog.String("body", string(RedactJSONBody(body))))
	}
	c.logger.LogAttrs(ctx, slog.LevelDebug, "http response", attrs...)
}
