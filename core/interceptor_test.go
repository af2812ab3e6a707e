package core

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okResponse(body string) *Response {
	return &Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"X-Trace": []string{"t1"}},
		Body:       []byte(body),
	}
}

func TestCacheInterceptor_Cacheable(t *testing.T) {
	policy := &CachePolicy{Rules: []CacheRule{{Prefix: "/resumes/exists", Disabled: true}}}
	ic := NewCacheInterceptor(NewMemoryCache(), policy, nil)

	tests := []struct {
		name string
		req  Request
		want bool
	}{
		{name: "GET without setting", req: Request{Method: http.MethodGet, Path: "/jobs"}, want: true},
		{name: "GET cache on", req: Request{Method: http.MethodGet, Path: "/jobs", Cache: CacheOn()}, want: true},
		{name: "GET cache off", req: Request{Method: http.MethodGet, Path: "/jobs", Cache: CacheOff()}, want: false},
		{name: "POST", req: Request{Method: http.MethodPost, Path: "/jobs"}, want: false},
		{name: "POST cache on", req: Request{Method: http.MethodPost, Path: "/jobs", Cache: CacheOn()}, want: false},
		{name: "policy disabled", req: Request{Method: http.MethodGet, Path: "/resumes/exists"}, want: false},
		{name: "policy disabled but call opts in", req: Request{Method: http.MethodGet, Path: "/resumes/exists", Cache: CacheOn()}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ic.Cacheable(&tt.req))
		})
	}
}

func TestCacheInterceptor_Options(t *testing.T) {
	policy := &CachePolicy{Rules: []CacheRule{{Prefix: "/jobs", TTL: time.Minute, Tags: []string{"job"}}}}
	ic := NewCacheInterceptor(NewMemoryCache(), policy, nil)

	got := ic.Options(&Request{Method: http.MethodGet, Path: "/companies"})
	assert.Equal(t, CacheOptions{TTL: DefaultCacheTTL}, got)

	got = ic.Options(&Request{Method: http.MethodGet, Path: "/jobs"})
	assert.Equal(t, CacheOptions{TTL: time.Minute, Tags: []string{"job"}}, got)

	got = ic.Options(&Request{Method: http.MethodGet, Path: "/jobs", Cache: CacheWith(CacheOptions{
		TTL:          time.Second,
		ForceRefresh: true,
	})})
	assert.Equal(t, CacheOptions{TTL: time.Second, Tags: []string{"job"}, ForceRefresh: true}, got)
}

func TestCacheInterceptor_StoresAndSubstitutes(t *testing.T) {
	store := NewMemoryCache()
	ic := NewCacheInterceptor(store, nil, nil)
	ctx := context.Background()
	req := &Request{Method: http.MethodGet, Path: "/jobs", Query: map[string]string{"page": "1"}}

	first, err := ic.InterceptResponse(ctx, req, okResponse(`{"v":1}`))
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Equal(t, `{"v":1}`, string(first.Body))
	assert.Equal(t, 1, store.Stats().Size)

	fresh := okResponse(`{"v":2}`)
	second, err := ic.InterceptResponse(ctx, req, fresh)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, `{"v":1}`, string(second.Body))
	assert.Equal(t, "t1", second.Header.Get("X-Trace"), "envelope preserved")
	assert.Equal(t, `{"v":2}`, string(fresh.Body), "original response untouched")
}

func TestCacheInterceptor_ForceRefreshOverwrites(t *testing.T) {
	store := NewMemoryCache()
	ic := NewCacheInterceptor(store, nil, nil)
	ctx := context.Background()
	req := &Request{Method: http.MethodGet, Path: "/jobs"}

	_, err := ic.InterceptResponse(ctx, req, okResponse(`old`))
	require.NoError(t, err)

	forced := &Request{Method: http.MethodGet, Path: "/jobs", Cache: CacheWith(CacheOptions{ForceRefresh: true})}
	got, err := ic.InterceptResponse(ctx, forced, okResponse(`new`))
	require.NoError(t, err)
	assert.False(t, got.FromCache)
	assert.Equal(t, "new", string(got.Body))

	got, err = ic.InterceptResponse(ctx, req, okResponse(`newer`))
	require.NoError(t, err)
	assert.Equal(t, "new", string(got.Body))
}

func TestCacheInterceptor_PassThrough(t *testing.T) {
	store := NewMemoryCache()
	ic := NewCacheInterceptor(store, nil, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		req  *Request
		resp *Response
	}{
		{
			name: "non GET",
			req:  &Request{Method: http.MethodPost, Path: "/applications"},
			resp: okResponse(`{}`),
		},
		{
			name: "cache disabled",
			req:  &Request{Method: http.MethodGet, Path: "/me", Cache: CacheOff()},
			resp: okResponse(`{}`),
		},
		{
			name: "error status",
			req:  &Request{Method: http.MethodGet, Path: "/jobs"},
			resp: &Response{StatusCode: http.StatusInternalServerError, Body: []byte("oops")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ic.InterceptResponse(ctx, tt.req, tt.resp)
			require.NoError(t, err)
			assert.Same(t, tt.resp, got)
		})
	}
	assert.Equal(t, 0, store.Stats().Size)
}

func TestCacheInterceptor_Tags(t *testing.T) {
	store := NewMemoryCache()
	ic := NewCacheInterceptor(store, nil, nil)
	ctx := context.Background()

	req := &Request{Method: http.MethodGet, Path: "/jobs", Cache: CacheWith(CacheOptions{Tags: []string{"job"}})}
	_, err := ic.InterceptResponse(ctx, req, okResponse(`a`))
	require.NoError(t, err)
	assert.Equal(t, CacheStats{Size: 1, TagCount: 1}, store.Stats())

	store.ClearByTag("job")
	got, err := ic.InterceptResponse(ctx, req, okResponse(`b`))
	require.NoError(t, err)
	assert.False(t, got.FromCache)
	assert.Equal(t, "b", string(got.Body))
}

func TestCacheInterceptor_ErrorEnvelopeNeverCached(t *testing.T) {
	store := NewMemoryCache()
	ic := NewCacheInterceptor(store, nil, nil)
	ctx := context.Background()
	req := &Request{Method: http.MethodGet, Path: "/jobs"}

	failed := okResponse(`{"code":500,"message":"db down"}`)
	got, err := ic.InterceptResponse(ctx, req, failed)
	require.NoError(t, err)
	assert.Same(t, failed, got)
	assert.Equal(t, 0, store.Stats().Size, "error envelope is not stored")

	healthy, err := ic.InterceptResponse(ctx, req, okResponse(`{"code":0,"data":{"n":1}}`))
	require.NoError(t, err)
	assert.False(t, healthy.FromCache)
	assert.Equal(t, 1, store.Stats().Size)

	failedAgain := okResponse(`{"code":500,"message":"db down"}`)
	got, err = ic.InterceptResponse(ctx, req, failedAgain)
	require.NoError(t, err)
	assert.Same(t, failedAgain, got, "a failed response is never masked by a cached payload")
}

func TestFailedEnvelope(t *testing.T) {
	tests := []struct {
		body string
		want bool
	}{
		{body: `{"code":500,"message":"db down"}`, want: true},
		{body: `{"code":401}`, want: true},
		{body: `{"code":0,"data":1}`, want: false},
		{body: `{"code":200,"data":1}`, want: false},
		{body: `{"id":1}`, want: false},
		{body: `[1,2]`, want: false},
		{body: `plain`, want: false},
		{body: ``, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			assert.Equal(t, tt.want, failedEnvelope([]byte(tt.body)))
		})
	}
}
