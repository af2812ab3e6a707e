package core

import (
	"context"
	"io"
)

type TypedRequest[T any] struct {
	builder *RequestBuilder
}

func NewTypedRequest[T any](client *Client) *TypedRequest[T] {
	return &TypedRequest[T]{builder: newRequestBuilder(client)}
}

func (r *TypedRequest[T]) Path(path string) *TypedRequest[T] {
	r.builder.Path(path)
	return r
}

func (r *TypedRequest[T]) Query(key, value string) *TypedRequest[T] {
	r.builder.Query(key, value)
	return r
}

func (r *TypedRequest[T]) QueryMap(query map[string]string) *TypedRequest[T] {
	r.builder.QueryMap(query)
	return r
}

func (r *TypedRequest[T]) Body(body any) *TypedRequest[T] {
	r.builder.Body(body)
	return r
}

func (r *TypedRequest[T]) WithoutToken() *TypedRequest[T] {
	r.builder.WithoutToken()
	return r
}

func (r *TypedRequest[T]) Cache(setting CacheSetting) *TypedRequest[T] {
	r.builder.Cache(setting)
	return r
}

func (r *TypedRequest[T]) NoCache() *TypedRequest[T] {
	r.builder.NoCache()
	return r
}

func (r *TypedRequest[T]) ForceRefresh() *TypedRequest[T] {
	r.builder.ForceRefresh()
	return r
}

func (r *TypedRequest[T]) Tags(tags ...string) *TypedRequest[T] {
	r.builder.Tags(tags...)
	return r
}

func (r *TypedRequest[T]) UploadFile(field, fileName string, reader io.Reader) *TypedRequest[T] {
	r.builder.UploadFile(field, fileName, reader)
	return r
}

func (r *TypedRequest[T]) UploadField(key, value string) *TypedRequest[T] {
	r.builder.UploadField(key, value)
	return r
}

func (r *TypedRequest[T]) Get(ctx context.Context) (T, error) {
	return decodeResponse[T](r.builder.Get(ctx))
}

func (r *TypedRequest[T]) Post(ctx context.Context) (T, error) {
	return decodeResponse[T](r.builder.Post(ctx))
}

func (r *TypedRequest[T]) Put(ctx context.Context) (T, error) {
	return decodeResponse[T](r.builder.Put(ctx))
}

func (r *TypedRequest[T]) Patch(ctx context.Context) (T, error) {
	return decodeResponse[T](r.builder.Patch(ctx))
}

func (r *TypedRequest[T]) Delete(ctx context.Context) (T, error) {
	return decodeResponse[T](r.builder.Delete(ctx))
}

func decodeResponse[T any](resp *Response, err error) (T, error) {
	if err != nil {
		var zero T
		return zero, err
	}
	return DecodeAPI[T](resp.StatusCode, resp.Body)
}
