package core

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, server *httptest.Server, tokenProvider TokenProvider) *Client {
	t.Helper()
	client, err := NewClient(ClientConfig{
		BaseURL:       server.URL,
		TokenProvider: tokenProvider,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestTypedRequestGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token" {
			t.Fatalf("missing authorization")
		}
		if r.URL.Query().Get("id") != "42" {
			t.Fatalf("missing id")
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"code":    200,
			"message": "success",
			"data":    map[string]any{"title": "Backend Intern"},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server, StaticToken("token"))

	type job struct {
		Title string `json:"title"`
	}
	got, err := NewTypedRequest[job](client).
		Path("/jobs/detail").
		Query("id", "42").
		Get(context.Background())
	if err != nil {
		t.Fatalf("typed get: %v", err)
	}
	if got.Title != "Backend Intern" {
		t.Fatalf("unexpected title: %s", got.Title)
	}
}

func TestTypedRequestWithoutToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Fatal("authorization should be omitted")
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"code": 200, "data": map[string]any{"token": "abc"}})
	}))
	defer server.Close()

	client := newTestClient(t, server, StaticToken("token"))

	type resp struct {
		Token string `json:"token"`
	}
	got, err := NewTypedRequest[resp](client).
		Path("/auth/login").
		WithoutToken().
		Body(map[string]string{"username": "alice", "password": "secret"}).
		Post(context.Background())
	if err != nil {
		t.Fatalf("typed post: %v", err)
	}
	if got.Token != "abc" {
		t.Fatalf("unexpected token: %s", got.Token)
	}
}

func TestTypedRequestAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]any{"code": 403, "message": "forbidden"})
	}))
	defer server.Close()

	client := newTestClient(t, server, StaticToken("token"))

	_, err := NewTypedRequest[map[string]any](client).Path("/admin/companies").Delete(context.Background())
	if !IsForbidden(err) {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}

func TestTypedRequestMethods(t *testing.T) {
	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method)
		_ = json.NewEncoder(w).Encode(map[string]any{"code": 0})
	}))
	defer server.Close()

	client := newTestClient(t, server, StaticToken("token"))
	ctx := context.Background()

	if _, err := NewTypedRequest[struct{}](client).Path("/x").Put(ctx); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := NewTypedRequest[struct{}](client).Path("/x").Patch(ctx); err != nil {
		t.Fatalf("patch: %v", err)
	}
	if _, err := NewTypedRequest[struct{}](client).Path("/x").Delete(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}

	want := []string{http.MethodPut, http.MethodPatch, http.MethodDelete}
	if len(seen) != len(want) {
		t.Fatalf("unexpected methods: %v", seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("unexpected methods: %v", seen)
		}
	}
}
