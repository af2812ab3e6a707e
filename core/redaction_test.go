package core

import (
	"encoding/json"
	"net/url"
	"testing"
)

func TestRedactQueryMap(t *testing.T) {
	in := map[string]string{
		"token":  "token123",
		"secret": "secret123",
		"normal": "value",
	}

	out := RedactQueryMap(in)

	if out["token"] != "***" {
		t.Fatalf("expected token to be redacted, got %q", out["token"])
	}
	if out["secret"] != "***" {
		t.Fatalf("expected secret to be redacted, got %q", out["secret"])
	}
	if out["normal"] != "value" {
		t.Fatalf("expected normal to remain unchanged, got %q", out["normal"])
	}

	// 原始 map 不应被修改
	if in["token"] != "token123" {
		t.Fatalf("expected input map unchanged")
	}
}

func TestRedactURLQuery(t *testing.T) {
	raw := "https://campus.example.com/api/auth/refresh?refresh_token=abc&device=web&access_token=tok"
	redacted := RedactURLQuery(raw)

	parsed, err := url.Parse(redacted)
	if err != nil {
		t.Fatalf("parse redacted url: %v", err)
	}

	if parsed.Query().Get("refresh_token") != "***" {
		t.Fatalf("expected refresh_token to be redacted")
	}
	if parsed.Query().Get("access_token") != "***" {
		t.Fatalf("expected access_token to be redacted")
	}
	if parsed.Query().Get("device") != "web" {
		t.Fatalf("expected device to remain unchanged")
	}
}

func TestRedactJSONBody(t *testing.T) {
	body := []byte(`{"username":"alice","password":"p@ss","profile":{"refreshToken":"r1","school":"THU"},"items":[{"token":"x"}]}`)

	var got map[string]any
	if err := json.Unmarshal(RedactJSONBody(body), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got["password"] != "***" {
		t.Fatalf("expected password redacted, got %v", got["password"])
	}
	if got["username"] != "alice" {
		t.Fatalf("expected username kept, got %v", got["username"])
	}
	profile := got["profile"].(map[string]any)
	if profile["refreshToken"] != "***" || profile["school"] != "THU" {
		t.Fatalf("unexpected nested profile: %v", profile)
	}
	item := got["items"].([]any)[0].(map[string]any)
	if item["token"] != "***" {
		t.Fatalf("expected token in array redacted, got %v", item["token"])
	}
}

func TestRedactJSONBodyPassThrough(t *testing.T) {
	for _, body := range []string{"plain text", `{"code":200,"data":[1,2]}`} {
		if got := string(RedactJSONBody([]byte(body))); got != body {
			t.Fatalf("expected %q unchanged, got %q", body, got)
		}
	}
}
