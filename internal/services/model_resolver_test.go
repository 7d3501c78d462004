package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const modelsBody = `{"models":[
	{"name":"models/foo-1.0","supportedGenerationMethods":["generateContent"]},
	{"name":"models/embedding-2.0","supportedGenerationMethods":["embedContent"]},
	{"name":"models/bar-1.5-pro","supportedGenerationMethods":["generateContent","countTokens"]},
	{"name":"models/baz-2.0","supportedGenerationMethods":["generateContent"]}
]}`

func newModelsServer(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.URL.Path != "/v1/models" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Errorf("x-goog-api-key = %q", got)
		}
		if r.URL.Query().Get("key") != "" {
			t.Error("api key sent in query string")
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newTestResolver(baseURL, override string) ModelResolver {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return NewGeminiModelResolver(ResolverConfig{
		Override:      override,
		BaseURL:       baseURL,
		StableVersion: "v1",
		FallbackModel: "gemini-1.5-flash",
		Timeout:       time.Second,
	}, nil, func() time.Time { return fixed })
}

func TestResolveLiveThenCache(t *testing.T) {
	srv, hits := newModelsServer(t, http.StatusOK, modelsBody)
	resolver := newTestResolver(srv.URL, "")

	first := resolver.Resolve(context.Background(), "test-key")
	if first.Identifier != "baz-2.0" || first.Source != SourceLive {
		t.Fatalf("first Resolve = %+v, want baz-2.0 from live", first)
	}

	second := resolver.Resolve(context.Background(), "test-key")
	if second.Identifier != "baz-2.0" || second.Source != SourceCache {
		t.Errorf("second Resolve = %+v, want baz-2.0 from cache", second)
	}
	if n := atomic.LoadInt32(hits); n != 1 {
		t.Errorf("list endpoint hit %d times, want 1", n)
	}

	if cur := resolver.Current(); cur.Identifier != "baz-2.0" {
		t.Errorf("Current = %+v", cur)
	}
}

func TestResolveFallsBackWithoutCaching(t *testing.T) {
	srv, hits := newModelsServer(t, http.StatusForbidden, `{"error":{"code":403,"message":"denied","status":"PERMISSION_DENIED"}}`)
	resolver := newTestResolver(srv.URL, "")

	for i := 0; i < 2; i++ {
		got := resolver.Resolve(context.Background(), "test-key")
		if got.Identifier != "gemini-1.5-flash" || got.Source != SourceFallback {
			t.Fatalf("Resolve = %+v, want fallback", got)
		}
	}
	if n := atomic.LoadInt32(hits); n != 2 {
		t.Errorf("list endpoint hit %d times, want 2 (fallback must not be cached)", n)
	}
	if cur := resolver.Current(); cur.Source != SourceUnresolved {
		t.Errorf("Current = %+v, want unresolved", cur)
	}
}

func TestResolveFallsBackWhenNothingSupportsGenerate(t *testing.T) {
	srv, _ := newModelsServer(t, http.StatusOK, `{"models":[{"name":"models/e","supportedGenerationMethods":["embedContent"]}]}`)
	resolver := newTestResolver(srv.URL, "")

	got := resolver.Resolve(context.Background(), "test-key")
	if got.Source != SourceFallback {
		t.Errorf("Resolve = %+v, want fallback", got)
	}
}

func TestResolveFallsBackOnMalformedErrorBody(t *testing.T) {
	srv, _ := newModelsServer(t, http.StatusNotFound, `{}`)
	resolver := newTestResolver(srv.URL, "")

	got := resolver.Resolve(context.Background(), "test-key")
	if got.Identifier != "gemini-1.5-flash" || got.Source != SourceFallback {
		t.Errorf("Resolve = %+v, want fallback", got)
	}
}

func TestResolveOverrideSkipsNetwork(t *testing.T) {
	srv, hits := newModelsServer(t, http.StatusOK, modelsBody)
	resolver := newTestResolver(srv.URL, " gemini-custom ")

	got := resolver.Resolve(context.Background(), "test-key")
	if got.Identifier != "gemini-custom" || got.Source != SourceOverride {
		t.Errorf("Resolve = %+v, want override", got)
	}
	if n := atomic.LoadInt32(hits); n != 0 {
		t.Errorf("list endpoint hit %d times, want 0", n)
	}
}

func TestInvalidateForcesRequery(t *testing.T) {
	srv, hits := newModelsServer(t, http.StatusOK, modelsBody)
	resolver := newTestResolver(srv.URL, "")

	resolver.Resolve(context.Background(), "test-key")
	resolver.Invalidate()
	if cur := resolver.Current(); cur.Source != SourceUnresolved {
		t.Errorf("Current after Invalidate = %+v", cur)
	}
	resolver.Resolve(context.Background(), "test-key")

	if n := atomic.LoadInt32(hits); n != 2 {
		t.Errorf("list endpoint hit %d times, want 2", n)
	}
}

func TestSelectPreferredModel(t *testing.T) {
	tests := []struct {
		names []string
		want  string
	}{
		{[]string{"models/foo-1.0", "models/bar-1.5-pro", "models/baz-2.0"}, "baz-2.0"},
		{[]string{"models/a-1.5-pro", "models/b-1.5-flash"}, "b-1.5-flash"},
		{[]string{"models/a-1.0", "models/b-1.5-pro-latest"}, "b-1.5-pro-latest"},
		{[]string{"models/first", "models/second"}, "first"},
		{[]string{"plain-name"}, "plain-name"},
		{nil, ""},
	}

	for _, tt := range tests {
		if got := SelectPreferredModel(tt.names); got != tt.want {
			t.Errorf("SelectPreferredModel(%v) = %q, want %q", tt.names, got, tt.want)
		}
	}
}

func TestStaticModelResolver(t *testing.T) {
	resolver := NewStaticModelResolver("gpt-4o-mini")
	resolver.Invalidate()

	got := resolver.Resolve(context.Background(), "")
	if got.Identifier != "gpt-4o-mini" || got.Source != SourceStatic {
		t.Errorf("Resolve = %+v", got)
	}
}
