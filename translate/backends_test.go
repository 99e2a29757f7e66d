package translate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLibreTranslateParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/translate" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.PostForm.Get("q") != "hola" || r.PostForm.Get("source") != "es" || r.PostForm.Get("target") != "en" {
			t.Fatalf("unexpected form: %v", r.PostForm)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"translatedText":"hello"}`))
	}))
	defer srv.Close()

	b := NewLibreTranslate(srv.URL, 0)
	out, err := b.Translate(context.Background(), "hola", "es", "en")
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if out != "hello" {
		t.Fatalf("got %q, want %q", out, "hello")
	}
}

func TestMyMemoryChecksResponseStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/get" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("langpair"); got != "es|en" {
			t.Fatalf("langpair = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"responseStatus":403,"responseData":{"translatedText":"QUOTA EXCEEDED"}}`))
	}))
	defer srv.Close()

	b := NewMyMemory(srv.URL, 0)
	_, err := b.Translate(context.Background(), "hola", "es", "en")
	if err == nil || !strings.Contains(err.Error(), "status 403") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestLingvaParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/v1/es/en/") {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"translation":"hello"}`))
	}))
	defer srv.Close()

	b := NewLingva(srv.URL, 0)
	out, err := b.Translate(context.Background(), "hola", "es", "en")
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if out != "hello" {
		t.Fatalf("got %q, want %q", out, "hello")
	}
}
