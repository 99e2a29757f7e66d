package builtin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charlabot/charla/convert"
	"github.com/charlabot/charla/lyrics"
	"github.com/charlabot/charla/translate"
)

func newRatesServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/USD" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"base":"USD","date":"2025-06-01","rates":{"EUR":0.9}}`))
	}))
}

func TestCurrencyToolStructuredParams(t *testing.T) {
	srv := newRatesServer(t)
	defer srv.Close()

	tool := NewCurrencyTool(convert.NewClient(srv.URL, 0))
	out, err := tool.Execute(context.Background(), map[string]any{
		"amount": 100.0, "from": "usd", "to": "eur",
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "CONVERSIÓN DE MONEDAS") || !strings.Contains(out, "90.00 EUR") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestCurrencyToolRawQueryFallback(t *testing.T) {
	srv := newRatesServer(t)
	defer srv.Close()

	tool := NewCurrencyTool(convert.NewClient(srv.URL, 0))
	out, err := tool.Execute(context.Background(), map[string]any{
		"query": "convierte 100 dolares a euros",
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "90.00 EUR") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestCurrencyToolStringAmount(t *testing.T) {
	srv := newRatesServer(t)
	defer srv.Close()

	// LLMs sometimes emit numbers as JSON strings.
	tool := NewCurrencyTool(convert.NewClient(srv.URL, 0))
	out, err := tool.Execute(context.Background(), map[string]any{
		"amount": "50", "from": "USD", "to": "EUR",
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "45.00 EUR") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestCurrencyToolUnparseableQuery(t *testing.T) {
	tool := NewCurrencyTool(convert.NewClient("http://127.0.0.1:0", 0))
	_, err := tool.Execute(context.Background(), map[string]any{"query": "hola"})
	if err == nil {
		t.Fatalf("expected parse error")
	}
}

type fixedBackend struct {
	out string
}

func (b fixedBackend) Name() string { return "fixed" }

func (b fixedBackend) Translate(ctx context.Context, text, source, target string) (string, error) {
	return b.out, nil
}

func TestTranslatorToolStructuredParams(t *testing.T) {
	chain := translate.NewChainWith([]translate.Backend{fixedBackend{out: "hola mundo"}})
	tool := NewTranslatorTool(chain)

	out, err := tool.Execute(context.Background(), map[string]any{
		"text": "hello world", "source": "en", "target": "es",
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "hola mundo") || !strings.Contains(out, "TRADUCCIÓN") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestTranslatorToolRawQueryFallback(t *testing.T) {
	chain := translate.NewChainWith([]translate.Backend{fixedBackend{out: "hola"}})
	tool := NewTranslatorTool(chain)

	out, err := tool.Execute(context.Background(), map[string]any{
		"query": "traduce 'hello' al español",
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "hola") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestTranslatorToolUnparseableQuery(t *testing.T) {
	chain := translate.NewChainWith([]translate.Backend{fixedBackend{out: "x"}})
	tool := NewTranslatorTool(chain)

	if _, err := tool.Execute(context.Background(), map[string]any{"query": "traduce"}); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLyricsToolRawQueryFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/Queen/Bohemian Rhapsody" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"lyrics":"Is this the real life\nIs this just fantasy"}`))
	}))
	defer srv.Close()

	tool := NewLyricsTool(lyrics.NewClient(srv.URL, 0), 0)
	out, err := tool.Execute(context.Background(), map[string]any{
		"query": "letra de Queen - Bohemian Rhapsody",
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "BOHEMIAN RHAPSODY") || !strings.Contains(out, "Is this the real life") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestLyricsToolNotFoundReturnsFormattedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	tool := NewLyricsTool(lyrics.NewClient(srv.URL, 0), 0)
	out, err := tool.Execute(context.Background(), map[string]any{
		"artist": "Nobody", "title": "Nothing",
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	// The formatted message still goes back to the agent as the observation.
	if !strings.Contains(out, "No se encontró la letra") {
		t.Fatalf("unexpected observation: %q", out)
	}
}

func TestAsFloat64(t *testing.T) {
	tests := []struct {
		in     any
		want   float64
		wantOK bool
	}{
		{100.5, 100.5, true},
		{int(7), 7, true},
		{int64(8), 8, true},
		{"12.5", 12.5, true},
		{"abc", 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := asFloat64(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Fatalf("asFloat64(%v) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
