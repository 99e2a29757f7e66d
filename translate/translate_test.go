package translate

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubBackend struct {
	name string
	out  string
	err  error

	gotSource string
	gotTarget string
	calls     int
}

func (s *stubBackend) Name() string { return s.name }

func (s *stubBackend) Translate(ctx context.Context, text, source, target string) (string, error) {
	s.calls++
	s.gotSource = source
	s.gotTarget = target
	if s.err != nil {
		return "", s.err
	}
	return s.out, nil
}

func TestChainUsesFirstWorkingBackend(t *testing.T) {
	first := &stubBackend{name: "primero", out: "hello"}
	second := &stubBackend{name: "segundo", out: "should not be used"}
	chain := NewChainWith([]Backend{first, second})

	res, err := chain.Translate(context.Background(), Query{Text: "hola", Source: "es", Target: "en"})
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if res.Translated != "hello" || res.Backend != "primero" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if second.calls != 0 {
		t.Fatalf("second backend should not be called")
	}
}

func TestChainSkipsErrorsAndEchoes(t *testing.T) {
	failing := &stubBackend{name: "caido", err: errors.New("http 429")}
	echoing := &stubBackend{name: "eco", out: "Hola"}
	working := &stubBackend{name: "bueno", out: "hello"}
	chain := NewChainWith([]Backend{failing, echoing, working})

	res, err := chain.Translate(context.Background(), Query{Text: "hola", Source: "es", Target: "en"})
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if res.Backend != "bueno" {
		t.Fatalf("expected echo and error backends skipped, got %q", res.Backend)
	}
	if failing.calls != 1 || echoing.calls != 1 || working.calls != 1 {
		t.Fatalf("unexpected call counts: %d %d %d", failing.calls, echoing.calls, working.calls)
	}
}

func TestChainAllBackendsFail(t *testing.T) {
	chain := NewChainWith([]Backend{
		&stubBackend{name: "a", err: errors.New("down")},
		&stubBackend{name: "b", out: "hola"}, // echo
	})

	_, err := chain.Translate(context.Background(), Query{Text: "hola", Source: "es", Target: "en"})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestChainResolvesAutoSource(t *testing.T) {
	b := &stubBackend{name: "a", out: "hello"}
	chain := NewChainWith([]Backend{b})

	res, err := chain.Translate(context.Background(), Query{Text: "¿dónde está la biblioteca?", Source: "auto"})
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if b.gotSource != "es" {
		t.Fatalf("auto source should resolve to es, backend saw %q", b.gotSource)
	}
	if b.gotTarget != "en" {
		t.Fatalf("empty target should flip the source, backend saw %q", b.gotTarget)
	}
	if res.Source != "es" || res.Target != "en" {
		t.Fatalf("result should carry resolved codes: %+v", res)
	}
}

func TestChainRejectsEmptyAndLongText(t *testing.T) {
	chain := NewChainWith([]Backend{&stubBackend{name: "a", out: "x"}})

	if _, err := chain.Translate(context.Background(), Query{Text: "   "}); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
	long := strings.Repeat("a", MaxTextLen+1)
	if _, err := chain.Translate(context.Background(), Query{Text: long, Target: "en"}); !errors.Is(err, ErrTextTooLong) {
		t.Fatalf("expected ErrTextTooLong, got %v", err)
	}
}

func TestFormatResult(t *testing.T) {
	out := FormatResult(Result{
		Original: "hola", Translated: "hello",
		Source: "es", Target: "en", Backend: "MyMemory",
	})
	for _, want := range []string{"TRADUCCIÓN", "Español", "English", "hola", "hello", "MyMemory"} {
		if !strings.Contains(out, want) {
			t.Fatalf("FormatResult missing %q in:\n%s", want, out)
		}
	}
}
