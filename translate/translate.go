// Package translate resolves a translation request through an ordered chain
// of free backends. Any single backend may be rate-limited or degraded, and
// some of them fail by echoing the input back, so the chain tries each in
// order until one returns a non-degenerate result.
package translate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charlabot/charla/internal/langid"
)

var (
	ErrTextTooLong = errors.New("text too long to translate")
	ErrEmptyText   = errors.New("empty text")
	ErrUnavailable = errors.New("translation service unavailable")
)

// MaxTextLen bounds input size before any backend is called.
const MaxTextLen = 1000

var languageNames = map[string]string{
	"es": "Español", "en": "English", "fr": "Français", "de": "Deutsch",
	"it": "Italiano", "pt": "Português", "ru": "Русский", "zh": "中文",
	"ja": "日本語", "ko": "한국어", "ar": "العربية", "hi": "हिन्दी",
}

var languageFlags = map[string]string{
	"es": "🇪🇸", "en": "🇺🇸", "fr": "🇫🇷", "de": "🇩🇪",
	"it": "🇮🇹", "pt": "🇵🇹", "ru": "🇷🇺", "zh": "🇨🇳",
	"ja": "🇯🇵", "ko": "🇰🇷", "ar": "🇸🇦", "hi": "🇮🇳",
}

type Query struct {
	Text   string
	Source string // ISO code or "auto"
	Target string
}

type Result struct {
	Original   string
	Translated string
	Source     string
	Target     string
	Backend    string // which backend in the chain answered
}

// Backend is one interchangeable translation service.
type Backend interface {
	Name() string
	Translate(ctx context.Context, text, source, target string) (string, error)
}

type Option func(*Chain)

func WithLogger(l *slog.Logger) Option {
	return func(c *Chain) {
		if l != nil {
			c.log = l
		}
	}
}

type Chain struct {
	backends []Backend
	log      *slog.Logger
}

// NewChain builds the default LibreTranslate -> MyMemory -> Lingva chain.
func NewChain(timeout time.Duration, opts ...Option) *Chain {
	return NewChainWith([]Backend{
		NewLibreTranslate("", timeout),
		NewMyMemory("", timeout),
		NewLingva("", timeout),
	}, opts...)
}

func NewChainWith(backends []Backend, opts ...Option) *Chain {
	c := &Chain{backends: backends, log: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Translate runs the chain. A backend answer equal to the input (after
// trimming and case folding) is treated as degenerate and the next backend
// is tried. "auto" source is resolved with the script/stop-word heuristic
// before any call, since not every backend supports detection.
func (c *Chain) Translate(ctx context.Context, q Query) (Result, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return Result{}, ErrEmptyText
	}
	if len([]rune(text)) > MaxTextLen {
		return Result{}, fmt.Errorf("%w: %d chars (max %d)", ErrTextTooLong, len([]rune(text)), MaxTextLen)
	}

	source := strings.ToLower(strings.TrimSpace(q.Source))
	if source == "" || source == "auto" {
		source = langid.Detect(text)
	}
	target := strings.ToLower(strings.TrimSpace(q.Target))
	if target == "" {
		target = langid.Opposite(source)
	}

	var lastErr error
	for _, b := range c.backends {
		out, err := b.Translate(ctx, text, source, target)
		if err != nil {
			c.log.Warn("translate_backend_error", "backend", b.Name(), "error", err.Error())
			lastErr = err
			continue
		}
		out = strings.TrimSpace(out)
		if out == "" || strings.EqualFold(out, text) {
			c.log.Warn("translate_backend_echo", "backend", b.Name())
			lastErr = fmt.Errorf("backend %s echoed input", b.Name())
			continue
		}
		return Result{
			Original:   text,
			Translated: out,
			Source:     source,
			Target:     target,
			Backend:    b.Name(),
		}, nil
	}
	if lastErr != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
	}
	return Result{}, ErrUnavailable
}

// FormatResult renders the translation the way the bot replies in Telegram.
func FormatResult(r Result) string {
	original := r.Original
	if len([]rune(original)) > 200 {
		original = string([]rune(original)[:200]) + "..."
	}
	sourceName := languageNames[r.Source]
	if sourceName == "" {
		sourceName = r.Source
	}
	targetName := languageNames[r.Target]
	if targetName == "" {
		targetName = r.Target
	}
	sourceFlag := flagOrGlobe(r.Source)
	targetFlag := flagOrGlobe(r.Target)

	var b strings.Builder
	b.WriteString("🌍 *TRADUCCIÓN*\n\n")
	fmt.Fprintf(&b, "%s *%s:*\n_%s_\n\n", sourceFlag, sourceName, original)
	fmt.Fprintf(&b, "%s *%s:*\n*%s*\n\n", targetFlag, targetName, r.Translated)
	fmt.Fprintf(&b, "_Traducción automática - %s_", r.Backend)
	return b.String()
}

// FormatError maps adapter errors to the user-facing strings the bot sends.
func FormatError(err error) string {
	switch {
	case errors.Is(err, ErrTextTooLong):
		return fmt.Sprintf("❌ Texto demasiado largo. Máximo %d caracteres.", MaxTextLen)
	case errors.Is(err, ErrEmptyText):
		return "❌ El texto está vacío."
	default:
		return "❌ Error de conexión con el servicio de traducción"
	}
}

func flagOrGlobe(code string) string {
	if f, ok := languageFlags[code]; ok {
		return f
	}
	return "🌐"
}
