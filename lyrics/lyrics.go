// Package lyrics wraps the lyrics.ovh song-lyrics lookup.
package lyrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrNotFound   = errors.New("lyrics not found")
	ErrEmptyQuery = errors.New("artist and title are required")
	ErrUpstream   = errors.New("lyrics service unavailable")
)

const defaultBaseURL = "https://api.lyrics.ovh"

// DefaultMaxLines caps how many lines a formatted reply shows; the Result
// always keeps the full text.
const DefaultMaxLines = 30

type Query struct {
	Artist string
	Title  string
}

type Result struct {
	Artist string
	Title  string
	Lyrics string
	Lines  int
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Search(ctx context.Context, q Query) (Result, error) {
	artist := strings.TrimSpace(q.Artist)
	title := strings.TrimSpace(q.Title)
	if artist == "" || title == "" {
		return Result{}, ErrEmptyQuery
	}

	u := fmt.Sprintf("%s/v1/%s/%s", c.BaseURL, url.PathEscape(artist), url.PathEscape(title))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Result{}, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Result{}, fmt.Errorf("%w: %s - %s", ErrNotFound, artist, title)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, fmt.Errorf("%w: http %d", ErrUpstream, resp.StatusCode)
	}

	var out struct {
		Lyrics string `json:"lyrics"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return Result{}, fmt.Errorf("%w: bad response: %v", ErrUpstream, err)
	}
	text := strings.TrimSpace(out.Lyrics)
	if text == "" {
		return Result{}, fmt.Errorf("%w: %s - %s", ErrNotFound, artist, title)
	}

	return Result{
		Artist: artist,
		Title:  title,
		Lyrics: text,
		Lines:  len(strings.Split(text, "\n")),
	}, nil
}

// FormatResult renders the lyrics for display, truncating past maxLines with
// a "(N líneas más)" marker. maxLines <= 0 uses DefaultMaxLines.
func FormatResult(r Result, maxLines int) string {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}
	lines := strings.Split(r.Lyrics, "\n")
	preview := r.Lyrics
	if len(lines) > maxLines {
		preview = strings.Join(lines[:maxLines], "\n")
		preview += fmt.Sprintf("\n\n... (%d líneas más)", len(lines)-maxLines)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🎵 *%s*\n", strings.ToUpper(r.Title))
	fmt.Fprintf(&b, "🎤 *Artista:* %s\n\n", r.Artist)
	b.WriteString("📝 *Letra:*\n\n")
	b.WriteString(preview)
	fmt.Fprintf(&b, "\n\n---\n📊 *Info:* %d líneas | %d caracteres", r.Lines, len(r.Lyrics))
	return b.String()
}

// FormatError maps adapter errors to the user-facing strings the bot sends.
func FormatError(err error, q Query) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return fmt.Sprintf("❌ No se encontró la letra de \"%s\" de %s. Verifica el nombre.", q.Title, q.Artist)
	case errors.Is(err, ErrEmptyQuery):
		return "❌ Debe proporcionar artista y canción"
	default:
		return "❌ Error de conexión con el servicio de letras"
	}
}

// ParseQuery understands "Artist - Song", "Song by Artist" and a bare
// "Artist Song" word split, after stripping lead-in phrases.
func ParseQuery(text string) (Query, error) {
	q := text
	for _, prefix := range []string{"letra de", "letras de", "lyrics of", "lyrics", "busca letra de", "find"} {
		lower := strings.ToLower(q)
		if i := strings.Index(lower, prefix); i >= 0 {
			q = q[:i] + q[i+len(prefix):]
		}
	}
	q = strings.TrimSpace(q)

	if i := strings.Index(q, " - "); i >= 0 {
		return Query{Artist: strings.TrimSpace(q[:i]), Title: strings.TrimSpace(q[i+3:])}, nil
	}
	if i := strings.Index(strings.ToLower(q), " by "); i >= 0 {
		return Query{Artist: strings.TrimSpace(q[i+4:]), Title: strings.TrimSpace(q[:i])}, nil
	}

	words := strings.Fields(q)
	if len(words) < 2 {
		return Query{}, ErrEmptyQuery
	}
	mid := len(words) / 2
	return Query{
		Artist: strings.Join(words[:mid], " "),
		Title:  strings.Join(words[mid:], " "),
	}, nil
}
