package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charlabot/charla/lyrics"
)

type LyricsTool struct {
	Finder   *lyrics.Client
	MaxLines int
}

func NewLyricsTool(finder *lyrics.Client, maxLines int) *LyricsTool {
	if maxLines <= 0 {
		maxLines = lyrics.DefaultMaxLines
	}
	return &LyricsTool{Finder: finder, MaxLines: maxLines}
}

func (t *LyricsTool) Name() string { return "find_lyrics" }

func (t *LyricsTool) Description() string {
	return "Looks up song lyrics. Pass artist/title, or a free-form query " +
		"like 'Queen - Bohemian Rhapsody' or 'Shape of You by Ed Sheeran'."
}

func (t *LyricsTool) ParameterSchema() string {
	s := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"artist": map[string]any{
				"type":        "string",
				"description": "Artist or band name.",
			},
			"title": map[string]any{
				"type":        "string",
				"description": "Song title.",
			},
			"query": map[string]any{
				"type":        "string",
				"description": "Free-form lyrics request, used when artist/title are not set.",
			},
		},
	}
	b, _ := json.MarshalIndent(s, "", "  ")
	return string(b)
}

func (t *LyricsTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	artist, _ := asString(params["artist"])
	title, _ := asString(params["title"])

	q := lyrics.Query{Artist: artist, Title: title}
	if strings.TrimSpace(artist) == "" || strings.TrimSpace(title) == "" {
		raw, _ := asString(params["query"])
		parsed, err := lyrics.ParseQuery(raw)
		if err != nil {
			return "", fmt.Errorf("could not parse lyrics request: %w", err)
		}
		q = parsed
	}

	res, err := t.Finder.Search(ctx, q)
	if err != nil {
		return lyrics.FormatError(err, q), err
	}
	return lyrics.FormatResult(res, t.MaxLines), nil
}
