package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charlabot/charla/router"
	"github.com/charlabot/charla/translate"
)

type TranslatorTool struct {
	Chain *translate.Chain
}

func NewTranslatorTool(chain *translate.Chain) *TranslatorTool {
	return &TranslatorTool{Chain: chain}
}

func (t *TranslatorTool) Name() string { return "translate_text" }

func (t *TranslatorTool) Description() string {
	return "Translates text between languages (es, en, fr, de, it, pt, ...). " +
		"Source defaults to auto-detection. Pass text/target, or a free-form " +
		"query like \"traduce 'hello' al español\"."
}

func (t *TranslatorTool) ParameterSchema() string {
	s := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{
				"type":        "string",
				"description": "Text to translate.",
			},
			"source": map[string]any{
				"type":        "string",
				"description": "Source language ISO code, or 'auto'.",
			},
			"target": map[string]any{
				"type":        "string",
				"description": "Target language ISO code (e.g. es, en).",
			},
			"query": map[string]any{
				"type":        "string",
				"description": "Free-form translation request, used when the structured fields are not set.",
			},
		},
	}
	b, _ := json.MarshalIndent(s, "", "  ")
	return string(b)
}

func (t *TranslatorTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	text, _ := asString(params["text"])
	source, _ := asString(params["source"])
	target, _ := asString(params["target"])

	if strings.TrimSpace(text) == "" {
		raw, _ := asString(params["query"])
		q, err := router.ParseTranslationQuery(raw)
		if err != nil {
			return "", fmt.Errorf("could not parse translation request: %w", err)
		}
		text, source, target = q.Text, q.Source, q.Target
	}

	res, err := t.Chain.Translate(ctx, translate.Query{Text: text, Source: source, Target: target})
	if err != nil {
		return translate.FormatError(err), err
	}
	return translate.FormatResult(res), nil
}
