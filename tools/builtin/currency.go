// Package builtin wires the bot's adapters into the agent tool registry.
package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charlabot/charla/convert"
	"github.com/charlabot/charla/router"
)

type CurrencyTool struct {
	Converter *convert.Client
}

func NewCurrencyTool(converter *convert.Client) *CurrencyTool {
	return &CurrencyTool{Converter: converter}
}

func (t *CurrencyTool) Name() string { return "currency_convert" }

func (t *CurrencyTool) Description() string {
	return "Converts an amount between currencies using live exchange rates. " +
		"Pass amount/from/to, or a free-form query like '100 USD a EUR' or " +
		"'cuánto son 50 dólares en pesos'."
}

func (t *CurrencyTool) ParameterSchema() string {
	s := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"amount": map[string]any{
				"type":        "number",
				"description": "Amount to convert.",
			},
			"from": map[string]any{
				"type":        "string",
				"description": "Source currency ISO code (e.g. USD).",
			},
			"to": map[string]any{
				"type":        "string",
				"description": "Target currency ISO code (e.g. EUR).",
			},
			"query": map[string]any{
				"type":        "string",
				"description": "Free-form conversion request, used when the structured fields are not set.",
			},
		},
	}
	b, _ := json.MarshalIndent(s, "", "  ")
	return string(b)
}

func (t *CurrencyTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	amount, haveAmount := asFloat64(params["amount"])
	from, _ := asString(params["from"])
	to, _ := asString(params["to"])

	if !haveAmount || strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
		raw, _ := asString(params["query"])
		q, err := router.ParseCurrencyQuery(raw)
		if err != nil {
			return "", fmt.Errorf("could not parse conversion request: %w", err)
		}
		amount, from, to = q.Amount, q.From, q.To
	}

	res, err := t.Converter.Convert(ctx, amount, from, to)
	if err != nil {
		return convert.FormatError(err), err
	}
	return convert.FormatResult(res), nil
}
