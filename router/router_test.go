package router

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		kind Kind
		tool string
	}{
		{"currency with codes", "convierte 100 USD EUR", KindDirectTool, ToolCurrency},
		{"currency with names", "cuánto es 50 dólares en euros", KindDirectTool, ToolCurrency},
		{"translation quoted", "traduce 'hello world' al español", KindDirectTool, ToolTranslation},
		{"translation how-to-say", "cómo se dice gato en inglés", KindDirectTool, ToolTranslation},
		{"lyrics goes to agent", "letra de Bohemian Rhapsody", KindAgent, ""},
		{"currency word without amount goes to agent", "quiero convertir dolares", KindAgent, ""},
		{"greeting is plain chat", "hola, cómo estás", KindPlainChat, ""},
		{"question is plain chat", "qué me recomiendas para cenar", KindPlainChat, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Classify(tt.text)
			if d.Kind != tt.kind {
				t.Fatalf("Classify(%q).Kind = %s, want %s", tt.text, d.Kind, tt.kind)
			}
			if d.Tool != tt.tool {
				t.Fatalf("Classify(%q).Tool = %q, want %q", tt.text, d.Tool, tt.tool)
			}
			if d.Text != tt.text {
				t.Fatalf("Decision.Text should carry the original text")
			}
		})
	}
}

func TestClassifyCurrencyBeatsTranslation(t *testing.T) {
	// A message with both signals takes the more specific currency path.
	d := Classify("traduce cuánto son 100 usd")
	if d.Kind != KindDirectTool || d.Tool != ToolCurrency {
		t.Fatalf("got kind=%s tool=%q, want direct currency", d.Kind, d.Tool)
	}
}
