// Package router decides how an incoming message is handled: a direct tool
// call, the tool-picking agent, or plain contextual chat. Detection is a
// fixed keyword/regex vocabulary, not a trained classifier; phrasing outside
// the vocabulary is expected to misroute and falls through to plain chat.
package router

import (
	"regexp"
	"strings"
)

type Kind int

const (
	KindPlainChat Kind = iota
	KindDirectTool
	KindAgent
)

func (k Kind) String() string {
	switch k {
	case KindDirectTool:
		return "direct_tool"
	case KindAgent:
		return "agent"
	default:
		return "plain_chat"
	}
}

const (
	ToolCurrency    = "currency"
	ToolTranslation = "translation"
)

type Decision struct {
	Kind Kind
	Tool string // set only for KindDirectTool
	Text string
}

var amountRe = regexp.MustCompile(`[0-9]+(?:[.,][0-9]+)?`)

// Currency names and ISO codes that make the direct currency path fire when
// they appear next to a number. Substring matching on the lowercased text,
// same as the original keyword scan.
var currencyKeywords = []string{
	"usd", "eur", "gbp", "jpy", "mxn", "cad", "aud", "brl", "inr", "krw",
	"chf", "cny",
	"dolar", "dólar", "dolares", "dólares", "dollar", "dollars",
	"euro", "euros",
	"libra", "libras", "pound", "pounds",
	"yen", "yenes",
	"peso", "pesos",
	"yuan", "renminbi",
}

// Phrases that mark an explicit translation request.
var translationMarkers = []string{
	"traducir", "traducción", "traduccion", "traductor", "traduce",
	"translate", "translation",
	"cómo se dice", "como se dice", "how to say",
	"al español", "al espanol", "al inglés", "al ingles", "al francés",
	"al frances", "al alemán", "al aleman", "al italiano", "al portugués",
	"al portugues",
	"en ingles", "en inglés", "en español", "en espanol", "en frances",
	"en francés",
	"to english", "to spanish", "to french", "to german", "to italian",
	"to portuguese",
}

// Looser union of tool signals. Anything here that survived steps 1 and 2
// goes to the agent, which picks the tool itself.
var agentKeywords = []string{
	// currency
	"convertir", "conversion", "conversión", "conversor", "moneda",
	"dolar", "dólar", "euro", "peso", "usd", "eur", "gbp", "mxn",
	"currency", "convert", "cuanto es", "cuánto es",
	// translation
	"traducir", "traducción", "traduccion", "traductor", "translate",
	"translation", "en ingles", "en español", "al ingles", "al español",
	"en frances", "cómo se dice", "como se dice", "traduce",
	// lyrics
	"letra", "letras", "cancion", "canción", "song", "lyrics", "lyric",
	"musica", "música", "artista", "banda", "busca letra", "quiero letra",
}

// Classify applies the priority-ordered checks: confident currency request,
// confident translation request, looser agent-worthy phrasing, plain chat.
// First match wins.
func Classify(text string) Decision {
	lower := strings.ToLower(text)

	if amountRe.MatchString(text) && containsAny(lower, currencyKeywords) {
		return Decision{Kind: KindDirectTool, Tool: ToolCurrency, Text: text}
	}
	if containsAny(lower, translationMarkers) {
		return Decision{Kind: KindDirectTool, Tool: ToolTranslation, Text: text}
	}
	if containsAny(lower, agentKeywords) {
		return Decision{Kind: KindAgent, Text: text}
	}
	return Decision{Kind: KindPlainChat, Text: text}
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
