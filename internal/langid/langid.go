// Package langid guesses whether a text is Spanish or English. It is a
// best-effort heuristic over diacritics and a small stop-word list, good
// enough to pick a default translation target, nothing more.
package langid

import (
	"strings"
	"unicode"
)

const (
	Spanish = "es"
	English = "en"
)

var spanishStopWords = map[string]bool{
	"el": true, "la": true, "los": true, "las": true, "un": true, "una": true,
	"de": true, "del": true, "que": true, "como": true, "para": true,
	"por": true, "con": true, "pero": true, "esta": true, "este": true,
	"hola": true, "gracias": true, "bueno": true, "donde": true, "cuando": true,
	"es": true, "son": true, "estoy": true, "tengo": true, "quiero": true,
	"muy": true, "mas": true, "si": true, "no": true, "y": true,
}

var englishStopWords = map[string]bool{
	"the": true, "a": true, "an": true, "of": true, "that": true, "this": true,
	"for": true, "with": true, "but": true, "is": true, "are": true,
	"hello": true, "thanks": true, "good": true, "where": true, "when": true,
	"i": true, "you": true, "have": true, "want": true, "very": true,
	"and": true, "not": true, "it": true, "my": true, "to": true,
}

// Detect returns "es" or "en". Spanish diacritics are a strong signal; the
// stop-word tally breaks ties, and English wins an exact tie (the original
// bot's default direction is en->es).
func Detect(text string) string {
	for _, r := range text {
		switch unicode.ToLower(r) {
		case 'á', 'é', 'í', 'ó', 'ú', 'ñ', '¿', '¡', 'ü':
			return Spanish
		}
	}

	esScore, enScore := 0, 0
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,;:!?\"'()")
		if spanishStopWords[w] {
			esScore++
		}
		if englishStopWords[w] {
			enScore++
		}
	}
	if esScore > enScore {
		return Spanish
	}
	return English
}

// Opposite returns the other language of the es/en pair, defaulting to
// Spanish for anything unknown.
func Opposite(lang string) string {
	if strings.EqualFold(strings.TrimSpace(lang), Spanish) {
		return English
	}
	return Spanish
}
