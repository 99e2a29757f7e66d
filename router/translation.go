package router

import (
	"errors"
	"regexp"
	"strings"

	"github.com/charlabot/charla/internal/langid"
)

var ErrNoTextToTranslate = errors.New("no text to translate found in query")

type TranslationQuery struct {
	Text   string
	Source string // "auto" unless the user named one
	Target string
}

var languageNameToCode = map[string]string{
	"español": "es", "espanol": "es", "spanish": "es", "castellano": "es",
	"inglés": "en", "ingles": "en", "english": "en",
	"francés": "fr", "frances": "fr", "french": "fr",
	"alemán": "de", "aleman": "de", "german": "de",
	"italiano": "it", "italian": "it",
	"portugués": "pt", "portugues": "pt", "portuguese": "pt",
}

var (
	quotedRe     = regexp.MustCompile(`['"“”‘’]([^'"“”‘’]+)['"“”‘’]`)
	targetLangRe = regexp.MustCompile(`(?i)\b(?:al|a|to|in|en)\s+([\p{L}]+)\s*[?!.]*\s*$`)
)

// Keyword tokens stripped from the text when nothing is quoted. Mirrors the
// original wrapper's cleanup list.
var translationStopTokens = []string{
	"traducir", "traducción", "traduccion", "traductor", "traduce",
	"translate", "translation", "cómo se dice", "como se dice", "how to say",
	"por favor", "please",
}

// ParseTranslationQuery pulls the text to translate (quoted substrings win)
// and the target language from a trailing "al/a/to/in/en <language>" phrase.
// Without an explicit target it defaults to the opposite of the detected
// source language, so "traduce hola" comes back in English.
func ParseTranslationQuery(text string) (TranslationQuery, error) {
	target := ""
	remainder := text

	if m := targetLangRe.FindStringSubmatch(text); m != nil {
		if code, ok := languageNameToCode[strings.ToLower(m[1])]; ok {
			target = code
			remainder = strings.TrimSpace(text[:len(text)-len(m[0])])
		}
	}

	var toTranslate string
	if m := quotedRe.FindStringSubmatch(text); m != nil {
		toTranslate = strings.TrimSpace(m[1])
	} else {
		lower := strings.ToLower(remainder)
		for _, tok := range translationStopTokens {
			for {
				i := strings.Index(lower, tok)
				if i < 0 {
					break
				}
				remainder = remainder[:i] + remainder[i+len(tok):]
				lower = lower[:i] + lower[i+len(tok):]
			}
		}
		toTranslate = strings.Trim(strings.TrimSpace(remainder), ",:;")
	}

	if toTranslate == "" {
		return TranslationQuery{}, ErrNoTextToTranslate
	}
	if target == "" {
		target = langid.Opposite(langid.Detect(toTranslate))
	}
	return TranslationQuery{Text: toTranslate, Source: "auto", Target: target}, nil
}
