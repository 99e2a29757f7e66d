package router

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrNoAmount           = errors.New("no amount found in query")
	ErrCurrenciesNotFound = errors.New("could not determine source and target currencies")
)

type CurrencyQuery struct {
	Amount float64
	From   string
	To     string
}

var codeRe = regexp.MustCompile(`\b[A-Z]{3}\b`)

// knownCodes keeps the 3-letter scan from matching ordinary short words
// ("CON", "LOS") once the text is uppercased.
var knownCodes = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true, "CNY": true,
	"MXN": true, "CAD": true, "AUD": true, "BRL": true, "INR": true,
	"KRW": true, "CHF": true,
}

var currencyNameToCode = map[string]string{
	"DOLAR": "USD", "DOLARES": "USD", "DÓLAR": "USD", "DÓLARES": "USD",
	"DOLLAR": "USD", "DOLLARS": "USD",
	"EURO": "EUR", "EUROS": "EUR",
	"LIBRA": "GBP", "LIBRAS": "GBP", "POUND": "GBP", "POUNDS": "GBP",
	"YEN": "JPY", "YENES": "JPY",
	"PESO": "MXN", "PESOS": "MXN",
	"YUAN": "CNY", "RENMINBI": "CNY",
	"FRANCO": "CHF", "FRANCOS": "CHF",
}

var connectives = map[string]bool{"A": true, "TO": true, "EN": true}

// ParseCurrencyQuery extracts {amount, from, to} from free text. Two explicit
// ISO codes win; otherwise currency names are mapped through the name table,
// positioned relative to the amount and the connective words a/to/en.
// Anything short of two resolved codes is an extraction failure the caller
// must surface to the user, not a crash.
func ParseCurrencyQuery(text string) (CurrencyQuery, error) {
	m := amountRe.FindString(text)
	if m == "" {
		return CurrencyQuery{}, ErrNoAmount
	}
	amount, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", "."), 64)
	if err != nil {
		return CurrencyQuery{}, ErrNoAmount
	}

	upper := strings.ToUpper(text)

	var from, to string
	codes := codeRe.FindAllString(upper, -1)
	filtered := codes[:0]
	for _, c := range codes {
		if knownCodes[c] {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) >= 2 {
		return CurrencyQuery{Amount: amount, From: filtered[0], To: filtered[1]}, nil
	}
	if len(filtered) == 1 {
		from = filtered[0]
	}

	// Name-based resolution: the mapped word after the amount is the source,
	// the mapped word after a connective is the target.
	words := tokenizeUpper(upper)
	amountIdx := -1
	for i, w := range words {
		if strings.ContainsAny(w, "0123456789") {
			amountIdx = i
			break
		}
	}
	if amountIdx >= 0 {
		if from == "" && amountIdx+1 < len(words) {
			if code, ok := mapCurrencyName(words[amountIdx+1]); ok {
				from = code
			}
		}
		for j := amountIdx + 1; j < len(words)-1 && j < amountIdx+6; j++ {
			if connectives[words[j]] {
				if code, ok := mapCurrencyName(words[j+1]); ok && code != from {
					to = code
					break
				}
			}
		}
	}

	// Last resort: take the first two distinct mapped names anywhere.
	if from == "" || to == "" {
		for _, w := range words {
			code, ok := mapCurrencyName(w)
			if !ok {
				continue
			}
			switch {
			case from == "":
				from = code
			case to == "" && code != from:
				to = code
			}
		}
	}

	if from == "" || to == "" {
		return CurrencyQuery{}, ErrCurrenciesNotFound
	}
	return CurrencyQuery{Amount: amount, From: from, To: to}, nil
}

func mapCurrencyName(word string) (string, bool) {
	if knownCodes[word] {
		return word, true
	}
	code, ok := currencyNameToCode[word]
	return code, ok
}

var wordRe = regexp.MustCompile(`[\p{L}0-9.,]+`)

func tokenizeUpper(upper string) []string {
	return wordRe.FindAllString(upper, -1)
}
