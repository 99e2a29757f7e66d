// Package convert wraps the exchangerate-api.com rate lookup and turns a
// parsed currency query into a formatted conversion.
package convert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"strings"
	"time"
)

var (
	ErrUnknownCurrency = errors.New("unknown currency code")
	ErrUpstream        = errors.New("currency service unavailable")
)

const defaultBaseURL = "https://api.exchangerate-api.com/v4/latest"

var currencySymbols = map[string]string{
	"USD": "$", "EUR": "€", "GBP": "£", "JPY": "¥",
	"CNY": "¥", "MXN": "$", "CAD": "C$", "AUD": "A$",
	"BRL": "R$", "INR": "₹", "KRW": "₩", "CHF": "Fr",
}

type Result struct {
	Amount          float64
	From            string
	To              string
	Rate            float64
	ConvertedAmount float64
	Date            string
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
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

type ratesResponse struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

// Convert fetches the "from" rate table and looks up the "to" code. Rate is
// reported at 4 decimals, the converted amount at 2.
func (c *Client) Convert(ctx context.Context, amount float64, from, to string) (Result, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/"+from, nil)
	if err != nil {
		return Result{}, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownCurrency, from)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, fmt.Errorf("%w: http %d", ErrUpstream, resp.StatusCode)
	}

	var out ratesResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return Result{}, fmt.Errorf("%w: bad response: %v", ErrUpstream, err)
	}
	rate, ok := out.Rates[to]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownCurrency, to)
	}

	return Result{
		Amount:          amount,
		From:            from,
		To:              to,
		Rate:            round(rate, 4),
		ConvertedAmount: round(amount*rate, 2),
		Date:            out.Date,
	}, nil
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}

// FormatResult renders the conversion the way the bot replies in Telegram.
func FormatResult(r Result) string {
	fromSym := currencySymbols[r.From]
	toSym := currencySymbols[r.To]
	var b strings.Builder
	b.WriteString("💱 *CONVERSIÓN DE MONEDAS*\n\n")
	fmt.Fprintf(&b, "*Cantidad original:*\n%s%.2f %s\n\n", fromSym, r.Amount, r.From)
	fmt.Fprintf(&b, "*Resultado:*\n%s%.2f %s\n\n", toSym, r.ConvertedAmount, r.To)
	fmt.Fprintf(&b, "📊 *Tasa de cambio:* 1 %s = %.4f %s\n", r.From, r.Rate, r.To)
	fmt.Fprintf(&b, "📅 *Fecha:* %s\n\n", r.Date)
	b.WriteString("_Tasas actualizadas en tiempo real_")
	return b.String()
}

// FormatError maps adapter errors to the user-facing strings the bot sends.
func FormatError(err error) string {
	switch {
	case errors.Is(err, ErrUnknownCurrency):
		return "❌ Moneda no encontrada. Usa códigos como USD, EUR, GBP, etc."
	case isTimeout(err):
		return "❌ Tiempo de espera agotado. Intenta de nuevo."
	default:
		return "❌ Error de conexión con el servicio de monedas"
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "timeout")
}
