package translate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	libreTranslateBaseURL = "https://libretranslate.com"
	myMemoryBaseURL       = "https://api.mymemory.translated.net"
	lingvaBaseURL         = "https://lingva.ml"

	defaultBackendTimeout = 15 * time.Second
)

// LibreTranslate is the primary backend (form-encoded POST /translate).
type LibreTranslate struct {
	BaseURL string
	HTTP    *http.Client
}

func NewLibreTranslate(baseURL string, timeout time.Duration) *LibreTranslate {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = libreTranslateBaseURL
	}
	if timeout <= 0 {
		timeout = defaultBackendTimeout
	}
	return &LibreTranslate{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

func (b *LibreTranslate) Name() string { return "LibreTranslate" }

func (b *LibreTranslate) Translate(ctx context.Context, text, source, target string) (string, error) {
	form := url.Values{}
	form.Set("q", text)
	form.Set("source", source)
	form.Set("target", target)
	form.Set("format", "text")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.BaseURL+"/translate", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	raw, err := doRead(b.HTTP, req)
	if err != nil {
		return "", err
	}
	out := gjson.GetBytes(raw, "translatedText")
	if !out.Exists() {
		return "", fmt.Errorf("libretranslate: missing translatedText")
	}
	return out.String(), nil
}

// MyMemory is the secondary backend (GET /get?q=...&langpair=a|b). It cannot
// auto-detect, which is fine because the chain resolves "auto" first.
type MyMemory struct {
	BaseURL string
	HTTP    *http.Client
}

func NewMyMemory(baseURL string, timeout time.Duration) *MyMemory {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = myMemoryBaseURL
	}
	if timeout <= 0 {
		timeout = defaultBackendTimeout
	}
	return &MyMemory{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

func (b *MyMemory) Name() string { return "MyMemory" }

func (b *MyMemory) Translate(ctx context.Context, text, source, target string) (string, error) {
	q := url.Values{}
	q.Set("q", text)
	q.Set("langpair", source+"|"+target)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.BaseURL+"/get?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	raw, err := doRead(b.HTTP, req)
	if err != nil {
		return "", err
	}
	if status := gjson.GetBytes(raw, "responseStatus"); status.Exists() && status.Int() != 200 {
		return "", fmt.Errorf("mymemory: status %d", status.Int())
	}
	out := gjson.GetBytes(raw, "responseData.translatedText")
	if !out.Exists() {
		return "", fmt.Errorf("mymemory: missing translatedText")
	}
	return out.String(), nil
}

// Lingva is the tertiary backend (GET /api/v1/{source}/{target}/{text}).
type Lingva struct {
	BaseURL string
	HTTP    *http.Client
}

func NewLingva(baseURL string, timeout time.Duration) *Lingva {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = lingvaBaseURL
	}
	if timeout <= 0 {
		timeout = defaultBackendTimeout
	}
	return &Lingva{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

func (b *Lingva) Name() string { return "Lingva" }

func (b *Lingva) Translate(ctx context.Context, text, source, target string) (string, error) {
	u := fmt.Sprintf("%s/api/v1/%s/%s/%s", b.BaseURL, url.PathEscape(source), url.PathEscape(target), url.PathEscape(text))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	raw, err := doRead(b.HTTP, req)
	if err != nil {
		return "", err
	}
	out := gjson.GetBytes(raw, "translation")
	if !out.Exists() {
		return "", fmt.Errorf("lingva: missing translation")
	}
	return out.String(), nil
}

func doRead(client *http.Client, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return raw, nil
}
