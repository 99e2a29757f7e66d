// Package weather wraps the OpenWeatherMap current-weather lookup used by
// the /clima command.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrCityNotFound = errors.New("city not found")
	ErrBadAPIKey    = errors.New("invalid weather api key")
	ErrUpstream     = errors.New("weather service unavailable")
)

const defaultBaseURL = "https://api.openweathermap.org"

type Report struct {
	City       string
	Country    string
	TempC      float64
	FeelsLikeC float64
	TempMinC   float64
	TempMaxC   float64
	Condition  string
	Humidity   int
	WindKPH    float64
	WindDir    string
	PressureMB int
	VisibKM    float64
	Clouds     int
}

type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

type apiResponse struct {
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		Humidity  int     `json:"humidity"`
		Pressure  int     `json:"pressure"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"` // m/s
		Deg   int     `json:"deg"`
	} `json:"wind"`
	Clouds struct {
		All int `json:"all"`
	} `json:"clouds"`
	Visibility int `json:"visibility"` // meters
}

func (c *Client) Current(ctx context.Context, city string) (Report, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return Report{}, fmt.Errorf("%w: empty city", ErrCityNotFound)
	}

	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", c.APIKey)
	q.Set("units", "metric")
	q.Set("lang", "es")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/data/2.5/weather?"+q.Encode(), nil)
	if err != nil {
		return Report{}, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Report{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Report{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Report{}, fmt.Errorf("%w: %s", ErrCityNotFound, city)
	case resp.StatusCode == http.StatusUnauthorized:
		return Report{}, ErrBadAPIKey
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return Report{}, fmt.Errorf("%w: http %d", ErrUpstream, resp.StatusCode)
	}

	var out apiResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return Report{}, fmt.Errorf("%w: bad response: %v", ErrUpstream, err)
	}
	condition := ""
	if len(out.Weather) > 0 {
		condition = out.Weather[0].Description
	}

	return Report{
		City:       out.Name,
		Country:    out.Sys.Country,
		TempC:      round1(out.Main.Temp),
		FeelsLikeC: round1(out.Main.FeelsLike),
		TempMinC:   round1(out.Main.TempMin),
		TempMaxC:   round1(out.Main.TempMax),
		Condition:  condition,
		Humidity:   out.Main.Humidity,
		WindKPH:    round1(out.Wind.Speed * 3.6),
		WindDir:    windDirection(out.Wind.Deg),
		PressureMB: out.Main.Pressure,
		VisibKM:    round1(float64(out.Visibility) / 1000),
		Clouds:     out.Clouds.All,
	}, nil
}

var compass = []string{"N", "NE", "E", "SE", "S", "SO", "O", "NO"}

func windDirection(degrees int) string {
	idx := int(math.Round(float64(degrees)/45)) % 8
	return compass[idx]
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// FormatReport renders the weather in the bot's Spanish reply format, with
// an emoji picked from the condition text.
func FormatReport(r Report) string {
	emoji := conditionEmoji(r.Condition)
	var b strings.Builder
	fmt.Fprintf(&b, "%s *CLIMA EN %s, %s*\n\n", emoji, strings.ToUpper(r.City), r.Country)
	fmt.Fprintf(&b, "🌡️ *Temperatura:* %.1f°C\n", r.TempC)
	fmt.Fprintf(&b, "🤔 *Sensación térmica:* %.1f°C\n", r.FeelsLikeC)
	fmt.Fprintf(&b, "☁️ *Condición:* %s\n", r.Condition)
	fmt.Fprintf(&b, "📊 *Min/Max:* %.1f°C / %.1f°C\n\n", r.TempMinC, r.TempMaxC)
	fmt.Fprintf(&b, "💧 *Humedad:* %d%%\n", r.Humidity)
	fmt.Fprintf(&b, "💨 *Viento:* %.1f km/h (%s)\n", r.WindKPH, r.WindDir)
	fmt.Fprintf(&b, "👁️ *Visibilidad:* %.1f km\n", r.VisibKM)
	fmt.Fprintf(&b, "📊 *Presión:* %d mb\n", r.PressureMB)
	fmt.Fprintf(&b, "☁️ *Nubosidad:* %d%%\n\n", r.Clouds)
	b.WriteString("_Powered by OpenWeatherMap_")
	return b.String()
}

// FormatError maps adapter errors to user-facing strings.
func FormatError(err error) string {
	switch {
	case errors.Is(err, ErrCityNotFound):
		return "No pude encontrar esa ciudad. Verifica el nombre e intenta de nuevo."
	case errors.Is(err, ErrBadAPIKey):
		return "Error de autenticación con el servicio de clima. Por favor intenta más tarde."
	default:
		return "Error al consultar el clima. Por favor intenta más tarde."
	}
}

func conditionEmoji(condition string) string {
	lower := strings.ToLower(condition)
	switch {
	case strings.Contains(lower, "despejado") || strings.Contains(lower, "claro"):
		return "☀️"
	case strings.Contains(lower, "nube"):
		return "☁️"
	case strings.Contains(lower, "lluvia") || strings.Contains(lower, "llovizna"):
		return "🌧️"
	case strings.Contains(lower, "tormenta"):
		return "⛈️"
	case strings.Contains(lower, "nieve"):
		return "❄️"
	case strings.Contains(lower, "niebla") || strings.Contains(lower, "neblina"):
		return "🌫️"
	default:
		return "🌤️"
	}
}
