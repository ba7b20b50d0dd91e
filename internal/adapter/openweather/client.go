// Package openweather implements domain.WeatherProvider against the
// OpenWeatherMap current-conditions API.
package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/couchcryptid/nice-weather-discovery/internal/domain"
)

// Client fetches current conditions with a bounded per-request timeout and a
// circuit breaker. Repeated provider failures open the breaker so a flapping
// upstream degrades to fast fallbacks instead of per-candidate timeouts.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

// NewClient creates an OpenWeatherMap client. An empty apiKey is allowed;
// every call then returns domain.ErrNoCredentials.
func NewClient(apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.openweathermap.org/data/2.5/weather",
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "openweather",
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit breaker state change",
					"breaker", name, "from", from.String(), "to", to.String())
			},
		}),
		logger: logger,
	}
}

// CurrentConditions returns the raw provider report for a coordinate in
// imperial units.
func (c *Client) CurrentConditions(ctx context.Context, at domain.Coordinate) (domain.ProviderReport, error) {
	if c.apiKey == "" {
		return domain.ProviderReport{}, domain.ErrNoCredentials
	}

	params := url.Values{
		"lat":   {fmt.Sprintf("%.4f", at.Latitude)},
		"lon":   {fmt.Sprintf("%.4f", at.Longitude)},
		"appid": {c.apiKey},
		"units": {"imperial"},
	}
	fullURL := c.baseURL + "?" + params.Encode()

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.doRequest(ctx, fullURL)
	})
	if err != nil {
		return domain.ProviderReport{}, err
	}
	return result.(domain.ProviderReport), nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (domain.ProviderReport, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.ProviderReport{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.ProviderReport{}, fmt.Errorf("current conditions request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Warn("openweather API error", "status", resp.StatusCode)
		return domain.ProviderReport{}, fmt.Errorf("openweather API error: status %d: %s", resp.StatusCode, body)
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.ProviderReport{}, fmt.Errorf("decode response: %w", err)
	}

	report := domain.ProviderReport{
		TemperatureF: payload.Main.Temp,
		WindSpeedMPH: payload.Wind.Speed,
	}
	if len(payload.Weather) > 0 {
		report.ConditionCode = payload.Weather[0].Main
	}
	// The current-conditions endpoint only reports a precipitation
	// probability on some plans; pass it through when present.
	if payload.Pop != nil {
		pct := int(*payload.Pop * 100)
		report.PrecipChancePct = &pct
	}
	return report, nil
}

// OpenWeatherMap API response types.

type response struct {
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
	Pop *float64 `json:"pop"`
}
