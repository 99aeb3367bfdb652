// Package weather proxies the OpenWeatherMap current, forecast and air
// pollution endpoints behind a circuit breaker.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/climatrix/climatrix/internal/config"
	"github.com/climatrix/climatrix/internal/logging"
	"github.com/climatrix/climatrix/internal/metrics"
	gobreaker "github.com/sony/gobreaker/v2"
)

const maxResponseBytes = 2 << 20

var (
	ErrCityNotFound  = errors.New("City not found")
	ErrNotConfigured = errors.New("weather API key not configured")
)

// StatusError reports a non-success answer from the provider.
type StatusError struct {
	Endpoint string
	Status   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("weather %s: unexpected status %d", e.Endpoint, e.Status)
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
}

func NewClient(cfg config.WeatherConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.APIURL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
	}

	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "weather-api",
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// An unknown city is a valid answer, not a provider fault.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrCityNotFound) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			l := logging.WithComponent("weather")
			l.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state changed")
		},
	})

	return c
}

func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

// BreakerState reports closed, half-open or open.
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	params.Set("appid", c.apiKey)
	reqURL := c.baseURL + "/" + endpoint + "?" + params.Encode()

	body, err := c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("weather %s: %w", endpoint, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return nil, ErrCityNotFound
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &StatusError{Endpoint: endpoint, Status: resp.StatusCode}
		}

		return io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	})

	metrics.RecordWeatherRequest(endpoint, err)
	return body, err
}

func cityParams(city string) url.Values {
	return url.Values{"q": {city}, "units": {"metric"}}
}

func coordParams(lat, lon float64) url.Values {
	return url.Values{
		"lat": {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon": {strconv.FormatFloat(lon, 'f', -1, 64)},
	}
}

// CurrentByCity returns the provider's current weather document unchanged.
func (c *Client) CurrentByCity(ctx context.Context, city string) (json.RawMessage, error) {
	return c.get(ctx, "weather", cityParams(city))
}

func (c *Client) CurrentByCoords(ctx context.Context, lat, lon float64) (json.RawMessage, error) {
	params := coordParams(lat, lon)
	params.Set("units", "metric")
	return c.get(ctx, "weather", params)
}

func (c *Client) AirQuality(ctx context.Context, lat, lon float64) (json.RawMessage, error) {
	return c.get(ctx, "air_pollution", coordParams(lat, lon))
}

// Current decodes the current weather for a city.
func (c *Client) Current(ctx context.Context, city string) (*Current, error) {
	body, err := c.CurrentByCity(ctx, city)
	if err != nil {
		return nil, err
	}

	var current Current
	if err := json.Unmarshal(body, &current); err != nil {
		return nil, fmt.Errorf("decode current weather: %w", err)
	}
	return &current, nil
}

func (c *Client) Forecast(ctx context.Context, city string) (*Forecast, error) {
	body, err := c.get(ctx, "forecast", cityParams(city))
	if err != nil {
		return nil, err
	}

	var forecast Forecast
	if err := json.Unmarshal(body, &forecast); err != nil {
		return nil, fmt.Errorf("decode forecast: %w", err)
	}
	return &forecast, nil
}

func (c *Client) AirPollution(ctx context.Context, lat, lon float64) (*AirPollution, error) {
	body, err := c.AirQuality(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	var pollution AirPollution
	if err := json.Unmarshal(body, &pollution); err != nil {
		return nil, fmt.Errorf("decode air pollution: %w", err)
	}
	return &pollution, nil
}
