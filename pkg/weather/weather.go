// Package weather reads the current conditions from open-meteo.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultEndpoint is the open-meteo forecast API.
const DefaultEndpoint = "https://api.open-meteo.com/v1/forecast"

// Timeout matches the location lookup timeout of the web client.
const Timeout = 10 * time.Second

// Condition is a coarse weather icon.
type Condition string

const (
	Sun   Condition = "sun"
	Cloud Condition = "cloud"
	Rain  Condition = "rain"
	Snow  Condition = "snow"
	Storm Condition = "storm"
)

// Reading is the current temperature in Fahrenheit plus a condition.
type Reading struct {
	Temp      int       `json:"temp"`
	Condition Condition `json:"icon"`
}

func (r Reading) String() string {
	return fmt.Sprintf("%d°F, %s", r.Temp, r.Condition)
}

// ConditionFor maps a WMO weather code onto a Condition.
func ConditionFor(code int) Condition {
	switch {
	case code >= 45 && code <= 48:
		return Cloud
	case code >= 71 && code <= 77:
		return Snow
	case code >= 51 && code <= 82:
		return Rain
	case code >= 95:
		return Storm
	default:
		return Sun
	}
}

// Client fetches readings for fixed coordinates.
type Client struct {
	Endpoint  string
	Latitude  float64
	Longitude float64
	HTTP      *http.Client
}

// Current fetches the current reading.
func (c *Client) Current(ctx context.Context) (*Reading, error) {
	endpoint := c.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("weather: endpoint: %w", err)
	}
	q := u.Query()
	q.Set("latitude", strconv.FormatFloat(c.Latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(c.Longitude, 'f', -1, 64))
	q.Set("current", "temperature_2m,weather_code")
	q.Set("temperature_unit", "fahrenheit")
	u.RawQuery = q.Encode()

	ctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather: unexpected status %s", resp.Status)
	}

	var body struct {
		Current *struct {
			Temperature float64 `json:"temperature_2m"`
			WeatherCode int     `json:"weather_code"`
		} `json:"current"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("weather: decode: %w", err)
	}
	if body.Current == nil {
		return nil, fmt.Errorf("weather: reply has no current block")
	}
	return &Reading{
		Temp:      int(math.Round(body.Current.Temperature)),
		Condition: ConditionFor(body.Current.WeatherCode),
	}, nil
}
