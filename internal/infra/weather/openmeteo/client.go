package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yanqian/agrocalc/internal/domain/dose"
)

const (
	defaultBaseURL = "https://api.open-meteo.com/v1/forecast"
	currentFields  = "temperature_2m,relative_humidity_2m,wind_speed_10m"
)

// Client fetches current conditions from the Open-Meteo forecast API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a forecast API client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	endpoint := strings.TrimSpace(baseURL)
	if endpoint == "" {
		endpoint = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Current returns temperature (°C), relative humidity (%) and wind speed (km/h).
func (c *Client) Current(ctx context.Context, loc dose.Location) (dose.Readings, error) {
	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(loc.Latitude, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(loc.Longitude, 'f', -1, 64))
	query.Set("current", currentFields)
	query.Set("wind_speed_unit", "kmh")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return dose.Readings{}, fmt.Errorf("build weather request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return dose.Readings{}, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return dose.Readings{}, fmt.Errorf("weather request error: status=%d body=%s", resp.StatusCode, string(payload))
	}

	var raw apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return dose.Readings{}, fmt.Errorf("decode weather response: %w", err)
	}
	if raw.Error {
		return dose.Readings{}, fmt.Errorf("weather api error: %s", raw.Reason)
	}
	if raw.Current == nil {
		return dose.Readings{}, fmt.Errorf("weather response has no current conditions")
	}
	return raw.Current.readings(), nil
}

type apiResponse struct {
	Error   bool            `json:"error"`
	Reason  string          `json:"reason"`
	Current *currentWeather `json:"current"`
}

type currentWeather struct {
	Time        string  `json:"time"`
	Temperature float64 `json:"temperature_2m"`
	Humidity    float64 `json:"relative_humidity_2m"`
	WindSpeed   float64 `json:"wind_speed_10m"`
}

func (c currentWeather) readings() dose.Readings {
	return dose.Readings{
		Temperature: c.Temperature,
		Humidity:    c.Humidity,
		WindSpeed:   c.WindSpeed,
	}
}

var _ dose.WeatherClient = (*Client)(nil)
