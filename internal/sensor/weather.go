package sensor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/nerrad567/pisense/internal/infrastructure/config"
	"github.com/nerrad567/pisense/internal/telemetry"
)

// maxWeatherBody caps the response body read from the weather service.
const maxWeatherBody = 64 << 10 // 64KB

// Weather samples the outdoor temperature from an
// OpenWeatherMap-compatible current-weather endpoint.
//
// It is a remote source: its HTTP client carries its own timeout,
// higher than the local hardware tolerance, and every request is bound
// to the sampling context.
type Weather struct {
	client  *http.Client
	baseURL string
	apiKey  string
	units   string
	lat     float64
	lon     float64
}

// NewWeather creates the outdoor weather source from configuration.
func NewWeather(cfg config.WeatherSensorConfig, loc config.LocationConfig) *Weather {
	return &Weather{
		client:  &http.Client{Timeout: cfg.GetTimeout()},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		units:   cfg.Units,
		lat:     loc.Latitude,
		lon:     loc.Longitude,
	}
}

// Metric returns telemetry.MetricOutdoorTemp.
func (s *Weather) Metric() telemetry.Metric {
	return telemetry.MetricOutdoorTemp
}

// weatherResponse is the subset of the current-weather payload we use.
type weatherResponse struct {
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
}

// Sample performs one authenticated current-weather request.
func (s *Weather) Sample(ctx context.Context) (telemetry.Reading, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(s.lat, 'f', 4, 64))
	q.Set("lon", strconv.FormatFloat(s.lon, 'f', 4, 64))
	q.Set("units", s.units)
	q.Set("appid", s.apiKey)

	endpoint := fmt.Sprintf("%s/data/2.5/weather?%s", s.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return telemetry.Reading{}, fmt.Errorf("%w: building weather request: %w", ErrReadFailed, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return telemetry.Reading{}, fmt.Errorf("%w: weather request: %w", ErrReadFailed, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Read-only body

	if resp.StatusCode != http.StatusOK {
		return telemetry.Reading{}, fmt.Errorf("%w: weather service returned %s", ErrBadResponse, resp.Status)
	}

	var payload weatherResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxWeatherBody)).Decode(&payload); err != nil {
		return telemetry.Reading{}, fmt.Errorf("%w: decoding weather response: %w", ErrBadResponse, err)
	}

	return telemetry.NewReading(telemetry.MetricOutdoorTemp, payload.Main.Temp, time.Now()), nil
}
