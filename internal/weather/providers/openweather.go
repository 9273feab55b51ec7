package providers

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/i474232898/weather-cli/internal/weather"
)

const (
	OpenWeatherBaseURL = "https://api.openweathermap.org"

	openWeatherSignUpURL = "https://home.openweathermap.org/users/sign_up"
	currentPath          = "/data/2.5/weather"
	forecastPath         = "/data/2.5/forecast"

	// Forecast entries are 3 hours apart: 8 covers a day, 32 covers four.
	hourlyCount = "8"
	dailyCount  = "32"

	// Any fixed point works for probing a key.
	probeLat = "37"
	probeLon = "95"
)

// OpenWeatherProvider talks to the OpenWeatherMap 2.5 API. It is both the
// forecast source and the prober for weather keys.
type OpenWeatherProvider struct {
	upstream
	logger *zap.Logger
}

func NewOpenWeatherProvider(cfg HTTPClientConfig, logger *zap.Logger) *OpenWeatherProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = OpenWeatherBaseURL
	}
	return &OpenWeatherProvider{
		upstream: newUpstream("openweather", cfg, logger),
		logger:   logger,
	}
}

func (p *OpenWeatherProvider) SignUpURL() string {
	return openWeatherSignUpURL
}

// Probe requests current weather at a fixed point with key.
func (p *OpenWeatherProvider) Probe(ctx context.Context, key string) error {
	resp, err := p.get(ctx, currentPath, map[string]string{
		"lat":   probeLat,
		"lon":   probeLon,
		"appid": key,
	})
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return statusError(resp)
	}
	return nil
}

// Request fetches the payload for the settings' timeframe. There is no retry;
// any failure is returned as weather.ErrFetch.
func (p *OpenWeatherProvider) Request(ctx context.Context, s weather.Settings) (weather.RawForecast, error) {
	path, params := requestParams(s)

	resp, err := p.get(ctx, path, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", weather.ErrFetch, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: %w", weather.ErrFetch, statusError(resp))
	}

	body := resp.Body()
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", weather.ErrFetch, err)
	}
	return weather.RawForecast(body), nil
}

// requestParams picks the endpoint and query for a timeframe.
func requestParams(s weather.Settings) (string, map[string]string) {
	params := map[string]string{
		"lat":   s.Coords.Lat,
		"lon":   s.Coords.Lon,
		"units": s.Unit.APIName(),
		"appid": s.Keys.WeatherKey,
	}

	switch s.Timeframe {
	case weather.TimeframeHourly:
		params["cnt"] = hourlyCount
		return forecastPath, params
	case weather.TimeframeDaily:
		params["cnt"] = dailyCount
		return forecastPath, params
	default:
		return currentPath, params
	}
}
