package config

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-cli/internal/weather/providers"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, &AppConfig{
		ConfigPath:     "config.json",
		LogLevel:       "warn",
		HTTPTimeout:    30 * time.Second,
		Geocoder:       GeocoderOpenCage,
		OpenWeatherURL: providers.OpenWeatherBaseURL,
		OpenCageURL:    providers.OpenCageBaseURL,
	}, cfg)
}

func TestLoadFlagsAndTimeframe(t *testing.T) {
	cfg, err := Load([]string{
		"daily",
		"--config", "/tmp/w.json",
		"--log-level", "DEBUG",
		"--http-timeout", "5s",
		"--watch", "10m",
		"--geocoder", "google",
	}, io.Discard)
	require.NoError(t, err)

	require.NotNil(t, cfg.TimeframeArg)
	assert.Equal(t, "daily", *cfg.TimeframeArg)
	assert.Equal(t, "/tmp/w.json", cfg.ConfigPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 10*time.Minute, cfg.Watch)
	assert.Equal(t, GeocoderGoogle, cfg.Geocoder)
}

func TestLoadTimeframeIsNotValidatedHere(t *testing.T) {
	cfg, err := Load([]string{"weekly"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "weekly", *cfg.TimeframeArg)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("WEATHER_CONFIG", "env.json")
	t.Setenv("WEATHER_HTTP_TIMEOUT", "2s")
	t.Setenv("WEATHER_OPENWEATHER_URL", "http://localhost:9000")

	cfg, err := Load(nil, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "env.json", cfg.ConfigPath)
	assert.Equal(t, 2*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "http://localhost:9000", cfg.OpenWeatherURL)
}

func TestLoadFlagBeatsEnvironment(t *testing.T) {
	t.Setenv("WEATHER_CONFIG", "env.json")

	cfg, err := Load([]string{"--config", "flag.json"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "flag.json", cfg.ConfigPath)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{name: "unknown geocoder", args: []string{"--geocoder", "bing"}},
		{name: "unknown log level", args: []string{"--log-level", "loud"}},
		{name: "zero timeout", args: []string{"--http-timeout", "0s"}},
		{name: "negative watch", args: []string{"--watch", "-1m"}},
		{name: "unknown flag", args: []string{"--colour"}},
		{name: "bad env duration", env: map[string]string{"WEATHER_WATCH": "soon"}},
		{name: "bad base url", env: map[string]string{"WEATHER_OPENCAGE_URL": "not a url"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(tt.args, io.Discard)
			require.Error(t, err)
		})
	}
}

func TestLoadHelp(t *testing.T) {
	var out bytes.Buffer
	_, err := Load([]string{"--help"}, &out)

	require.True(t, errors.Is(err, pflag.ErrHelp))
	assert.Contains(t, out.String(), "--watch")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := &AppConfig{LogLevel: "info"}

	logger, err := cfg.NewLogger(&buf)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "INFO")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewLoggerInvalidLevel(t *testing.T) {
	_, err := (&AppConfig{LogLevel: "loud"}).NewLogger(io.Discard)
	require.Error(t, err)
}
