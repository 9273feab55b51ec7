package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/i474232898/weather-cli/internal/weather/providers"
)

const envPrefix = "WEATHER"

// Geocoding backends selectable with --geocoder.
const (
	GeocoderOpenCage = "opencage"
	GeocoderGoogle   = "google"
)

// AppConfig holds process-level options. Persisted weather settings live in
// the file named by ConfigPath and are handled by the settings package.
type AppConfig struct {
	ConfigPath string `validate:"required"`

	// TimeframeArg is the first positional argument, nil when absent.
	TimeframeArg *string

	LogLevel    string        `validate:"oneof=debug info warn error"`
	HTTPTimeout time.Duration `validate:"gt=0"`

	// Watch re-runs the fetch on this interval. Zero prints once and exits.
	Watch time.Duration `validate:"min=0"`

	Geocoder       string `validate:"oneof=opencage google"`
	OpenWeatherURL string `validate:"required,url"`
	OpenCageURL    string `validate:"required,url"`
}

// Load parses flags from args (without the program name) and layers
// WEATHER_* environment variables under them. Usage goes to out.
func Load(args []string, out io.Writer) (*AppConfig, error) {
	fs := pflag.NewFlagSet("weather", pflag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() {
		fmt.Fprintln(out, "Usage: weather [current|hourly|daily] [flags]")
		fs.PrintDefaults()
	}

	fs.String("config", "config.json", "path of the settings file")
	fs.String("log-level", "warn", "log level (debug, info, warn, error)")
	fs.Duration("http-timeout", 30*time.Second, "timeout for each upstream request")
	fs.Duration("watch", 0, "refresh interval; 0 prints once")
	fs.String("geocoder", GeocoderOpenCage, "location lookup backend (opencage, google)")
	fs.String("openweather-url", providers.OpenWeatherBaseURL, "OpenWeather API base URL")
	fs.String("opencage-url", providers.OpenCageBaseURL, "OpenCage API base URL")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	httpTimeout, err := time.ParseDuration(v.GetString("http-timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid http-timeout: %w", err)
	}
	watch, err := time.ParseDuration(v.GetString("watch"))
	if err != nil {
		return nil, fmt.Errorf("invalid watch: %w", err)
	}

	cfg := &AppConfig{
		ConfigPath:     v.GetString("config"),
		LogLevel:       strings.ToLower(v.GetString("log-level")),
		HTTPTimeout:    httpTimeout,
		Watch:          watch,
		Geocoder:       strings.ToLower(v.GetString("geocoder")),
		OpenWeatherURL: v.GetString("openweather-url"),
		OpenCageURL:    v.GetString("opencage-url"),
	}
	if rest := fs.Args(); len(rest) > 0 {
		cfg.TimeframeArg = &rest[0]
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// NewLogger creates a console logger writing to w at the configured level.
// Levels are colored when w is a terminal.
func (c *AppConfig) NewLogger(w io.Writer) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), level)
	return zap.New(core), nil
}
