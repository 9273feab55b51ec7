package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/i474232898/weather-cli/internal/acquire"
	"github.com/i474232898/weather-cli/internal/config"
	"github.com/i474232898/weather-cli/internal/display"
	"github.com/i474232898/weather-cli/internal/scheduler"
	"github.com/i474232898/weather-cli/internal/settings"
	"github.com/i474232898/weather-cli/internal/store"
	"github.com/i474232898/weather-cli/internal/weather"
	"github.com/i474232898/weather-cli/internal/weather/providers"
)

// deps are the process resources run talks to. Tests swap them out.
type deps struct {
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
	fs         afero.Fs
	httpClient *http.Client
}

// geocodingBackend validates location keys and resolves place names.
type geocodingBackend interface {
	acquire.Prober
	acquire.Geocoder
}

func main() {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], deps{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		fs:     afero.NewOsFs(),
	})
	stop()

	if err != nil && !errors.Is(err, pflag.ErrHelp) {
		fmt.Fprintf(os.Stderr, "weather: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, d deps) error {
	cfg, err := config.Load(args, d.stderr)
	if err != nil {
		return err
	}

	logger, err := cfg.NewLogger(d.stderr)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.With(zap.String("run", uuid.NewString()))

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{}
	if d.httpClient != nil {
		c := *d.httpClient
		httpClient = &c
	}
	httpClient.Timeout = cfg.HTTPTimeout

	openWeather := providers.NewOpenWeatherProvider(providers.HTTPClientConfig{
		Client:  httpClient,
		BaseURL: cfg.OpenWeatherURL,
	}, logger)

	var geo geocodingBackend
	switch cfg.Geocoder {
	case config.GeocoderGoogle:
		geo = providers.NewGoogleGeocoder(cfg.HTTPTimeout, logger)
	default:
		geo = providers.NewOpenCageProvider(providers.HTTPClientConfig{
			Client:  httpClient,
			BaseURL: cfg.OpenCageURL,
		}, logger)
	}

	session := acquire.NewSession(
		acquire.NewConsole(d.stdin, d.stdout),
		map[weather.API]acquire.Prober{
			weather.APIWeather:   openWeather,
			weather.APIGeocoding: geo,
		},
		geo,
		logger,
	)

	files := store.NewFileStore(d.fs, cfg.ConfigPath)
	resolved, err := settings.NewStore(files, logger).Build(ctx, cfg.TimeframeArg, session)
	if err != nil {
		return err
	}
	logger.Info("settings resolved",
		zap.String("path", files.Path()),
		zap.String("timeframe", string(resolved.Timeframe)),
		zap.String("unit", string(resolved.Unit)),
	)

	service := weather.NewService(openWeather, logger)
	show := func(ctx context.Context) error {
		readings, err := service.Readings(ctx, resolved)
		if err != nil {
			return err
		}
		return display.Table(d.stdout, readings)
	}

	if cfg.Watch == 0 {
		return show(ctx)
	}

	logger.Info("watching", zap.Duration("interval", cfg.Watch))
	return scheduler.New(cfg.Watch, show, logger).Run(ctx)
}
