package weather

import (
	"context"
	"errors"
)

var (
	// ErrFetch is returned when the forecast request fails or its body cannot
	// be parsed.
	ErrFetch = errors.New("fetch weather data")
	// ErrDataShape is returned when a successful response lacks a field the
	// windower needs.
	ErrDataShape = errors.New("unexpected weather data shape")
)

// RawForecast is the JSON object returned by the weather API, kept undecoded
// until the windower knows which shape it has.
type RawForecast []byte

// Fetcher abstracts the weather data source (OpenWeatherMap).
type Fetcher interface {
	Request(ctx context.Context, s Settings) (RawForecast, error)
}
