package acquire

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"

	"github.com/i474232898/weather-cli/internal/weather"
)

var (
	errEmptyLocation = errors.New("empty location")
	errNoCandidates  = errors.New("no matching location found")
)

// Geocoder looks up candidate places for free-text input.
type Geocoder interface {
	Forward(ctx context.Context, query, key string) ([]weather.Place, error)
}

// LocationResolver turns a typed location into coordinates.
type LocationResolver struct {
	prompter Prompter
	geocoder Geocoder
	logger   *zap.Logger
}

// NewLocationResolver creates a LocationResolver.
func NewLocationResolver(prompter Prompter, geocoder Geocoder, logger *zap.Logger) *LocationResolver {
	return &LocationResolver{
		prompter: prompter,
		geocoder: geocoder,
		logger:   logger,
	}
}

// Acquire loops until a lookup succeeds and returns the first candidate.
// Ambiguous names resolve to whatever the geocoder ranks first.
func (r *LocationResolver) Acquire(ctx context.Context, key string) (weather.Coordinates, error) {
	for {
		r.prompter.Say("\nEnter your location using any standard format")

		query, err := readLine(ctx, r.prompter)
		if err != nil {
			return weather.Coordinates{}, err
		}

		places, err := r.lookup(ctx, query, key)
		if err != nil {
			r.prompter.Say("Error: %v", err)
			continue
		}

		first := places[0]
		r.logger.Info("resolved location",
			zap.String("query", query),
			zap.String("name", first.Name),
			zap.Int("candidates", len(places)),
		)
		return weather.Coordinates{
			Lat: strconv.FormatFloat(first.Lat, 'f', -1, 64),
			Lon: strconv.FormatFloat(first.Lon, 'f', -1, 64),
		}, nil
	}
}

func (r *LocationResolver) lookup(ctx context.Context, query, key string) ([]weather.Place, error) {
	if query == "" {
		return nil, errEmptyLocation
	}
	places, err := r.geocoder.Forward(ctx, query, key)
	if err != nil {
		return nil, err
	}
	if len(places) == 0 {
		return nil, errNoCandidates
	}
	return places, nil
}
