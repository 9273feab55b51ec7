package providers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kelvins/geocoder"
	"go.uber.org/zap"

	"github.com/i474232898/weather-cli/internal/weather"
)

const googleSignUpURL = "https://developers.google.com/maps/documentation/geocoding/get-api-key"

// googleLookup performs one geocoding call with key.
type googleLookup func(key string, addr geocoder.Address) (geocoder.Location, error)

// GoogleGeocoder resolves locations with the Google Geocoding API through
// kelvins/geocoder. The library has no context support, uses its own HTTP
// client and reads its key from a package variable. Calls are serialized and
// the caller stops waiting once ctx is done or timeout elapses.
type GoogleGeocoder struct {
	mu      sync.Mutex
	lookup  googleLookup
	timeout time.Duration
	logger  *zap.Logger
}

// NewGoogleGeocoder creates a GoogleGeocoder. A zero timeout only waits on
// the caller's context.
func NewGoogleGeocoder(timeout time.Duration, logger *zap.Logger) *GoogleGeocoder {
	return &GoogleGeocoder{
		lookup:  geocodeWithKey,
		timeout: timeout,
		logger:  logger,
	}
}

func geocodeWithKey(key string, addr geocoder.Address) (geocoder.Location, error) {
	geocoder.ApiKey = key
	return geocoder.Geocoding(addr)
}

func (g *GoogleGeocoder) SignUpURL() string {
	return googleSignUpURL
}

func (g *GoogleGeocoder) Probe(ctx context.Context, key string) error {
	_, err := g.geocode(ctx, key, geocoder.Address{Country: probeQuery})
	return err
}

// Forward returns the single best match Google reports for query.
func (g *GoogleGeocoder) Forward(ctx context.Context, query, key string) ([]weather.Place, error) {
	loc, err := g.geocode(ctx, key, geocoder.Address{Street: query})
	if err != nil {
		return nil, err
	}
	return []weather.Place{{
		Name: query,
		Lat:  loc.Latitude,
		Lon:  loc.Longitude,
	}}, nil
}

type googleResult struct {
	loc geocoder.Location
	err error
}

func (g *GoogleGeocoder) geocode(ctx context.Context, key string, addr geocoder.Address) (geocoder.Location, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return geocoder.Location{}, err
	}

	// Buffered so an abandoned call can still finish and exit.
	done := make(chan googleResult, 1)
	go func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		loc, err := g.lookup(key, addr)
		done <- googleResult{loc: loc, err: err}
	}()

	select {
	case <-ctx.Done():
		g.logger.Debug("google geocoding abandoned", zap.Error(ctx.Err()))
		return geocoder.Location{}, fmt.Errorf("google geocoding: %w", ctx.Err())
	case res := <-done:
		if res.err != nil {
			g.logger.Debug("google geocoding failed", zap.Error(res.err))
			return geocoder.Location{}, fmt.Errorf("google geocoding: %w", res.err)
		}
		return res.loc, nil
	}
}
