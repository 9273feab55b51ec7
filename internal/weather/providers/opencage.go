package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/i474232898/weather-cli/internal/weather"
)

const (
	OpenCageBaseURL = "https://api.opencagedata.com"

	openCageSignUpURL = "https://opencagedata.com/users/sign_up"
	openCagePath      = "/geocode/v1/json"

	probeQuery = "United States"
)

// ErrNoResults is returned when a forward lookup matches nothing.
var ErrNoResults = errors.New("no results")

// OpenCageProvider is a forward geocoder backed by the OpenCage API. It also
// probes location keys.
type OpenCageProvider struct {
	upstream
	logger *zap.Logger
}

func NewOpenCageProvider(cfg HTTPClientConfig, logger *zap.Logger) *OpenCageProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = OpenCageBaseURL
	}
	return &OpenCageProvider{
		upstream: newUpstream("opencage", cfg, logger),
		logger:   logger,
	}
}

func (p *OpenCageProvider) SignUpURL() string {
	return openCageSignUpURL
}

// Probe looks up a fixed query with key and only checks the status.
func (p *OpenCageProvider) Probe(ctx context.Context, key string) error {
	resp, err := p.get(ctx, openCagePath, map[string]string{
		"q":   probeQuery,
		"key": key,
	})
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return statusError(resp)
	}
	return nil
}

// Forward returns the candidates for query in the order OpenCage ranks them.
func (p *OpenCageProvider) Forward(ctx context.Context, query, key string) ([]weather.Place, error) {
	resp, err := p.get(ctx, openCagePath, map[string]string{
		"q":              query,
		"key":            key,
		"no_annotations": "1",
	})
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, statusError(resp)
	}

	var payload struct {
		Results []struct {
			Formatted string `json:"formatted"`
			Geometry  struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"geometry"`
		} `json:"results"`
	}
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("decode geocoding response: %w", err)
	}
	if len(payload.Results) == 0 {
		return nil, fmt.Errorf("%w for %q", ErrNoResults, query)
	}

	places := make([]weather.Place, 0, len(payload.Results))
	for _, r := range payload.Results {
		places = append(places, weather.Place{
			Name: r.Formatted,
			Lat:  r.Geometry.Lat,
			Lon:  r.Geometry.Lng,
		})
	}
	return places, nil
}
