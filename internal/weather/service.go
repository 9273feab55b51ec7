package weather

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Service fetches a forecast for resolved settings and windows it into rows.
type Service struct {
	fetcher Fetcher
	logger  *zap.Logger
}

// NewService creates a new Service.
func NewService(fetcher Fetcher, logger *zap.Logger) *Service {
	return &Service{
		fetcher: fetcher,
		logger:  logger,
	}
}

// Readings issues a single request and normalizes the response according to
// the settings' timeframe.
func (s *Service) Readings(ctx context.Context, settings Settings) ([]Reading, error) {
	if s.fetcher == nil {
		return nil, fmt.Errorf("no weather fetcher configured")
	}

	s.logger.Debug("requesting weather",
		zap.String("timeframe", string(settings.Timeframe)),
		zap.String("lat", settings.Coords.Lat),
		zap.String("lon", settings.Coords.Lon),
	)

	raw, err := s.fetcher.Request(ctx, settings)
	if err != nil {
		return nil, err
	}

	readings, err := Normalize(raw, settings.Timeframe)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("normalized weather", zap.Int("readings", len(readings)))
	return readings, nil
}
