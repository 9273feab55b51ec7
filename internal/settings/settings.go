// Package settings resolves the user's persisted preferences, acquiring any
// missing field interactively and writing the complete record back.
package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/i474232898/weather-cli/internal/store"
	"github.com/i474232898/weather-cli/internal/weather"
)

// Acquirer obtains the fields missing from the draft record. Implementations
// loop until they have a valid value and only fail when input is exhausted
// or the context is cancelled.
type Acquirer interface {
	Credential(ctx context.Context, api weather.API) (string, error)
	Unit(ctx context.Context) (weather.Unit, error)
	Coordinates(ctx context.Context, geocodingKey string) (weather.Coordinates, error)
}

// Store builds resolved Settings on top of a FileStore.
type Store struct {
	files    *store.FileStore
	validate *validator.Validate
	logger   *zap.Logger
}

// NewStore creates a new Store.
func NewStore(files *store.FileStore, logger *zap.Logger) *Store {
	return &Store{
		files:    files,
		validate: validator.New(),
		logger:   logger,
	}
}

// Build resolves the timeframe argument, fills every missing field through
// acq and persists the full record. The file is rewritten on every call.
func (s *Store) Build(ctx context.Context, timeframeArg *string, acq Acquirer) (weather.Settings, error) {
	// Fail on a bad argument before asking the user anything.
	tf, err := weather.ParseTimeframe(timeframeArg)
	if err != nil {
		return weather.Settings{}, err
	}

	draft := s.load()
	draft.Timeframe = &tf

	if draft.WeatherKey == nil {
		key, err := acq.Credential(ctx, weather.APIWeather)
		if err != nil {
			return weather.Settings{}, fmt.Errorf("acquire weather key: %w", err)
		}
		draft.WeatherKey = &key
	}

	if draft.LocationKey == nil {
		key, err := acq.Credential(ctx, weather.APIGeocoding)
		if err != nil {
			return weather.Settings{}, fmt.Errorf("acquire location key: %w", err)
		}
		draft.LocationKey = &key
	}

	if draft.Unit == nil {
		unit, err := acq.Unit(ctx)
		if err != nil {
			return weather.Settings{}, fmt.Errorf("acquire unit: %w", err)
		}
		draft.Unit = &unit
	}

	if draft.Coords == nil {
		coords, err := acq.Coordinates(ctx, *draft.LocationKey)
		if err != nil {
			return weather.Settings{}, fmt.Errorf("acquire coordinates: %w", err)
		}
		draft.Coords = &coords
	}

	settings, ok := draft.Resolve()
	if !ok {
		return weather.Settings{}, errors.New("settings incomplete after acquisition")
	}
	if err := s.validate.Struct(settings); err != nil {
		return weather.Settings{}, fmt.Errorf("invalid settings: %w", err)
	}

	if err := s.files.Save(settings); err != nil {
		return weather.Settings{}, err
	}
	s.logger.Debug("settings saved", zap.String("path", s.files.Path()))

	return settings, nil
}

// load returns the persisted draft, or an empty one when the file is missing
// or unusable. Invalid fields are dropped so they get acquired again.
func (s *Store) load() weather.Draft {
	draft, err := s.files.Load()
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Debug("no settings file; starting empty", zap.String("path", s.files.Path()))
		} else {
			s.logger.Warn("ignoring unreadable settings file", zap.String("path", s.files.Path()), zap.Error(err))
		}
		return weather.Draft{}
	}

	if draft.Unit != nil {
		if err := s.validate.Var(string(*draft.Unit), "oneof=F C"); err != nil {
			s.logger.Warn("dropping invalid unit", zap.String("unit", string(*draft.Unit)))
			draft.Unit = nil
		}
	}
	if draft.Coords != nil {
		if err := s.validate.Struct(*draft.Coords); err != nil {
			s.logger.Warn("dropping invalid coordinates", zap.Error(err))
			draft.Coords = nil
		}
	}
	if draft.WeatherKey != nil && s.validate.Var(*draft.WeatherKey, "required") != nil {
		draft.WeatherKey = nil
	}
	if draft.LocationKey != nil && s.validate.Var(*draft.LocationKey, "required") != nil {
		draft.LocationKey = nil
	}
	return draft
}
