package acquire

import (
	"context"

	"go.uber.org/zap"

	"github.com/i474232898/weather-cli/internal/weather"
)

// Session bundles the interactive acquisition loops behind one Prompter. It
// satisfies settings.Acquirer.
type Session struct {
	keys      *KeyValidator
	units     *UnitPrompt
	locations *LocationResolver
}

// NewSession wires the three acquisition loops to a shared prompter.
func NewSession(prompter Prompter, probers map[weather.API]Prober, geocoder Geocoder, logger *zap.Logger) *Session {
	return &Session{
		keys:      NewKeyValidator(prompter, probers, logger),
		units:     NewUnitPrompt(prompter),
		locations: NewLocationResolver(prompter, geocoder, logger),
	}
}

// Credential asks for an API key until the service accepts one.
func (s *Session) Credential(ctx context.Context, api weather.API) (string, error) {
	return s.keys.Acquire(ctx, api)
}

// Unit asks for the temperature unit.
func (s *Session) Unit(ctx context.Context) (weather.Unit, error) {
	return s.units.Acquire(ctx)
}

// Coordinates asks for a place name and resolves it with geocodingKey.
func (s *Session) Coordinates(ctx context.Context, geocodingKey string) (weather.Coordinates, error) {
	return s.locations.Acquire(ctx, geocodingKey)
}
