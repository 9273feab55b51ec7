package acquire

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/i474232898/weather-cli/internal/weather"
)

var errEmptyKey = errors.New("empty key")

// Prober checks a candidate key against the service that issued it.
type Prober interface {
	// SignUpURL is where the user can obtain a key.
	SignUpURL() string
	// Probe issues a minimal request with key and returns nil on a 2xx
	// response.
	Probe(ctx context.Context, key string) error
}

// KeyValidator prompts for API keys until one passes its probe.
type KeyValidator struct {
	prompter Prompter
	probers  map[weather.API]Prober
	logger   *zap.Logger
}

// NewKeyValidator creates a KeyValidator with one Prober per API.
func NewKeyValidator(prompter Prompter, probers map[weather.API]Prober, logger *zap.Logger) *KeyValidator {
	return &KeyValidator{
		prompter: prompter,
		probers:  probers,
		logger:   logger,
	}
}

// Acquire loops until the user enters a key that the service accepts. There
// is no retry limit; it only returns an error when input runs out or ctx is
// done.
func (v *KeyValidator) Acquire(ctx context.Context, api weather.API) (string, error) {
	prober, ok := v.probers[api]
	if !ok {
		return "", fmt.Errorf("no key prober for %s api", api)
	}

	for attempt := 1; ; attempt++ {
		v.prompter.Say("\nEnter your %s api key from: %s", api, prober.SignUpURL())

		key, err := readLine(ctx, v.prompter)
		if err != nil {
			return "", err
		}

		if err := verify(ctx, prober, key); err != nil {
			v.logger.Debug("key probe failed",
				zap.String("api", string(api)),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			v.prompter.Say("\nFailed to validate key: %v\nKeys can take up to an hour to become active.", err)
			continue
		}

		v.prompter.Say("\nAPI key validated")
		return key, nil
	}
}

func verify(ctx context.Context, prober Prober, key string) error {
	if key == "" {
		return errEmptyKey
	}
	return prober.Probe(ctx, key)
}
