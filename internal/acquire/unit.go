package acquire

import (
	"context"
	"strings"

	"github.com/i474232898/weather-cli/internal/weather"
)

// UnitPrompt asks for the preferred measurement unit.
type UnitPrompt struct {
	prompter Prompter
}

// NewUnitPrompt creates a UnitPrompt.
func NewUnitPrompt(prompter Prompter) *UnitPrompt {
	return &UnitPrompt{prompter: prompter}
}

// Acquire loops until the answer is F or C (imperial and metric are accepted
// as aliases).
func (u *UnitPrompt) Acquire(ctx context.Context) (weather.Unit, error) {
	for {
		u.prompter.Say("\nPlease input your preferred unit. (F or C):")

		line, err := readLine(ctx, u.prompter)
		if err != nil {
			return "", err
		}

		switch strings.ToUpper(line) {
		case "F", "IMPERIAL":
			return weather.UnitFahrenheit, nil
		case "C", "METRIC":
			return weather.UnitCelsius, nil
		}
		u.prompter.Say("Input didn't match values: (F or C).")
	}
}
