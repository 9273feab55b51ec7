package weather

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrInvalidTimeframe is returned when the timeframe argument is not one of
	// current, hourly or daily.
	ErrInvalidTimeframe = errors.New("failed to parse input")
)

// Timeframe selects both the upstream request shape and the windowing policy.
type Timeframe string

const (
	TimeframeCurrent Timeframe = "Current"
	TimeframeHourly  Timeframe = "Hourly"
	TimeframeDaily   Timeframe = "Daily"
)

// ParseTimeframe maps the optional CLI token to a Timeframe. A nil token
// means Current. Matching is case-sensitive.
func ParseTimeframe(arg *string) (Timeframe, error) {
	if arg == nil {
		return TimeframeCurrent, nil
	}
	switch *arg {
	case "current":
		return TimeframeCurrent, nil
	case "hourly":
		return TimeframeHourly, nil
	case "daily":
		return TimeframeDaily, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidTimeframe, *arg)
	}
}

// Unit is the user's preferred measurement unit.
type Unit string

const (
	UnitFahrenheit Unit = "F"
	UnitCelsius    Unit = "C"
)

// APIName returns the unit system name understood by OpenWeather.
func (u Unit) APIName() string {
	if u == UnitCelsius {
		return "metric"
	}
	return "imperial"
}

// API identifies an external service a credential is issued for.
type API string

const (
	APIWeather   API = "weather"
	APIGeocoding API = "geocoding"
)

// Coordinates are kept as decimal strings so they round-trip through the
// settings file without precision loss.
type Coordinates struct {
	Lat string `json:"lat" validate:"required,latitude"`
	Lon string `json:"lon" validate:"required,longitude"`
}

// Credentials holds one key per external service.
type Credentials struct {
	WeatherKey  string `json:"weather_key" validate:"required"`
	LocationKey string `json:"location_key" validate:"required"`
}

// Settings is the fully resolved record. It is only produced once every field
// has been loaded or acquired.
type Settings struct {
	Timeframe Timeframe   `json:"timeframe" validate:"oneof=Current Hourly Daily"`
	Unit      Unit        `json:"unit" validate:"oneof=F C"`
	Coords    Coordinates `json:"coords"`
	Keys      Credentials `json:"keys"`
}

// Draft is the partially populated record read from disk. Nil means the
// field still has to be acquired.
type Draft struct {
	Timeframe   *Timeframe
	Unit        *Unit
	Coords      *Coordinates
	WeatherKey  *string
	LocationKey *string
}

// draftFile accepts both the nested layout written by Settings and the older
// flat layout (lat/lon, weather_key/location_key at the top level).
type draftFile struct {
	Timeframe   *Timeframe   `json:"timeframe"`
	Unit        *Unit        `json:"unit"`
	Coords      *Coordinates `json:"coords"`
	Coordinates *Coordinates `json:"coordinates"`
	Keys        *struct {
		WeatherKey  *string `json:"weather_key"`
		LocationKey *string `json:"location_key"`
	} `json:"keys"`
	Lat         *string `json:"lat"`
	Lon         *string `json:"lon"`
	WeatherKey  *string `json:"weather_key"`
	LocationKey *string `json:"location_key"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Draft) UnmarshalJSON(data []byte) error {
	var f draftFile
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}

	*d = Draft{
		Timeframe:   f.Timeframe,
		Unit:        f.Unit,
		WeatherKey:  f.WeatherKey,
		LocationKey: f.LocationKey,
	}

	switch {
	case f.Coords != nil:
		d.Coords = f.Coords
	case f.Coordinates != nil:
		d.Coords = f.Coordinates
	case f.Lat != nil && f.Lon != nil:
		d.Coords = &Coordinates{Lat: *f.Lat, Lon: *f.Lon}
	}

	if f.Keys != nil {
		if f.Keys.WeatherKey != nil {
			d.WeatherKey = f.Keys.WeatherKey
		}
		if f.Keys.LocationKey != nil {
			d.LocationKey = f.Keys.LocationKey
		}
	}
	return nil
}

// Resolve returns the Settings snapshot if every field is present.
func (d Draft) Resolve() (Settings, bool) {
	if d.Timeframe == nil || d.Unit == nil || d.Coords == nil || d.WeatherKey == nil || d.LocationKey == nil {
		return Settings{}, false
	}
	return Settings{
		Timeframe: *d.Timeframe,
		Unit:      *d.Unit,
		Coords:    *d.Coords,
		Keys: Credentials{
			WeatherKey:  *d.WeatherKey,
			LocationKey: *d.LocationKey,
		},
	}, true
}

// Place is a single geocoding candidate.
type Place struct {
	Name string
	Lat  float64
	Lon  float64
}

// Reading is one normalized row of weather output.
type Reading struct {
	Date        string
	Time        string
	Description string
	Temperature float64
	WindSpeed   float64
}
