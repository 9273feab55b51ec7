package weather

import (
	"encoding/json"
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// dailyStride is the number of 3-hour forecast steps in 24 hours.
	dailyStride = 8

	todaySentinel = "Today"
	nowSentinel   = "Now"
)

type rawEntry struct {
	Weather []struct {
		Main *string `json:"main"`
	} `json:"weather"`
	Main struct {
		Temp *float64 `json:"temp"`
	} `json:"main"`
	Wind struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
	DtTxt *string `json:"dt_txt"`
}

// Normalize converts a raw weather payload into readings.
//
// A payload without a "list" field is a current-weather response and yields
// one reading dated Today/Now. Forecast payloads yield every entry for
// Hourly; for Daily they keep the first entry and every 8th one after it
// (indices 0, 7, 15, ...). The daily samples are anchored to the time of day
// of the first entry, not to midnight.
func Normalize(raw RawForecast, tf Timeframe) ([]Reading, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataShape, err)
	}

	list, ok := top["list"]
	if !ok || string(list) == "null" {
		r, err := buildReading(json.RawMessage(raw))
		if err != nil {
			return nil, err
		}
		r.Date = todaySentinel
		r.Time = nowSentinel
		return []Reading{r}, nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(list, &entries); err != nil {
		return nil, fmt.Errorf("%w: list: %v", ErrDataShape, err)
	}

	readings := make([]Reading, 0, len(entries))
	for i, e := range entries {
		if tf == TimeframeDaily && i != 0 && (i+1)%dailyStride != 0 {
			continue
		}
		r, err := buildReading(e)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		readings = append(readings, r)
	}
	return readings, nil
}

func buildReading(data json.RawMessage) (Reading, error) {
	var e rawEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return Reading{}, fmt.Errorf("%w: %v", ErrDataShape, err)
	}

	if len(e.Weather) == 0 || e.Weather[0].Main == nil {
		return Reading{}, fmt.Errorf("%w: missing weather[0].main", ErrDataShape)
	}
	if e.Main.Temp == nil {
		return Reading{}, fmt.Errorf("%w: missing main.temp", ErrDataShape)
	}
	if e.Wind.Speed == nil {
		return Reading{}, fmt.Errorf("%w: missing wind.speed", ErrDataShape)
	}

	r := Reading{
		Date:        todaySentinel,
		Time:        nowSentinel,
		Description: cases.Title(language.English).String(*e.Weather[0].Main),
		Temperature: *e.Main.Temp,
		WindSpeed:   *e.Wind.Speed,
	}

	if e.DtTxt != nil {
		// "2006-01-02 15:04:05": date is MM-DD, time is HH:MM.
		dt := *e.DtTxt
		if len(dt) < 16 {
			return Reading{}, fmt.Errorf("%w: short dt_txt %q", ErrDataShape, dt)
		}
		r.Date = dt[5:10]
		r.Time = dt[11:16]
	}
	return r, nil
}
