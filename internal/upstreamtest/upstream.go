// Package upstreamtest serves fake OpenWeather and OpenCage APIs from an
// in-process fiber app. Its Client routes every request into the app, so
// code under test can keep the real base URLs.
package upstreamtest

import (
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Request is one call received by the fake.
type Request struct {
	Path  string
	Query url.Values
}

type place struct {
	formatted string
	lat, lng  float64
}

// Upstream is a scripted stand-in for the weather and geocoding services.
type Upstream struct {
	app *fiber.App

	mu            sync.Mutex
	weatherKeys   map[string]bool
	geocodeKeys   map[string]bool
	places        map[string][]place
	weatherStatus int
	requests      []Request
}

// ForecastStart is the timestamp of the first forecast entry.
var ForecastStart = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

// New creates an Upstream with no valid keys and no known places.
func New() *Upstream {
	u := &Upstream{
		app: fiber.New(fiber.Config{
			AppName:               "upstreamtest",
			DisableStartupMessage: true,
		}),
		weatherKeys: make(map[string]bool),
		geocodeKeys: make(map[string]bool),
		places:      make(map[string][]place),
	}
	u.registerRoutes()
	return u
}

// AllowWeatherKey makes key valid for the weather endpoints.
func (u *Upstream) AllowWeatherKey(key string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.weatherKeys[key] = true
}

// AllowGeocodeKey makes key valid for the geocoding endpoint.
func (u *Upstream) AllowGeocodeKey(key string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.geocodeKeys[key] = true
}

// AddPlace appends a candidate for query, in ranking order.
func (u *Upstream) AddPlace(query, formatted string, lat, lng float64) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.places[query] = append(u.places[query], place{formatted: formatted, lat: lat, lng: lng})
}

// FailWeather makes the current and forecast endpoints answer with status
// for valid keys. Zero restores normal answers.
func (u *Upstream) FailWeather(status int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.weatherStatus = status
}

// Requests returns every request received so far.
func (u *Upstream) Requests() []Request {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]Request(nil), u.requests...)
}

// RequestsTo returns the requests received for path.
func (u *Upstream) RequestsTo(path string) []Request {
	var out []Request
	for _, r := range u.Requests() {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// Client returns an HTTP client whose transport is the fiber app.
func (u *Upstream) Client() *http.Client {
	return &http.Client{Transport: transport{app: u.app}}
}

type transport struct {
	app *fiber.App
}

func (t transport) RoundTrip(req *http.Request) (*http.Response, error) {
	// app.Test adds headers to the request it is given.
	return t.app.Test(req.Clone(req.Context()), -1)
}
